// Package backend opens the parameter store a configuration names.
package backend

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/leonardcser/ssm-cache/internal/cache"
	"github.com/leonardcser/ssm-cache/internal/config"
	"github.com/leonardcser/ssm-cache/internal/logger"
	"github.com/leonardcser/ssm-cache/internal/paramstore"
	"github.com/leonardcser/ssm-cache/internal/ssmstore"
)

// DaemonBinary is the local parameter daemon started on demand.
const DaemonBinary = "paramstore-server"

const startupWait = 5 * time.Second

// startCommand launches the daemon; tests replace it.
var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// Open returns the store for cfg. For the local backend the daemon is
// started if its socket does not answer.
func Open(ctx context.Context, cfg *config.Config) (cache.ParameterStore, error) {
	switch cfg.Backend {
	case config.BackendSSM:
		return ssmstore.New(ctx, cfg.Region)
	case config.BackendLocal:
		return openLocal(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func openLocal(ctx context.Context, cfg *config.Config) (cache.ParameterStore, error) {
	sock := cfg.Socket
	logger.Infof("Attempting to connect to parameter daemon at %s", sock)
	client, err := connect(sock)
	if err == nil {
		return client, nil
	}
	logger.Warnf("Failed to connect to parameter daemon: %v, attempting to start daemon", err)
	if startErr := startDaemon(cfg); startErr != nil {
		logger.Errorf("Failed to start parameter daemon: %v", startErr)
	}

	// wait for socket to appear
	deadline := time.Now().Add(startupWait)
	for time.Now().Before(deadline) {
		if client, err = connect(sock); err == nil {
			logger.Infof("Connected to parameter daemon")
			return client, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("connect to parameter daemon at %s: %w", sock, err)
}

func connect(sock string) (*paramstore.Client, error) {
	// check for a running daemon first
	conn, err := net.DialTimeout("unix", sock, 200*time.Millisecond)
	if err != nil {
		return nil, err
	}
	_ = conn.Close()
	return paramstore.NewClient(sock), nil
}

// startDaemon runs the daemon with the socket and database from cfg.
func startDaemon(cfg *config.Config) error {
	candidates := make([]string, 0, 3)
	// 1) Daemon binary next to this executable
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exePath), DaemonBinary))
	}
	// 2) PATH binary
	if path, err := exec.LookPath(DaemonBinary); err == nil {
		candidates = append(candidates, path)
	}
	// 3) Local binary in current working directory (best-effort)
	candidates = append(candidates, "./"+DaemonBinary)

	for _, bin := range candidates {
		if _, err := os.Stat(bin); err != nil {
			continue
		}
		cmd := exec.Command(bin)
		cmd.Env = append(os.Environ(), config.EnvSocket+"="+cfg.Socket)
		if cfg.DB != "" {
			cmd.Env = append(cmd.Env, config.EnvDB+"="+cfg.DB)
		}
		return startCommand(cmd)
	}
	return exec.ErrNotFound
}
