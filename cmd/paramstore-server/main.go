package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/leonardcser/ssm-cache/internal/config"
	"github.com/leonardcser/ssm-cache/internal/logger"
	"github.com/leonardcser/ssm-cache/internal/paramstore"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	defaults := config.Default()
	sock := defaultString(os.Getenv(config.EnvSocket), defaults.Socket)
	db := defaultString(os.Getenv(config.EnvDB), defaults.DB)

	// Ensure socket and db dirs exist and remove stale socket
	_ = os.MkdirAll(filepath.Dir(sock), 0o755)
	_ = os.MkdirAll(filepath.Dir(db), 0o755)
	_ = os.Remove(sock)

	l, err := net.Listen("unix", sock)
	if err != nil {
		logger.Errorf("listen on %s: %v", sock, err)
		panic(err)
	}
	defer l.Close()
	_ = os.Chmod(sock, 0o600)

	store, err := paramstore.Open(db, paramstore.Options{})
	if err != nil {
		logger.Errorf("open parameter store %s: %v", db, err)
		panic(err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("Parameter daemon serving %s on %s", db, sock)
	if err := paramstore.Serve(ctx, l, store); err != nil {
		logger.Errorf("serve: %v", err)
	}
	logger.Infof("Parameter daemon stopped")
}

func defaultString(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
