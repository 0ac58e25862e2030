package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/leonardcser/ssm-cache/internal/cache"
	"github.com/leonardcser/ssm-cache/internal/config"
)

// errMiss makes get exit non-zero without printing anything.
var errMiss = errors.New("cache miss")

type openFunc func(ctx context.Context, cfg *config.Config) (cache.ParameterStore, error)

type rootFlags struct {
	configPath string
	backend    string
	basePath   string
	keyID      string
	region     string
	plain      bool
}

func newRootCmd(open openFunc) *cobra.Command {
	var f rootFlags
	rootCmd := &cobra.Command{
		Use:   "paramcache",
		Short: "TTL cache on a parameter store",
		Long: `paramcache stores short-lived values in a parameter store.

Each value is written together with its lifetime; reading an expired
value removes it and reports a miss.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default $"+config.EnvConfig+")")
	pf.StringVar(&f.backend, "backend", "", `parameter store backend, "ssm" or "local"`)
	pf.StringVar(&f.basePath, "base-path", "", "parameter name prefix (default /cache)")
	pf.StringVar(&f.keyID, "key-id", "", "KMS key for SecureString parameters")
	pf.StringVar(&f.region, "region", "", "AWS region")
	pf.BoolVar(&f.plain, "plain", false, "store String instead of SecureString parameters")

	cacheFor := func(cmd *cobra.Command) (*cache.Cache, error) {
		cfg, err := config.Read(f.configPath)
		if err != nil {
			return nil, err
		}
		flags := cmd.Flags()
		if flags.Changed("backend") {
			cfg.Backend = f.backend
		}
		if flags.Changed("base-path") {
			cfg.BasePath = f.basePath
		}
		if flags.Changed("key-id") {
			cfg.KeyID = f.keyID
		}
		if flags.Changed("region") {
			cfg.Region = f.region
		}
		if flags.Changed("plain") {
			secret := !f.plain
			cfg.Secret = &secret
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		store, err := open(cmd.Context(), cfg)
		if err != nil {
			return nil, err
		}
		return cache.New(store, cfg.CacheOptions()...), nil
	}

	rootCmd.AddCommand(newGetCmd(cacheFor))
	rootCmd.AddCommand(newSetCmd(cacheFor))
	return rootCmd
}
