// Package main is the entry point for the paramcache CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/leonardcser/ssm-cache/internal/backend"
	"github.com/leonardcser/ssm-cache/internal/logger"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(backend.Open).ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errMiss) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		logger.Close()
		os.Exit(1)
	}
}
