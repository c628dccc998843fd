// Package main is the entry point for the firelist CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"firelist/internal/backend/firebase"
	"firelist/internal/cli"
	"firelist/internal/commands"
	"firelist/internal/config"
	"firelist/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Service, error) {
		c, err := firebase.New(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
