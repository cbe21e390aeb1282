// Package main is the entry point for the promobot service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gopost/promobot/internal/app"
)

var (
	// version can be set at build time via -ldflags
	version = "dev"
)

func main() {
	var configPath string
	var flushDedup bool
	flag.StringVar(&configPath, "config", "config.yml", "Path to configuration file")
	flag.BoolVar(&flushDedup, "flush-dedup", false, "Flush the replied-post cache and exit")
	flag.Parse()

	// .env is optional; real environment variables win either way
	_ = godotenv.Load()

	application, err := app.New(context.Background(), app.Options{
		ConfigPath: configPath,
		Version:    version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to close application: %v\n", closeErr)
		}
	}()

	if flushDedup {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if flushErr := application.FlushDedup(ctx); flushErr != nil {
			application.Logger().Error("Failed to flush replied-post cache")
			os.Exit(1)
		}
		application.Logger().Info("Replied-post cache flushed")
		return
	}

	if runErr := application.Run(context.Background()); runErr != nil {
		application.Logger().Error("Application error")
		os.Exit(1)
	}
}
