// Package main provides the entry point for the loreindex CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version        = "0.1.0-dev"
	globalLogLevel string
	globalPretty   bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "loreindex",
		Short:   "A BM25 search index over a curated wiki knowledge base",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&globalPretty, "pretty", false, "Pretty-print log output")

	rootCmd.AddCommand(
		newBuildCmd(),
		newQueryCmd(),
		newServeCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
