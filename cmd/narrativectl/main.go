// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command narrativectl runs maintenance tasks against the Narratives
// database: schema migrations, bulk import of plain-text works and summary
// generation.
//
// It reads the same environment as the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/platform/config"
	"github.com/taibuivan/narratives/internal/platform/constants"
	pgstore "github.com/taibuivan/narratives/internal/platform/postgres"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "narrativectl",
	Short:         "Maintenance commands for Narratives",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(migrateCmd, importCmd, summarizeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// # Shared Setup

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName+"ctl"))
}

// connect loads the configuration and opens a data-only gateway client.
// The caller closes the returned pool.
func connect(ctx context.Context, log *slog.Logger) (*config.Config, *pgxpool.Pool, *gateway.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, pool, gateway.New(pool, nil, nil), nil
}
