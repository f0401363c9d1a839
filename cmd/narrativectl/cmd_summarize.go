// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/summary"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <id>",
	Short: "Print an AI summary of a work",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		ctx := cmd.Context()

		cfg, pool, client, err := connect(ctx, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		if cfg.GeminiAPIKey == "" {
			return summary.ErrNotConfigured
		}
		gemini, err := summary.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}

		work, err := literature.NewGatewayRepository(client).GetWork(ctx, args[0])
		if err != nil {
			return err
		}

		text, err := summary.NewService(gemini, log).Summarize(ctx, work.Title, work.Content)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}
