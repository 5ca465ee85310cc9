package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridsmith/internal/ledger"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-platform results from past runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			store, err := ledger.Open(cfg.Paths.LedgerDir)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.Summaries(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs yet.")
				return nil
			}
			printSummaryTable(cmd.OutOrStdout(), summaries)
			return nil
		},
	}
}
