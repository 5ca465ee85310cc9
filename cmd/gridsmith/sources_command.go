package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSourcesCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Show configured artwork providers and their availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			logger, err := cmdCtx.newLogger(cfg)
			if err != nil {
				return err
			}

			orchestrator, _, err := buildProviders(cfg, logger)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(orchestrator.Providers()))
			for _, provider := range orchestrator.Providers() {
				var ready []string
				for _, platform := range cfg.Platforms {
					if provider.Available(platform.Key) {
						ready = append(ready, platform.Key)
					}
				}
				status := "unavailable"
				if len(ready) > 0 {
					status = strings.Join(ready, ", ")
				}
				rows = append(rows, []string{provider.ID(), status})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Provider", "Available For"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
