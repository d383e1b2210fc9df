package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProvidersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show configured subtitle providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"opensubtitles", enabledLabel(cfg.Providers.OpenSubtitles.Enabled),
					credentialLabel(cfg.Providers.OpenSubtitles.APIKey != "")},
				{"addic7ed", enabledLabel(cfg.Providers.Addic7ed.Enabled),
					credentialLabel(cfg.Providers.Addic7ed.Username != "" && cfg.Providers.Addic7ed.Password != "")},
			}
			table := renderTable(
				[]tableColumn{col("Provider"), col("Enabled"), col("Credentials")},
				rows,
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func credentialLabel(configured bool) string {
	if configured {
		return "configured"
	}
	return "missing"
}
