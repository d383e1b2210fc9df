package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"substation/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the subtitle download history",
	}

	cmd.AddCommand(newHistoryListCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))

	return cmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit     int
		videoPath string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded downloads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistoryStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []history.Entry
			if videoPath != "" {
				entries, err = store.ForVideo(cmd.Context(), videoPath)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history entries.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				upgrade := ""
				if entry.Upgrade {
					upgrade = "upgrade"
				}
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04"),
					truncate(entry.VideoTitle, 36),
					entry.Language,
					entry.Provider,
					fmt.Sprintf("%d/%d", entry.Score, entry.MaxScore),
					upgrade,
					truncate(filepath.Base(entry.SubtitlePath), 44),
				})
			}
			table := renderTable(
				[]tableColumn{
					col("When"), col("Video"), col("Lang"), col("Provider"),
					numericCol("Score"), col(""), col("Subtitle"),
				},
				rows,
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum entries to show")
	cmd.Flags().StringVar(&videoPath, "video", "", "Show entries for one video path only")

	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThanDays int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history entries older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThanDays <= 0 {
				return fmt.Errorf("invalid --older-than %d: want a positive day count", olderThanDays)
			}

			store, err := ctx.openHistoryStore()
			if err != nil {
				return err
			}
			defer store.Close()

			cutoff := time.Now().AddDate(0, 0, -olderThanDays)
			removed, err := store.Prune(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %s\n", pluralize(removed, "entry", "entries"))
			return nil
		},
	}

	cmd.Flags().IntVar(&olderThanDays, "older-than", 90, "Delete entries older than this many days")

	return cmd
}

func pluralize(n int64, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.FormatInt(n, 10) + " " + plural
}
