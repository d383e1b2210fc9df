package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"substation/internal/language"
	"substation/internal/search"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		overrides videoOverrides
		langs     []string
		listOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "search <video-file>",
		Short: "Search providers and download the best subtitle for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			videoPath := args[0]
			if _, err := os.Stat(videoPath); err != nil {
				return fmt.Errorf("video file: %w", err)
			}
			video := inferVideo(videoPath, overrides)
			if video.Title == "" {
				return errors.New("could not determine a title from the filename; pass --title")
			}

			languages := language.NormalizeList(langs)
			if len(languages) == 0 {
				languages = language.NormalizeList(cfg.General.Languages)
			}
			if len(languages) == 0 {
				return errors.New("no languages requested; pass --lang or configure general.languages")
			}

			svc, cleanup, err := ctx.buildSearch()
			if err != nil {
				return err
			}
			defer cleanup()

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if listOnly {
				results, thresholds, err := svc.Search(runCtx, video, languages)
				if err != nil {
					return err
				}
				return printResults(cmd, results, thresholds.Threshold, thresholds.MaxScore)
			}

			unlock, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer unlock()

			stdout := cmd.OutOrStdout()
			var failures int
			for _, lang := range languages {
				outcome, err := svc.DownloadBest(runCtx, video, lang)
				switch {
				case err == nil:
					verb := "Downloaded"
					if outcome.Upgrade {
						verb = "Upgraded"
					}
					fmt.Fprintf(stdout, "%s %s subtitle: %s (score %d/%d, %s)\n",
						verb, language.DisplayName(lang), outcome.SubtitlePath,
						outcome.Result.Score, outcome.MaxScore,
						outcome.Result.Candidate.ProviderName())
				case errors.Is(err, search.ErrAlreadyBest):
					fmt.Fprintf(stdout, "%s: existing subtitle is already the best available\n",
						language.DisplayName(lang))
				case errors.Is(err, search.ErrNoCandidates), errors.Is(err, search.ErrBelowThreshold):
					fmt.Fprintf(stdout, "%s: %v\n", language.DisplayName(lang), err)
					failures++
				default:
					return err
				}
			}
			if failures == len(languages) {
				return errors.New("no subtitles downloaded")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&overrides.title, "title", "", "Override the title parsed from the filename")
	cmd.Flags().IntVar(&overrides.year, "year", 0, "Override the release year")
	cmd.Flags().IntVar(&overrides.season, "season", 0, "Override the season number")
	cmd.Flags().IntVar(&overrides.episode, "episode", 0, "Override the episode number")
	cmd.Flags().BoolVar(&overrides.movie, "movie", false, "Treat the video as a movie even if it parses as an episode")
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "Subtitle languages to fetch (defaults to configured languages)")
	cmd.Flags().BoolVar(&listOnly, "list", false, "List scored candidates without downloading")

	return cmd
}

func printResults(cmd *cobra.Command, results []search.Result, threshold float64, maxScore int) error {
	stdout := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(stdout, "No candidates found.")
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		candidate := result.Candidate
		hi := ""
		if candidate.HearingImpaired() {
			hi = "HI"
		}
		rows = append(rows, []string{
			candidate.ProviderName(),
			candidate.ID(),
			candidate.LanguageCode(),
			truncate(candidate.ReleaseInfo(), 48),
			strconv.Itoa(result.Score),
			strings.Join(sortedTags(result.Matches), " "),
			strconv.Itoa(candidate.Downloads()),
			hi,
		})
	}

	table := renderTable(
		[]tableColumn{
			col("Provider"), col("ID"), col("Lang"), col("Release"),
			numericCol("Score"), col("Matches"), numericCol("Downloads"), col("HI"),
		},
		rows,
	)
	fmt.Fprintln(stdout, table)
	fmt.Fprintf(stdout, "Acceptance threshold: %.0f of %d\n", threshold, maxScore)
	return nil
}

func sortedTags(matches map[string]struct{}) []string {
	tags := make([]string, 0, len(matches))
	for tag := range matches {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
