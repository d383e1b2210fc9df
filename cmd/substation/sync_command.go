package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"substation/internal/language"
	"substation/internal/managers"
	"substation/internal/media"
	"substation/internal/search"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		managerName string
		langs       []string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch subtitles for every video known to Sonarr and Radarr",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			languages := language.NormalizeList(langs)
			if len(languages) == 0 {
				languages = language.NormalizeList(cfg.General.Languages)
			}
			if len(languages) == 0 {
				return errors.New("no languages requested; pass --lang or configure general.languages")
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			videos, err := collectVideos(runCtx, ctx, managerName)
			if err != nil {
				return err
			}
			if len(videos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No videos to sync.")
				return nil
			}

			if dryRun {
				return printSyncPlan(cmd, videos, languages)
			}

			svc, cleanup, err := ctx.buildSearch()
			if err != nil {
				return err
			}
			defer cleanup()

			unlock, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer unlock()

			return runSync(runCtx, cmd, svc, logger, videos, languages)
		},
	}

	cmd.Flags().StringVar(&managerName, "manager", "all", "Which manager to sync from (sonarr, radarr or all)")
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "Subtitle languages to fetch (defaults to configured languages)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the videos that would be processed without downloading")

	return cmd
}

func collectVideos(runCtx context.Context, ctx *commandContext, managerName string) ([]media.Video, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}

	wantSonarr := managerName == "all" || managerName == "sonarr"
	wantRadarr := managerName == "all" || managerName == "radarr"
	if !wantSonarr && !wantRadarr {
		return nil, fmt.Errorf("unknown manager %q: want sonarr, radarr or all", managerName)
	}

	var videos []media.Video
	if wantSonarr && cfg.Sonarr.Enabled {
		sonarr, err := managers.NewSonarr(cfg.Sonarr)
		if err != nil {
			return nil, err
		}
		episodes, err := sonarr.Videos(runCtx)
		if err != nil {
			return nil, fmt.Errorf("sonarr: %w", err)
		}
		videos = append(videos, episodes...)
	}
	if wantRadarr && cfg.Radarr.Enabled {
		radarr, err := managers.NewRadarr(cfg.Radarr)
		if err != nil {
			return nil, err
		}
		movies, err := radarr.Videos(runCtx)
		if err != nil {
			return nil, fmt.Errorf("radarr: %w", err)
		}
		videos = append(videos, movies...)
	}

	if managerName == "sonarr" && !cfg.Sonarr.Enabled {
		return nil, errors.New("sonarr is not enabled in the configuration")
	}
	if managerName == "radarr" && !cfg.Radarr.Enabled {
		return nil, errors.New("radarr is not enabled in the configuration")
	}
	return videos, nil
}

func printSyncPlan(cmd *cobra.Command, videos []media.Video, languages []string) error {
	rows := make([][]string, 0, len(videos))
	for _, video := range videos {
		rows = append(rows, []string{string(video.Kind), describeVideo(video), video.Path})
	}
	table := renderTable(
		[]tableColumn{col("Kind"), col("Video"), col("Path")},
		rows,
	)
	fmt.Fprintln(cmd.OutOrStdout(), table)
	fmt.Fprintf(cmd.OutOrStdout(), "%d videos, languages: %v\n", len(videos), languages)
	return nil
}

func runSync(runCtx context.Context, cmd *cobra.Command, svc *search.Service,
	logger *slog.Logger, videos []media.Video, languages []string) error {
	stdout := cmd.OutOrStdout()
	var downloaded, skipped, failed int

	for _, video := range videos {
		if _, err := os.Stat(video.Path); err != nil {
			logger.Warn("video file missing, skipping",
				slog.String("path", video.Path))
			skipped++
			continue
		}
		for _, lang := range languages {
			outcome, err := svc.DownloadBest(runCtx, video, lang)
			switch {
			case err == nil:
				downloaded++
				fmt.Fprintf(stdout, "%s [%s]: %s (score %d/%d)\n",
					describeVideo(video), lang, outcome.SubtitlePath,
					outcome.Result.Score, outcome.MaxScore)
			case errors.Is(err, search.ErrAlreadyBest):
				skipped++
			case errors.Is(err, search.ErrNoCandidates), errors.Is(err, search.ErrBelowThreshold):
				failed++
				logger.Info("no acceptable subtitle",
					slog.String("title", video.Title),
					slog.String("language", lang),
					slog.Any("error", err))
			default:
				if runCtx.Err() != nil {
					return runCtx.Err()
				}
				failed++
				logger.Warn("download failed",
					slog.String("title", video.Title),
					slog.String("language", lang),
					slog.Any("error", err))
			}
		}
	}

	fmt.Fprintf(stdout, "Sync complete: %d downloaded, %d skipped, %d failed\n",
		downloaded, skipped, failed)
	return nil
}

func describeVideo(video media.Video) string {
	if video.IsEpisode() {
		return fmt.Sprintf("%s S%02dE%02d", video.Title, video.Season, video.Episode)
	}
	if video.Year > 0 {
		return fmt.Sprintf("%s (%d)", video.Title, video.Year)
	}
	return video.Title
}
