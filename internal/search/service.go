package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"substation/internal/config"
	"substation/internal/history"
	"substation/internal/media"
	"substation/internal/notifications"
	"substation/internal/providers"
	"substation/internal/scoring"
)

var (
	// ErrNoCandidates indicates no provider returned a usable candidate.
	ErrNoCandidates = errors.New("no subtitle candidates found")
	// ErrBelowThreshold indicates the best candidate scored under the
	// acceptance threshold.
	ErrBelowThreshold = errors.New("no candidate reached the score threshold")
	// ErrAlreadyBest indicates history holds an equal or better download.
	ErrAlreadyBest = errors.New("existing subtitle is already the best available")
)

// Result is one scored candidate.
type Result struct {
	Candidate providers.Candidate
	Matches   scoring.MatchSet
	Score     int
}

// Outcome describes a completed download.
type Outcome struct {
	Video        media.Video
	Language     string
	Result       Result
	MaxScore     int
	Threshold    float64
	Upgrade      bool
	SubtitlePath string
	Entry        *history.Entry
}

// Service orchestrates providers, scoring, history and notifications.
type Service struct {
	cfg      *config.Config
	registry *providers.Registry
	profiles scoring.ProfileSource
	history  *history.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// NewService wires the pipeline dependencies together.
func NewService(cfg *config.Config, registry *providers.Registry, profiles scoring.ProfileSource,
	store *history.Store, notifier notifications.Service, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if logger != nil {
		logger = logger.With(slog.String("component", "search"))
	} else {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		registry: registry,
		profiles: profiles,
		history:  store,
		notifier: notifier,
		logger:   logger,
	}
}

// Calculator returns a fresh score calculator for the video's media
// kind, seeded with the configured weight overrides.
func (s *Service) Calculator(video media.Video) *scoring.Calculator {
	if video.IsEpisode() {
		return scoring.NewSeriesCalculator(s.profiles, s.cfg.Scoring.SeriesScores)
	}
	return scoring.NewMovieCalculator(s.profiles, s.cfg.Scoring.MovieScores)
}

// Search queries every provider for candidates in the requested
// languages and returns them scored and ranked, best first. Provider
// failures degrade to fewer candidates rather than failing the search.
func (s *Service) Search(ctx context.Context, video media.Video, languages []string) ([]Result, scoring.Thresholds, error) {
	calc := s.Calculator(video)
	thresholds := calc.GetScores(ctx, s.cfg.Scoring.MinimumPercent, s.specialPercent(video))

	var results []Result
	for _, provider := range s.registry.All() {
		candidates, err := provider.ListSubtitles(ctx, video, languages)
		if err != nil {
			if ctx.Err() != nil {
				return nil, thresholds, ctx.Err()
			}
			s.logger.Warn("provider search failed",
				slog.String("provider", provider.Name()),
				slog.String("title", video.Title),
				slog.Any("error", err))
			continue
		}
		s.logger.Debug("provider answered",
			slog.String("provider", provider.Name()),
			slog.Int("candidates", len(candidates)))
		for _, candidate := range candidates {
			matches := candidate.Matches(video)
			calc.CheckCustomProfiles(ctx, candidate, matches)
			results = append(results, Result{
				Candidate: candidate,
				Matches:   matches,
				Score:     calc.Score(ctx, matches),
			})
		}
	}

	rank(results)
	return results, thresholds, nil
}

// DownloadBest searches one language, applies the acceptance threshold
// and the upgrade comparison against history, downloads the winner and
// writes the subtitle file next to the video (or into the configured
// subtitle directory). Candidates failing to download fall through to
// the next ranked one.
func (s *Service) DownloadBest(ctx context.Context, video media.Video, lang string) (*Outcome, error) {
	outcome, err := s.downloadBest(ctx, video, lang)
	if err != nil && !errors.Is(err, ErrAlreadyBest) && !errors.Is(err, context.Canceled) {
		if notifyErr := s.notifier.NotifyFailure(ctx, video.Title, err); notifyErr != nil {
			s.logger.Warn("failure notification not delivered", slog.Any("error", notifyErr))
		}
	}
	return outcome, err
}

func (s *Service) downloadBest(ctx context.Context, video media.Video, lang string) (*Outcome, error) {
	results, thresholds, err := s.Search(ctx, video, []string{lang})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s [%s]", ErrNoCandidates, video.Title, lang)
	}

	best := results[0]
	if float64(best.Score) < thresholds.Threshold {
		return nil, fmt.Errorf("%w: best %d, threshold %.1f",
			ErrBelowThreshold, best.Score, thresholds.Threshold)
	}

	var previous *history.Entry
	if s.history != nil {
		previous, err = s.history.Best(ctx, video.Path, lang)
		if err != nil {
			return nil, err
		}
		if previous != nil && previous.Score >= best.Score {
			return nil, fmt.Errorf("%w: have %d, found %d",
				ErrAlreadyBest, previous.Score, best.Score)
		}
	}

	for _, result := range results {
		if float64(result.Score) < thresholds.Threshold {
			break
		}
		outcome, err := s.finishDownload(ctx, video, lang, result, thresholds, previous)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("candidate download failed, trying next",
				slog.String("provider", result.Candidate.ProviderName()),
				slog.String("id", result.Candidate.ID()),
				slog.Any("error", err))
			continue
		}
		return outcome, nil
	}
	return nil, fmt.Errorf("%w: every acceptable candidate failed to download", ErrNoCandidates)
}

func (s *Service) finishDownload(ctx context.Context, video media.Video, lang string,
	result Result, thresholds scoring.Thresholds, previous *history.Entry) (*Outcome, error) {

	provider := s.registry.Get(result.Candidate.ProviderName())
	if provider == nil {
		return nil, fmt.Errorf("provider %q not registered", result.Candidate.ProviderName())
	}
	data, err := provider.Download(ctx, result.Candidate)
	if err != nil {
		return nil, err
	}

	subtitlePath := s.subtitlePath(video, lang)
	if err := os.MkdirAll(filepath.Dir(subtitlePath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure subtitle directory: %w", err)
	}
	if err := os.WriteFile(subtitlePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write subtitle: %w", err)
	}

	upgrade := previous != nil
	outcome := &Outcome{
		Video:        video,
		Language:     lang,
		Result:       result,
		MaxScore:     thresholds.MaxScore,
		Threshold:    thresholds.Threshold,
		Upgrade:      upgrade,
		SubtitlePath: subtitlePath,
	}

	if s.history != nil {
		entry, err := s.history.Record(ctx, history.Entry{
			VideoPath:    video.Path,
			VideoTitle:   video.Title,
			Media:        video.ScoringMedia(),
			Language:     lang,
			Provider:     result.Candidate.ProviderName(),
			SubtitleID:   result.Candidate.ID(),
			ReleaseInfo:  result.Candidate.ReleaseInfo(),
			Score:        result.Score,
			MaxScore:     thresholds.MaxScore,
			Matches:      tagList(result.Matches),
			Upgrade:      upgrade,
			SubtitlePath: subtitlePath,
		})
		if err != nil {
			return nil, fmt.Errorf("record download: %w", err)
		}
		outcome.Entry = entry
	}

	s.logger.Info("subtitle downloaded",
		slog.String("title", video.Title),
		slog.String("language", lang),
		slog.String("provider", result.Candidate.ProviderName()),
		slog.Int("score", result.Score),
		slog.Int("max_score", thresholds.MaxScore),
		slog.Bool("upgrade", upgrade),
		slog.String("path", subtitlePath))

	var notifyErr error
	if upgrade {
		notifyErr = s.notifier.NotifyUpgrade(ctx, video.Title, lang,
			result.Candidate.ProviderName(), previous.Score, result.Score)
	} else {
		notifyErr = s.notifier.NotifyDownload(ctx, video.Title, lang,
			result.Candidate.ProviderName(), result.Score, thresholds.MaxScore)
	}
	if notifyErr != nil {
		s.logger.Warn("notification not delivered", slog.Any("error", notifyErr))
	}

	return outcome, nil
}

func (s *Service) specialPercent(video media.Video) float64 {
	if video.IsEpisode() && video.Season == 0 {
		return s.cfg.Scoring.SpecialPercent
	}
	return 0
}

// subtitlePath derives the target file: the video basename with the
// language code spliced in before the .srt extension.
func (s *Service) subtitlePath(video media.Video, lang string) string {
	base := filepath.Base(video.Path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := stem + "." + lang + ".srt"
	if dir := s.cfg.Paths.SubtitleDir; dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(filepath.Dir(video.Path), name)
}

// rank orders results by score, then download counter, then candidate ID
// so equal candidates come out in a stable order.
func rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		di, dj := results[i].Candidate.Downloads(), results[j].Candidate.Downloads()
		if di != dj {
			return di > dj
		}
		return results[i].Candidate.ID() < results[j].Candidate.ID()
	})
}

func tagList(matches scoring.MatchSet) []string {
	tags := make([]string, 0, len(matches))
	for tag := range matches {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
