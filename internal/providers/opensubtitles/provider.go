package opensubtitles

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/time/rate"

	"substation/internal/language"
	"substation/internal/media"
	"substation/internal/providers"
	"substation/internal/scoring"
)

// ProviderName identifies this adapter in profiles and logs.
const ProviderName = "opensubtitles"

// The REST API allows one request per second for free accounts.
const requestsPerSecond = 1

// Provider adapts the OpenSubtitles REST API to the provider contract.
type Provider struct {
	client  *Client
	limiter *rate.Limiter
}

// New builds the provider from client configuration.
func New(cfg Config) (*Provider, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, providers.Wrap(providers.ErrConfiguration, ProviderName, "init", err)
	}
	return &Provider{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

// Name implements providers.Provider.
func (p *Provider) Name() string {
	return ProviderName
}

// ListSubtitles implements providers.Provider.
func (p *Provider) ListSubtitles(ctx context.Context, video media.Video, languages []string) ([]providers.Candidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := SearchRequest{
		TMDBID:    video.TMDBID,
		IMDBID:    video.IMDBID,
		Languages: language.NormalizeList(languages),
		Year:      video.Year,
		MovieHash: video.Hash,
	}
	if video.IsEpisode() {
		req.MediaType = "episode"
		req.Query = video.Title
		req.Season = video.Season
		req.Episode = video.Episode
	} else {
		req.MediaType = "movie"
		if req.TMDBID == 0 && req.IMDBID == "" {
			req.Query = video.Title
		}
	}

	subs, err := p.client.Search(ctx, req)
	if err != nil {
		return nil, p.classify("search", err)
	}

	candidates := make([]providers.Candidate, 0, len(subs))
	for _, sub := range subs {
		candidates = append(candidates, &candidate{subtitle: sub})
	}
	return candidates, nil
}

// Download implements providers.Provider.
func (p *Provider) Download(ctx context.Context, c providers.Candidate) ([]byte, error) {
	cand, ok := c.(*candidate)
	if !ok {
		return nil, providers.Wrap(providers.ErrConfiguration, ProviderName, "download",
			fmt.Errorf("foreign candidate %T", c))
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	data, err := p.client.Download(ctx, cand.subtitle.FileID)
	if err != nil {
		return nil, p.classify("download", err)
	}
	return providers.ExtractSubtitle(data)
}

func (p *Provider) classify(operation string, err error) error {
	if errors.Is(err, errDownloadQuota) {
		return providers.Wrap(providers.ErrDownloadLimit, ProviderName, operation, err)
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.status == 401 || apiErr.status == 403:
			return providers.Wrap(providers.ErrAuthentication, ProviderName, operation, err)
		case apiErr.status == 406:
			return providers.Wrap(providers.ErrDownloadLimit, ProviderName, operation, err)
		case apiErr.status == 429:
			return providers.Wrap(providers.ErrTooManyRequests, ProviderName, operation, err)
		case apiErr.status >= 500:
			return providers.Wrap(providers.ErrServiceUnavailable, ProviderName, operation, err)
		}
	}
	return providers.Wrap(nil, ProviderName, operation, err)
}

// candidate wraps one search result.
type candidate struct {
	subtitle Subtitle
}

func (c *candidate) ID() string            { return c.subtitle.ID }
func (c *candidate) ProviderName() string  { return ProviderName }
func (c *candidate) Uploader() string      { return c.subtitle.Uploader }
func (c *candidate) LanguageCode() string  { return language.ToISO2(c.subtitle.Language) }
func (c *candidate) ReleaseInfo() string   { return c.subtitle.Release }
func (c *candidate) Downloads() int        { return c.subtitle.Downloads }
func (c *candidate) HearingImpaired() bool { return c.subtitle.HearingImpaired }

// Matches combines the release-name guess with the structured metadata
// the API returns. A hash match stands alone: it is mutually exclusive
// with guessed matches by provider convention.
func (c *candidate) Matches(video media.Video) scoring.MatchSet {
	if c.subtitle.HashMatch {
		return scoring.NewMatchSet(scoring.TagHash)
	}
	matches := media.GuessMatches(video, c.subtitle.Release)
	if c.subtitle.FeatureTitle != "" && media.NormalizeTitle(c.subtitle.FeatureTitle) == media.NormalizeTitle(video.Title) {
		if video.IsEpisode() {
			matches.Add(scoring.TagSeries)
		} else {
			matches.Add(scoring.TagTitle)
		}
	}
	if c.subtitle.FeatureYear > 0 && c.subtitle.FeatureYear == video.Year {
		matches.Add(scoring.TagYear)
	}
	if c.subtitle.HearingImpaired {
		matches.Add(scoring.TagHearingImpaired)
	}
	return matches
}

// String renders the candidate for logs.
func (c *candidate) String() string {
	return ProviderName + ":" + c.subtitle.ID + " file=" + strconv.FormatInt(c.subtitle.FileID, 10)
}
