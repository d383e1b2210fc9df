package addic7ed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"substation/internal/language"
	"substation/internal/media"
	"substation/internal/providers"
	"substation/internal/scoring"
)

// ProviderName identifies this adapter in profiles and logs.
const ProviderName = "addic7ed"

// Provider adapts the Addic7ed website to the provider contract.
type Provider struct {
	client *Client
}

// New builds the provider from client configuration.
func New(cfg Config) (*Provider, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, providers.Wrap(providers.ErrConfiguration, ProviderName, "init", err)
	}
	return &Provider{client: client}, nil
}

// Name implements providers.Provider.
func (p *Provider) Name() string {
	return ProviderName
}

// ListSubtitles implements providers.Provider. The site has no language
// filter worth trusting, so the full page is scraped and filtered here.
func (p *Provider) ListSubtitles(ctx context.Context, video media.Video, languages []string) ([]providers.Candidate, error) {
	wanted := make(map[string]struct{})
	for _, code := range language.NormalizeList(languages) {
		wanted[code] = struct{}{}
	}

	var subs []Subtitle
	var err error
	if video.IsEpisode() {
		subs, err = p.client.EpisodePage(ctx, video.Title, video.Season, video.Episode)
	} else {
		subs, err = p.client.MoviePage(ctx, video.Title, video.Year)
	}
	if err != nil {
		return nil, p.classify("search", err)
	}

	candidates := make([]providers.Candidate, 0, len(subs))
	for _, sub := range subs {
		code := language.ToISO2(sub.Language)
		if code == "" {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[code]; !ok {
				continue
			}
		}
		candidates = append(candidates, &candidate{subtitle: sub, iso2: code})
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
	data, err := p.client.Download(ctx, cand.subtitle.DownloadPath)
	if err != nil {
		return nil, p.classify("download", err)
	}
	return providers.ExtractSubtitle(data)
}

func (p *Provider) classify(operation string, err error) error {
	switch {
	case errors.Is(err, errLoginFailed):
		return providers.Wrap(providers.ErrAuthentication, ProviderName, operation, err)
	case errors.Is(err, errDailyLimit):
		return providers.Wrap(providers.ErrDownloadLimit, ProviderName, operation, err)
	}
	var pageErr *pageError
	if errors.As(err, &pageErr) {
		switch {
		case pageErr.status == http.StatusUnauthorized || pageErr.status == http.StatusForbidden:
			return providers.Wrap(providers.ErrAuthentication, ProviderName, operation, err)
		case pageErr.status == http.StatusTooManyRequests:
			return providers.Wrap(providers.ErrTooManyRequests, ProviderName, operation, err)
		case pageErr.status >= 500:
			return providers.Wrap(providers.ErrServiceUnavailable, ProviderName, operation, err)
		}
	}
	return providers.Wrap(nil, ProviderName, operation, err)
}

// candidate wraps one scraped subtitle.
type candidate struct {
	subtitle Subtitle
	iso2     string
}

func (c *candidate) ID() string            { return c.subtitle.DownloadPath }
func (c *candidate) ProviderName() string  { return ProviderName }
func (c *candidate) Uploader() string      { return c.subtitle.Uploader }
func (c *candidate) LanguageCode() string  { return c.iso2 }
func (c *candidate) ReleaseInfo() string   { return c.subtitle.Release }
func (c *candidate) Downloads() int        { return c.subtitle.Downloads }
func (c *candidate) HearingImpaired() bool { return c.subtitle.HearingImpaired }

// Matches combines the release-name guess with what the page itself
// guarantees: episode pages are resolved by show, season and episode,
// movie pages by title, so those tags are always earned.
func (c *candidate) Matches(video media.Video) scoring.MatchSet {
	matches := media.GuessMatches(video, c.subtitle.Release)
	if video.IsEpisode() {
		matches.Add(scoring.TagSeries)
		matches.Add(scoring.TagSeason)
		matches.Add(scoring.TagEpisode)
	} else {
		matches.Add(scoring.TagTitle)
		if video.Year > 0 {
			matches.Add(scoring.TagYear)
		}
	}
	if c.subtitle.HearingImpaired {
		matches.Add(scoring.TagHearingImpaired)
	}
	return matches
}

// String renders the candidate for logs.
func (c *candidate) String() string {
	return ProviderName + ":" + c.subtitle.DownloadPath
}
