package opensubtitles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"substation/internal/media"
	"substation/internal/providers"
	"substation/internal/scoring"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Provider) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	provider, err := New(Config{
		APIKey:    "abc",
		UserAgent: "Substation/test",
		BaseURL:   server.URL,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return server, provider
}

func TestListSubtitlesBuildsQueryAndParsesResponse(t *testing.T) {
	var captured *http.Request
	_, provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		if r.URL.Path != "/subtitles" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		resp := map[string]any{
			"data": []map[string]any{
				{
					"id": "11",
					"attributes": map[string]any{
						"language":         "en",
						"release":          "The.Expanse.S03E07.1080p.WEB-DL.x264-NTb",
						"download_count":   1200,
						"hearing_impaired": false,
						"uploader":         map[string]any{"name": "alice"},
						"feature_details":  map[string]any{"title": "The Expanse", "year": 2018},
						"files":            []map[string]any{{"file_id": 555}},
					},
				},
				{
					"id": "12",
					"attributes": map[string]any{
						// No language: filtered out.
						"files": []map[string]any{{"file_id": 777}},
					},
				},
			},
			"meta": map[string]any{"total_count": 2},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	video := media.Video{
		Kind:    media.KindEpisode,
		Title:   "The Expanse",
		Year:    2018,
		Season:  3,
		Episode: 7,
	}
	candidates, err := provider.ListSubtitles(context.Background(), video, []string{"en"})
	if err != nil {
		t.Fatalf("ListSubtitles: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	query := captured.URL.Query()
	if query.Get("season_number") != "3" || query.Get("episode_number") != "7" {
		t.Fatalf("season/episode params missing: %v", query)
	}
	if query.Get("type") != "episode" {
		t.Fatalf("type = %q", query.Get("type"))
	}
	if captured.Header.Get("Api-Key") != "abc" {
		t.Fatal("api key header missing")
	}

	cand := candidates[0]
	if cand.ProviderName() != ProviderName {
		t.Fatalf("provider name = %q", cand.ProviderName())
	}
	if cand.Uploader() != "alice" {
		t.Fatalf("uploader = %q", cand.Uploader())
	}
	if cand.LanguageCode() != "en" {
		t.Fatalf("language = %q", cand.LanguageCode())
	}
	if cand.Downloads() != 1200 {
		t.Fatalf("downloads = %d", cand.Downloads())
	}

	matches := cand.Matches(video)
	for _, tag := range []string{scoring.TagSeries, scoring.TagSeason, scoring.TagEpisode, scoring.TagYear} {
		if !matches.Has(tag) {
			t.Errorf("missing match tag %q", tag)
		}
	}
}

func TestMatchesHashMatchStandsAlone(t *testing.T) {
	cand := &candidate{subtitle: Subtitle{
		Release:      "The.Expanse.S03E07.1080p.WEB-DL.x264-NTb",
		FeatureTitle: "The Expanse",
		HashMatch:    true,
	}}
	matches := cand.Matches(media.Video{Kind: media.KindEpisode, Title: "The Expanse", Season: 3, Episode: 7})
	if !matches.Has(scoring.TagHash) {
		t.Fatal("hash tag missing")
	}
	if len(matches) != 1 {
		t.Fatalf("hash match must be exclusive, got %v", matches)
	}
}

func TestListSubtitlesMapsAuthError(t *testing.T) {
	_, provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := provider.ListSubtitles(context.Background(), media.Video{Kind: media.KindMovie, Title: "X"}, nil)
	if !errors.Is(err, providers.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if !providers.IsFatal(err) {
		t.Fatal("authentication error should be session fatal")
	}
}

func TestListSubtitlesMapsRateLimit(t *testing.T) {
	_, provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := provider.ListSubtitles(context.Background(), media.Video{Kind: media.KindMovie, Title: "X"}, nil)
	if !errors.Is(err, providers.ErrTooManyRequests) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !providers.IsRetriable(err) {
		t.Fatal("rate limit error should be retriable")
	}
}

func TestDownloadFollowsLink(t *testing.T) {
	server, provider := newTestServer(t, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"link":      server.URL + "/payload.srt",
			"file_name": "payload.srt",
			"requests":  1,
			"remaining": 99,
		})
	})
	mux.HandleFunc("/payload.srt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("1\n00:00:01,000 --> 00:00:02,000\nHi\n"))
	})
	server.Config.Handler = mux

	data, err := provider.Download(context.Background(), &candidate{subtitle: Subtitle{ID: "11", FileID: 555}})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty payload")
	}
}

func TestDownloadQuotaExhausted(t *testing.T) {
	_, provider := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"link":      "http://example.invalid/payload.srt",
			"requests":  100,
			"remaining": -1,
		})
	})

	_, err := provider.Download(context.Background(), &candidate{subtitle: Subtitle{FileID: 555}})
	if !errors.Is(err, providers.ErrDownloadLimit) {
		t.Fatalf("expected download limit error, got %v", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, providers.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
