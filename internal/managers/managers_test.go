package managers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"substation/internal/config"
	"substation/internal/media"
)

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := NewSonarr(config.Manager{URL: "http://sonarr:8989"}); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewRadarr(config.Manager{APIKey: "secret"}); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestSonarrVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("X-Api-Key = %q", got)
		}
		switch r.URL.Path {
		case "/api/v3/series":
			w.Write([]byte(`[
				{"id": 7, "title": "Haul Road", "year": 2019, "path": "/tv/Haul Road",
				 "tvdbId": 411, "imdbId": "tt0099088"}
			]`))
		case "/api/v3/episodefile":
			if got := r.URL.Query().Get("seriesId"); got != "7" {
				t.Errorf("seriesId = %q", got)
			}
			w.Write([]byte(`[
				{"id": 31, "seriesId": 7, "seasonNumber": 2,
				 "relativePath": "Season 2/Haul.Road.S02E05.1080p.WEB.h264-CONVOY.mkv",
				 "path": "/tv/Haul Road/Season 2/Haul.Road.S02E05.1080p.WEB.h264-CONVOY.mkv",
				 "releaseGroup": "CONVOY"}
			]`))
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	sonarr := NewSonarrWithClient(server.URL, "secret", http.DefaultClient)
	videos, err := sonarr.Videos(context.Background())
	if err != nil {
		t.Fatalf("Videos failed: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(videos))
	}
	video := videos[0]
	if video.Kind != media.KindEpisode || video.Title != "Haul Road" {
		t.Fatalf("unexpected video: %#v", video)
	}
	if video.Season != 2 || video.Episode != 5 {
		t.Errorf("episode numbers = S%02dE%02d", video.Season, video.Episode)
	}
	if video.Resolution != "1080p" || video.ReleaseGroup != "CONVOY" {
		t.Errorf("release attributes lost: %#v", video)
	}
	if video.IMDBID != "tt0099088" {
		t.Errorf("imdb id = %q", video.IMDBID)
	}
}

func TestRadarrVideosSkipsMissingFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/movie" {
			t.Errorf("unexpected request: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[
			{"id": 1, "title": "Road Movie", "year": 1993, "imdbId": "tt0099089",
			 "tmdbId": 901, "hasFile": true,
			 "movieFile": {"relativePath": "Road.Movie.1993.2160p.BluRay.x265-CONVOY.mkv",
			               "path": "/movies/Road Movie (1993)/Road.Movie.1993.2160p.BluRay.x265-CONVOY.mkv",
			               "releaseGroup": ""}},
			{"id": 2, "title": "Missing Movie", "year": 2001, "hasFile": false}
		]`))
	}))
	defer server.Close()

	radarr := NewRadarrWithClient(server.URL, "secret", http.DefaultClient)
	videos, err := radarr.Videos(context.Background())
	if err != nil {
		t.Fatalf("Videos failed: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(videos))
	}
	video := videos[0]
	if video.Kind != media.KindMovie || video.Title != "Road Movie" || video.Year != 1993 {
		t.Fatalf("unexpected video: %#v", video)
	}
	if video.TMDBID != 901 {
		t.Errorf("tmdb id = %d", video.TMDBID)
	}
	// releaseGroup was empty in the API payload; the file name fills it.
	if video.ReleaseGroup != "CONVOY" {
		t.Errorf("release group = %q", video.ReleaseGroup)
	}
	if video.Resolution != "2160p" || video.VideoCodec != "x265" {
		t.Errorf("release attributes lost: %#v", video)
	}
}

func TestRejectedAPIKeySurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	sonarr := NewSonarrWithClient(server.URL, "wrong", http.DefaultClient)
	_, err := sonarr.Series(context.Background())
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("expected API key error, got %v", err)
	}
}
