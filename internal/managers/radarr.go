package managers

import (
	"context"
	"fmt"
	"strconv"

	"substation/internal/config"
	"substation/internal/media"
)

// Movie is one Radarr movie record.
type Movie struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Path    string `json:"path"`
	IMDBID  string `json:"imdbId"`
	TMDBID  int64  `json:"tmdbId"`
	HasFile bool   `json:"hasFile"`
	File    struct {
		RelativePath string `json:"relativePath"`
		Path         string `json:"path"`
		ReleaseGroup string `json:"releaseGroup"`
	} `json:"movieFile"`
}

// Radarr is a thin client for the Radarr v3 API.
type Radarr struct {
	client
}

// NewRadarr builds the client from configuration.
func NewRadarr(cfg config.Manager) (*Radarr, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("radarr: %w", err)
	}
	return &Radarr{client: c}, nil
}

// NewRadarrWithClient allows injecting the HTTP client (used in tests).
func NewRadarrWithClient(baseURL, apiKey string, doer HTTPDoer) *Radarr {
	return &Radarr{client: client{baseURL: baseURL, apiKey: apiKey, http: doer}}
}

// Movies lists every movie Radarr manages.
func (r *Radarr) Movies(ctx context.Context) ([]Movie, error) {
	var out []Movie
	if err := r.getJSON(ctx, "/api/v3/movie", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Videos returns one video per movie with a file on disk.
func (r *Radarr) Videos(ctx context.Context) ([]media.Video, error) {
	movies, err := r.Movies(ctx)
	if err != nil {
		return nil, err
	}

	var videos []media.Video
	for _, movie := range movies {
		if !movie.HasFile || movie.File.Path == "" {
			continue
		}
		guess := media.ParseReleaseName(releaseName(movie.File.RelativePath))
		group := movie.File.ReleaseGroup
		if group == "" {
			group = guess.ReleaseGroup
		}
		videos = append(videos, media.Video{
			Kind:         media.KindMovie,
			Title:        movie.Title,
			Year:         movie.Year,
			Source:       guess.Source,
			Resolution:   guess.Resolution,
			VideoCodec:   guess.VideoCodec,
			AudioCodec:   guess.AudioCodec,
			ReleaseGroup: group,
			IMDBID:       movie.IMDBID,
			TMDBID:       movie.TMDBID,
			Path:         movie.File.Path,
		})
	}
	return videos, nil
}

// String renders a short identity for logs.
func (m Movie) String() string {
	return m.Title + " (" + strconv.Itoa(m.Year) + ")"
}
