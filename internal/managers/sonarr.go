package managers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"substation/internal/config"
	"substation/internal/media"
)

// Series is one Sonarr series record.
type Series struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Path   string `json:"path"`
	TVDBID int64  `json:"tvdbId"`
	IMDBID string `json:"imdbId"`
}

// EpisodeFile is one file Sonarr tracks for a series.
type EpisodeFile struct {
	ID           int64  `json:"id"`
	SeriesID     int64  `json:"seriesId"`
	SeasonNumber int    `json:"seasonNumber"`
	RelativePath string `json:"relativePath"`
	Path         string `json:"path"`
	ReleaseGroup string `json:"releaseGroup"`
}

// Sonarr is a thin client for the Sonarr v3 API.
type Sonarr struct {
	client
}

// NewSonarr builds the client from configuration.
func NewSonarr(cfg config.Manager) (*Sonarr, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("sonarr: %w", err)
	}
	return &Sonarr{client: c}, nil
}

// NewSonarrWithClient allows injecting the HTTP client (used in tests).
func NewSonarrWithClient(baseURL, apiKey string, doer HTTPDoer) *Sonarr {
	return &Sonarr{client: client{baseURL: baseURL, apiKey: apiKey, http: doer}}
}

// Series lists every series Sonarr manages.
func (s *Sonarr) Series(ctx context.Context) ([]Series, error) {
	var out []Series
	if err := s.getJSON(ctx, "/api/v3/series", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EpisodeFiles lists the files on disk for one series.
func (s *Sonarr) EpisodeFiles(ctx context.Context, seriesID int64) ([]EpisodeFile, error) {
	query := url.Values{"seriesId": []string{strconv.FormatInt(seriesID, 10)}}
	var out []EpisodeFile
	if err := s.getJSON(ctx, "/api/v3/episodefile", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Videos walks the whole library and returns one video per episode file.
// Episode numbers and release attributes come from the file name.
func (s *Sonarr) Videos(ctx context.Context) ([]media.Video, error) {
	series, err := s.Series(ctx)
	if err != nil {
		return nil, err
	}

	var videos []media.Video
	for _, show := range series {
		files, err := s.EpisodeFiles(ctx, show.ID)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", show.Title, err)
		}
		for _, file := range files {
			guess := media.ParseReleaseName(releaseName(file.RelativePath))
			group := file.ReleaseGroup
			if group == "" {
				group = guess.ReleaseGroup
			}
			videos = append(videos, media.Video{
				Kind:         media.KindEpisode,
				Title:        show.Title,
				Year:         show.Year,
				Season:       file.SeasonNumber,
				Episode:      guess.Episode,
				Source:       guess.Source,
				Resolution:   guess.Resolution,
				VideoCodec:   guess.VideoCodec,
				AudioCodec:   guess.AudioCodec,
				ReleaseGroup: group,
				IMDBID:       show.IMDBID,
				Path:         file.Path,
			})
		}
	}
	return videos, nil
}
