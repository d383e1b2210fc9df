package main

import (
	"path/filepath"
	"strings"

	"substation/internal/media"
)

// videoOverrides carries the metadata flags a user can supply when the
// filename alone is not enough.
type videoOverrides struct {
	title   string
	year    int
	season  int
	episode int
	movie   bool
}

// inferVideo builds a video description from the file path, letting
// explicit flags win over whatever the release name parse produced. The
// video is an episode when a season/episode pair is known and --movie
// was not forced.
func inferVideo(path string, overrides videoOverrides) media.Video {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	guess := media.ParseReleaseName(stem)

	video := media.Video{
		Title:            guess.Title,
		Year:             guess.Year,
		Season:           guess.Season,
		Episode:          guess.Episode,
		Source:           guess.Source,
		Resolution:       guess.Resolution,
		VideoCodec:       guess.VideoCodec,
		AudioCodec:       guess.AudioCodec,
		ReleaseGroup:     guess.ReleaseGroup,
		StreamingService: guess.StreamingService,
		Edition:          guess.Edition,
		Path:             path,
	}

	if overrides.title != "" {
		video.Title = overrides.title
	}
	if overrides.year > 0 {
		video.Year = overrides.year
	}
	if overrides.season > 0 {
		video.Season = overrides.season
	}
	if overrides.episode > 0 {
		video.Episode = overrides.episode
	}

	if !overrides.movie && (video.Episode > 0 || overrides.season > 0) {
		video.Kind = media.KindEpisode
	} else {
		video.Kind = media.KindMovie
		video.Season = 0
		video.Episode = 0
	}
	return video
}
