package media

import (
	"strings"

	"substation/internal/scoring"
)

// Kind distinguishes the two video shapes substation handles.
type Kind string

// Video kinds.
const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "episode"
)

// Video describes one movie or episode a subtitle is searched for.
// Episode-only fields are zero for movies.
type Video struct {
	Kind             Kind
	Title            string // movie title, or series title for episodes
	Year             int
	Season           int
	Episode          int
	EpisodeTitle     string
	Source           string // bluray, web, hdtv, dvd, cam...
	Resolution       string // 2160p, 1080p, 720p...
	VideoCodec       string // x264, x265, av1...
	AudioCodec       string // dts, atmos, aac...
	ReleaseGroup     string
	StreamingService string // NF, AMZN, DSNP...
	Edition          string // extended, unrated, remastered...
	Hash             string // provider-specific content hash of the file
	IMDBID           string
	TMDBID           int64
	Path             string
}

// IsEpisode reports whether the video is a series episode.
func (v Video) IsEpisode() bool {
	return v.Kind == KindEpisode
}

// ScoringMedia returns the scoring media kind for this video.
func (v Video) ScoringMedia() string {
	if v.IsEpisode() {
		return scoring.MediaSeries
	}
	return scoring.MediaMovies
}

// GuessMatches compares a candidate's release info against the video and
// returns the earned match tags. Providers with structured metadata call
// this with the fields they already know; pure release-name providers
// rely entirely on the parse.
func GuessMatches(video Video, releaseInfo string) scoring.MatchSet {
	matches := scoring.MatchSet{}
	guess := ParseReleaseName(releaseInfo)

	if video.IsEpisode() {
		if titlesEqual(guess.Title, video.Title) {
			matches.Add(scoring.TagSeries)
		}
		if guess.Season > 0 && guess.Season == video.Season {
			matches.Add(scoring.TagSeason)
		}
		if guess.Episode > 0 && guess.Episode == video.Episode {
			matches.Add(scoring.TagEpisode)
		}
	} else if titlesEqual(guess.Title, video.Title) {
		matches.Add(scoring.TagTitle)
	}

	if guess.Year > 0 && guess.Year == video.Year {
		matches.Add(scoring.TagYear)
	}
	if guess.Source != "" && guess.Source == strings.ToLower(video.Source) {
		matches.Add(scoring.TagSource)
	}
	if guess.Resolution != "" && guess.Resolution == strings.ToLower(video.Resolution) {
		matches.Add(scoring.TagResolution)
	}
	if guess.VideoCodec != "" && guess.VideoCodec == normalizeCodec(video.VideoCodec) {
		matches.Add(scoring.TagVideoCodec)
	}
	if guess.AudioCodec != "" && guess.AudioCodec == strings.ToLower(video.AudioCodec) {
		matches.Add(scoring.TagAudioCodec)
	}
	if guess.ReleaseGroup != "" && strings.EqualFold(guess.ReleaseGroup, video.ReleaseGroup) {
		matches.Add(scoring.TagReleaseGroup)
	}
	if guess.StreamingService != "" && strings.EqualFold(guess.StreamingService, video.StreamingService) {
		matches.Add(scoring.TagStreamingService)
	}
	if guess.Edition != "" && strings.EqualFold(guess.Edition, video.Edition) {
		matches.Add(scoring.TagEdition)
	}

	return matches
}
