package media

import (
	"regexp"
	"strconv"
	"strings"
)

// ReleaseGuess holds the attributes parsed out of a release name.
type ReleaseGuess struct {
	Title            string
	Year             int
	Season           int
	Episode          int
	Source           string
	Resolution       string
	VideoCodec       string
	AudioCodec       string
	ReleaseGroup     string
	StreamingService string
	Edition          string
}

var (
	episodeRe    = regexp.MustCompile(`(?i)\bS(\d{1,3})[\s._-]*E(\d{1,3})\b`)
	altEpisodeRe = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2})\b`)
	yearRe       = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	resolutionRe = regexp.MustCompile(`(?i)\b(2160p|1080p|720p|576p|480p)\b`)
	groupRe      = regexp.MustCompile(`-([A-Za-z0-9]+)(?:\[[^\]]*\])?$`)
	titleSepRe   = regexp.MustCompile(`[._]+`)
	titleNormRe  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Source tokens in detection order: more specific tokens first so
// "web-dl" is not swallowed by a bare "dl" style match.
var sourceTokens = []struct {
	label  string
	tokens []string
}{
	{"bluray", []string{"bluray", "blu-ray", "bdrip", "brrip", "bdremux", "remux"}},
	{"web", []string{"webrip", "web-dl", "webdl", "web"}},
	{"hdtv", []string{"hdtv", "pdtv", "tvrip"}},
	{"dvd", []string{"dvdrip", "dvd"}},
	{"cam", []string{"telesync", "telecine", "screener", "dvdscr", "cam"}},
}

var videoCodecTokens = []struct {
	label  string
	tokens []string
}{
	{"x265", []string{"x265", "h265", "h.265", "hevc"}},
	{"x264", []string{"x264", "h264", "h.264", "avc"}},
	{"av1", []string{"av1"}},
	{"xvid", []string{"xvid", "divx"}},
}

var audioCodecTokens = []struct {
	label  string
	tokens []string
}{
	{"atmos", []string{"atmos"}},
	{"truehd", []string{"truehd"}},
	{"dts", []string{"dts-hd", "dtshd", "dts"}},
	{"eac3", []string{"eac3", "ddp", "dd+"}},
	{"ac3", []string{"ac3", "dd5.1", "dd2.0"}},
	{"flac", []string{"flac"}},
	{"aac", []string{"aac"}},
	{"opus", []string{"opus"}},
}

var streamingTokens = map[string]string{
	"nf":      "NF",
	"netflix": "NF",
	"amzn":    "AMZN",
	"amazon":  "AMZN",
	"dsnp":    "DSNP",
	"disney":  "DSNP",
	"hulu":    "HULU",
	"atvp":    "ATVP",
	"hmax":    "HMAX",
	"max":     "MAX",
	"pcok":    "PCOK",
	"pmtp":    "PMTP",
}

var editionTokens = []string{
	"extended", "unrated", "remastered", "theatrical", "uncut",
	"directors cut", "imax",
}

// ParseReleaseName extracts attribute guesses from a scene-style release
// name. Unrecognized attributes stay zero; callers treat absent guesses
// as "no claim" rather than a mismatch.
func ParseReleaseName(release string) ReleaseGuess {
	guess := ReleaseGuess{}
	release = strings.TrimSpace(release)
	if release == "" {
		return guess
	}
	lower := strings.ToLower(release)

	titleEnd := len(release)

	if m := episodeRe.FindStringSubmatchIndex(release); m != nil {
		season, _ := strconv.Atoi(release[m[2]:m[3]])
		episode, _ := strconv.Atoi(release[m[4]:m[5]])
		guess.Season = season
		guess.Episode = episode
		if m[0] < titleEnd {
			titleEnd = m[0]
		}
	} else if m := altEpisodeRe.FindStringSubmatchIndex(release); m != nil {
		season, _ := strconv.Atoi(release[m[2]:m[3]])
		episode, _ := strconv.Atoi(release[m[4]:m[5]])
		guess.Season = season
		guess.Episode = episode
		if m[0] < titleEnd {
			titleEnd = m[0]
		}
	}

	if m := yearRe.FindStringSubmatchIndex(release); m != nil {
		year, _ := strconv.Atoi(release[m[2]:m[3]])
		guess.Year = year
		if m[0] < titleEnd {
			titleEnd = m[0]
		}
	}

	if m := resolutionRe.FindStringSubmatchIndex(release); m != nil {
		guess.Resolution = strings.ToLower(release[m[2]:m[3]])
		if m[0] < titleEnd {
			titleEnd = m[0]
		}
	}

	guess.Source = firstToken(lower, sourceTokens)
	guess.VideoCodec = firstToken(lower, videoCodecTokens)
	guess.AudioCodec = firstToken(lower, audioCodecTokens)

	if m := groupRe.FindStringSubmatch(strings.TrimSpace(release)); m != nil {
		candidate := m[1]
		// Codec and source tokens sit in the same trailing position;
		// only treat the suffix as a group when it is none of those.
		if !isKnownToken(strings.ToLower(candidate)) {
			guess.ReleaseGroup = candidate
		}
	}

	for token, service := range streamingTokens {
		if containsToken(lower, token) {
			guess.StreamingService = service
			break
		}
	}

	for _, edition := range editionTokens {
		if containsToken(lower, strings.ReplaceAll(edition, " ", ".")) || containsToken(lower, edition) {
			guess.Edition = edition
			break
		}
	}

	title := titleSepRe.ReplaceAllString(release[:titleEnd], " ")
	title = strings.Trim(title, " -([")
	guess.Title = strings.TrimSpace(title)

	return guess
}

func firstToken(lower string, groups []struct {
	label  string
	tokens []string
}) string {
	for _, group := range groups {
		for _, token := range group.tokens {
			if containsToken(lower, token) {
				return group.label
			}
		}
	}
	return ""
}

func containsToken(lower, token string) bool {
	idx := strings.Index(lower, token)
	for idx >= 0 {
		before := idx == 0 || isSeparator(lower[idx-1])
		afterIdx := idx + len(token)
		after := afterIdx >= len(lower) || isSeparator(lower[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], token)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isSeparator(b byte) bool {
	switch b {
	case '.', ' ', '-', '_', '[', ']', '(', ')':
		return true
	}
	return false
}

func isKnownToken(token string) bool {
	for _, group := range sourceTokens {
		for _, t := range group.tokens {
			if t == token {
				return true
			}
		}
	}
	for _, group := range videoCodecTokens {
		for _, t := range group.tokens {
			if t == token {
				return true
			}
		}
	}
	for _, group := range audioCodecTokens {
		for _, t := range group.tokens {
			if t == token {
				return true
			}
		}
	}
	if _, ok := streamingTokens[token]; ok {
		return true
	}
	return false
}

func normalizeCodec(codec string) string {
	lower := strings.ToLower(strings.TrimSpace(codec))
	for _, group := range videoCodecTokens {
		for _, token := range group.tokens {
			if token == lower {
				return group.label
			}
		}
	}
	return lower
}

// NormalizeTitle lowercases a title and strips everything but letters and
// digits so punctuation variants compare equal.
func NormalizeTitle(title string) string {
	return titleNormRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "")
}

func titlesEqual(a, b string) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}
