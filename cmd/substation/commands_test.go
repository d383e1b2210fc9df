package main

import (
	"io"
	"strings"
	"testing"

	"substation/internal/media"
	"substation/internal/scoring"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want scoring.Condition
	}{
		{
			name: "simple provider",
			raw:  "provider:opensubtitles",
			want: scoring.Condition{Type: "provider", Value: "opensubtitles"},
		},
		{
			name: "required uploader",
			raw:  "uploader:SomeUploader:required",
			want: scoring.Condition{Type: "uploader", Value: "SomeUploader", Required: true},
		},
		{
			name: "negated language",
			raw:  "language:en:negate",
			want: scoring.Condition{Type: "language", Value: "en", Negate: true},
		},
		{
			name: "both modifiers",
			raw:  "provider:addic7ed:negate:required",
			want: scoring.Condition{Type: "provider", Value: "addic7ed", Required: true, Negate: true},
		},
		{
			name: "regex with colons",
			raw:  "regex:^(?i)web.?dl:1080p:required",
			want: scoring.Condition{Type: "regex", Value: "^(?i)web.?dl:1080p", Required: true},
		},
		{
			name: "uppercase type",
			raw:  "PROVIDER:opensubtitles",
			want: scoring.Condition{Type: "provider", Value: "opensubtitles"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseCondition(tc.raw)
			if err != nil {
				t.Fatalf("parseCondition(%q): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("parseCondition(%q) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseConditionErrors(t *testing.T) {
	for _, raw := range []string{"provider", "bogus:value", "provider:", "provider::required"} {
		if _, err := parseCondition(raw); err == nil {
			t.Errorf("parseCondition(%q): expected error", raw)
		}
	}
}

func TestInferVideoEpisode(t *testing.T) {
	video := inferVideo("/media/tv/Haul.Road.S02E05.1080p.WEB-DL.x264-GRP.mkv", videoOverrides{})
	if !video.IsEpisode() {
		t.Fatalf("expected episode, got %q", video.Kind)
	}
	if video.Title != "Haul Road" {
		t.Errorf("title = %q, want %q", video.Title, "Haul Road")
	}
	if video.Season != 2 || video.Episode != 5 {
		t.Errorf("season/episode = %d/%d, want 2/5", video.Season, video.Episode)
	}
	if video.ReleaseGroup != "GRP" {
		t.Errorf("release group = %q, want GRP", video.ReleaseGroup)
	}
	if video.Path != "/media/tv/Haul.Road.S02E05.1080p.WEB-DL.x264-GRP.mkv" {
		t.Errorf("path not preserved: %q", video.Path)
	}
}

func TestInferVideoMovie(t *testing.T) {
	video := inferVideo("/media/movies/Gravel.Pit.2019.2160p.BluRay.x265-GRP.mkv", videoOverrides{})
	if video.IsEpisode() {
		t.Fatalf("expected movie, got %q", video.Kind)
	}
	if video.Title != "Gravel Pit" {
		t.Errorf("title = %q, want %q", video.Title, "Gravel Pit")
	}
	if video.Year != 2019 {
		t.Errorf("year = %d, want 2019", video.Year)
	}
}

func TestInferVideoOverrides(t *testing.T) {
	video := inferVideo("/media/sample.mkv", videoOverrides{
		title:   "Haul Road",
		season:  3,
		episode: 7,
		year:    2021,
	})
	if !video.IsEpisode() {
		t.Fatalf("expected episode after overrides, got %q", video.Kind)
	}
	if video.Title != "Haul Road" || video.Season != 3 || video.Episode != 7 || video.Year != 2021 {
		t.Errorf("overrides not applied: %+v", video)
	}
}

func TestInferVideoForceMovie(t *testing.T) {
	video := inferVideo("/media/1883.S01E01.1080p.WEB.mkv", videoOverrides{movie: true, title: "1883"})
	if video.IsEpisode() {
		t.Fatalf("expected --movie to force movie kind")
	}
	if video.Season != 0 || video.Episode != 0 {
		t.Errorf("movie should clear season/episode, got %d/%d", video.Season, video.Episode)
	}
}

func TestInferVideoSpecialEpisode(t *testing.T) {
	video := inferVideo("/media/tv/special.mkv", videoOverrides{title: "Haul Road", episode: 1})
	if !video.IsEpisode() {
		t.Fatalf("expected episode when --episode is set")
	}
	if video.Season != 0 {
		t.Errorf("season = %d, want 0 for specials", video.Season)
	}
}

func TestTranslatedPath(t *testing.T) {
	tests := []struct {
		in     string
		target string
		want   string
	}{
		{"/subs/movie.srt", "de", "/subs/movie.de.srt"},
		{"/subs/movie.en.srt", "de", "/subs/movie.de.srt"},
		{"/subs/movie.2019.srt", "fr", "/subs/movie.2019.fr.srt"},
	}
	for _, tc := range tests {
		if got := translatedPath(tc.in, tc.target); got != tc.want {
			t.Errorf("translatedPath(%q, %q) = %q, want %q", tc.in, tc.target, got, tc.want)
		}
	}
}

func TestDescribeVideo(t *testing.T) {
	episode := media.Video{Kind: media.KindEpisode, Title: "Haul Road", Season: 2, Episode: 5}
	if got := describeVideo(episode); got != "Haul Road S02E05" {
		t.Errorf("describeVideo episode = %q", got)
	}
	movie := media.Video{Kind: media.KindMovie, Title: "Gravel Pit", Year: 2019}
	if got := describeVideo(movie); got != "Gravel Pit (2019)" {
		t.Errorf("describeVideo movie = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a very long release name", 10); got != "a very ..." {
		t.Errorf("truncate long = %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]tableColumn{col("Name"), numericCol("Count")},
		[][]string{{"alpha", "10"}, {"beta", "7"}, {"short-row"}},
	)
	if out == "" {
		t.Fatalf("expected rendered table output")
	}
	for _, want := range []string{"Name", "Count", "alpha", "short-row"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil) != "" {
		t.Errorf("expected empty output for zero columns")
	}
}
