package scoring

import (
	"context"
	"testing"
)

func TestSeriesMaxScoreWithoutProfiles(t *testing.T) {
	calc := NewSeriesCalculator(newFakeSource(), nil)

	// (359+180+90+30+30+15+7+3+2+2+1) - 359 = 360
	if got := calc.MaxScore(context.Background()); got != 360 {
		t.Fatalf("series max score = %d, want 360", got)
	}
}

func TestMovieMaxScoreWithoutProfiles(t *testing.T) {
	calc := NewMovieCalculator(newFakeSource(), nil)

	// (119+60+30+13+7+3+2+2+1) - 119 = 118
	if got := calc.MaxScore(context.Background()); got != 118 {
		t.Fatalf("movie max score = %d, want 118", got)
	}
}

func TestMaxScoreCountsPositiveProfilesTwice(t *testing.T) {
	source := newFakeSource()
	source.profiles[MediaMovies] = []ProfileRecord{
		{ID: 1, Name: "boost", Score: 40, Media: MediaMovies},
		{ID: 2, Name: "penalty", Score: -25, Media: MediaMovies},
	}
	calc := NewMovieCalculator(source, nil)

	// Base positive sum is 118 (see above). The boost profile lands in
	// the merged table (+40) and is summed again in the profile term
	// (+40); the negative profile contributes nothing to the maximum.
	if got := calc.MaxScore(context.Background()); got != 198 {
		t.Fatalf("max score with profiles = %d, want 198", got)
	}
}

func TestScoresProfileNameOverridesBaseTag(t *testing.T) {
	source := newFakeSource()
	source.profiles[MediaSeries] = []ProfileRecord{
		{ID: 1, Name: "release_group", Score: 99, Media: MediaSeries},
	}
	calc := NewSeriesCalculator(source, nil)

	scores := calc.Scores(context.Background())
	if scores[TagReleaseGroup] != 99 {
		t.Fatalf("scores[release_group] = %d, want profile override 99", scores[TagReleaseGroup])
	}
}

func TestUpdateAndReset(t *testing.T) {
	calc := NewSeriesCalculator(newFakeSource(), map[string]int{TagSource: 50})

	scores := calc.Scores(context.Background())
	if scores[TagSource] != 50 {
		t.Fatalf("override not applied, source weight = %d", scores[TagSource])
	}

	calc.Reset()
	scores = calc.Scores(context.Background())
	if scores[TagSource] != 7 {
		t.Fatalf("reset did not restore defaults, source weight = %d", scores[TagSource])
	}
}

func TestGetScoresThreshold(t *testing.T) {
	calc := NewMovieCalculator(newFakeSource(), nil)

	got := calc.GetScores(context.Background(), 80, 0)
	if got.MaxScore != 118 {
		t.Fatalf("max score = %d, want 118", got.MaxScore)
	}
	want := float64(118) * 80 / 100
	if got.Threshold != want {
		t.Fatalf("threshold = %.2f, want %.2f", got.Threshold, want)
	}
	if len(got.Tags) == 0 {
		t.Fatal("expected known tag names")
	}

	// A non-zero special percent replaces the minimum.
	special := calc.GetScores(context.Background(), 80, 50)
	if special.Threshold != float64(118)*50/100 {
		t.Fatalf("special threshold = %.2f", special.Threshold)
	}
}

func TestCheckCustomProfilesEndToEnd(t *testing.T) {
	source := newFakeSource()
	source.profiles[MediaMovies] = []ProfileRecord{
		{ID: 1, Name: "trusted_uploader", Score: 50, Media: MediaMovies},
	}
	source.conditions[1] = []Condition{
		{Type: ConditionUploader, Value: "alice", Required: true},
	}
	calc := NewMovieCalculator(source, nil)

	sub := fakeSubtitle{provider: "opensubtitles", uploader: "alice", language: "en", release: "Movie.1080p.BluRay"}
	matches := NewMatchSet(TagTitle, TagYear)
	calc.CheckCustomProfiles(context.Background(), sub, matches)

	if !matches.Has("trusted_uploader") {
		t.Fatal("satisfied profile name should join the match set")
	}

	score := calc.Score(context.Background(), matches)
	// title(60) + year(30) + trusted_uploader(50)
	if score != 140 {
		t.Fatalf("score = %d, want 140", score)
	}
}

func TestLoadProfilesForceReplacesList(t *testing.T) {
	source := newFakeSource()
	source.profiles[MediaSeries] = []ProfileRecord{{ID: 1, Name: "one", Score: 5, Media: MediaSeries}}
	calc := NewSeriesCalculator(source, nil)

	if got := len(calc.Profiles(context.Background())); got != 1 {
		t.Fatalf("expected 1 profile, got %d", got)
	}

	source.profiles[MediaSeries] = append(source.profiles[MediaSeries], ProfileRecord{ID: 2, Name: "two", Score: 6, Media: MediaSeries})

	// Not auto-invalidated: the cached list survives until a forced load.
	if got := len(calc.Profiles(context.Background())); got != 1 {
		t.Fatalf("cached profile list changed without force, got %d", got)
	}
	if err := calc.LoadProfiles(context.Background(), true); err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if got := len(calc.Profiles(context.Background())); got != 2 {
		t.Fatalf("expected 2 profiles after forced reload, got %d", got)
	}
}
