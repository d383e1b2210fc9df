package scoring

import (
	"context"
	"sort"
	"sync"
)

// Media kinds a calculator can score.
const (
	MediaSeries = "series"
	MediaMovies = "movies"
)

// Calculator computes subtitle scores for one media kind. It merges the
// default weight table, any configured overrides, and the custom profiles
// stored for its media kind.
type Calculator struct {
	media    string
	defaults map[string]int
	source   ProfileSource

	mu             sync.Mutex
	data           map[string]int
	profiles       []*Profile
	profilesLoaded bool
}

// NewSeriesCalculator builds a calculator seeded with the series defaults.
func NewSeriesCalculator(source ProfileSource, overrides map[string]int) *Calculator {
	return newCalculator(MediaSeries, SeriesDefaults(), source, overrides)
}

// NewMovieCalculator builds a calculator seeded with the movie defaults.
func NewMovieCalculator(source ProfileSource, overrides map[string]int) *Calculator {
	return newCalculator(MediaMovies, MovieDefaults(), source, overrides)
}

func newCalculator(media string, defaults map[string]int, source ProfileSource, overrides map[string]int) *Calculator {
	calc := &Calculator{
		media:    media,
		defaults: defaults,
		source:   source,
		data:     cloneTable(defaults),
	}
	calc.Update(overrides)
	return calc
}

// Media returns the media kind this calculator scores.
func (c *Calculator) Media() string {
	return c.media
}

// Update merges weight overrides into the active table. Unknown tag names
// are accepted; the vocabulary is open.
func (c *Calculator) Update(overrides map[string]int) {
	if len(overrides) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for tag, weight := range overrides {
		c.data[tag] = weight
	}
}

// Reset restores the default weight table. Loaded profiles are untouched.
func (c *Calculator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = cloneTable(c.defaults)
}

// LoadProfiles fetches the stored profiles for this calculator's media
// kind, replacing any previously loaded list. The load is guarded so
// repeated calls are cheap; pass force after profile edits to reload.
func (c *Calculator) LoadProfiles(ctx context.Context, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadProfilesLocked(ctx, force)
}

func (c *Calculator) loadProfilesLocked(ctx context.Context, force bool) error {
	if c.profilesLoaded && !force {
		return nil
	}
	c.profiles = nil
	c.profilesLoaded = true
	if c.source == nil {
		return nil
	}
	records, err := c.source.ProfilesFor(ctx, c.media)
	if err != nil {
		return err
	}
	profiles := make([]*Profile, 0, len(records))
	for _, rec := range records {
		profiles = append(profiles, NewProfile(rec, c.source))
	}
	c.profiles = profiles
	return nil
}

// Profiles returns the loaded custom profiles, loading lazily on first use.
func (c *Calculator) Profiles(ctx context.Context) []*Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.loadProfilesLocked(ctx, false)
	out := make([]*Profile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// CheckCustomProfiles evaluates every loaded profile against the subtitle
// and adds the names of satisfied profiles into the supplied match set,
// letting profile names score like base tags.
func (c *Calculator) CheckCustomProfiles(ctx context.Context, sub Comparable, matches MatchSet) {
	if matches == nil {
		return
	}
	for _, profile := range c.Profiles(ctx) {
		if profile.Check(ctx, sub) {
			matches.Add(profile.Name)
		}
	}
}

// CustomProfileScores maps loaded profile names to their score values,
// including negative-score profiles.
func (c *Calculator) CustomProfileScores(ctx context.Context) map[string]int {
	profiles := c.Profiles(ctx)
	scores := make(map[string]int, len(profiles))
	for _, profile := range profiles {
		scores[profile.Name] = profile.Score
	}
	return scores
}

// Scores returns the merged weight table: base weights overlaid with
// custom profile scores. Profile entries win on name collision.
func (c *Calculator) Scores(ctx context.Context) map[string]int {
	profileScores := c.CustomProfileScores(ctx)
	c.mu.Lock()
	merged := cloneTable(c.data)
	c.mu.Unlock()
	for name, score := range profileScores {
		merged[name] = score
	}
	return merged
}

// MaxScore returns the maximum achievable score for this media kind.
//
// Positive profile scores are already present in the merged table yet are
// summed again here, and the hash weight is subtracted even though hash
// is a positive tag: a hash match is mutually exclusive with guessed
// matches, and stored user thresholds were tuned against exactly this
// arithmetic.
func (c *Calculator) MaxScore(ctx context.Context) int {
	profiles := c.Profiles(ctx)
	scores := c.Scores(ctx)

	total := 0
	for _, weight := range scores {
		if weight > 0 {
			total += weight
		}
	}
	for _, profile := range profiles {
		if profile.Score > 0 {
			total += profile.Score
		}
	}
	c.mu.Lock()
	total -= c.data[TagHash]
	c.mu.Unlock()
	return total
}

// Score sums the weights of every tag present in the match set.
func (c *Calculator) Score(ctx context.Context, matches MatchSet) int {
	scores := c.Scores(ctx)
	total := 0
	for tag := range matches {
		total += scores[tag]
	}
	return total
}

// Thresholds bundles the acceptance gate derived from a minimum percent.
type Thresholds struct {
	Threshold float64
	MaxScore  int
	Tags      []string
}

// GetScores computes the acceptance threshold as a percentage of the
// maximum score. When special is non-zero it replaces minPercent, which
// lets callers apply a stricter gate for special episodes. Tags lists the
// known tag names of the merged table in sorted order.
func (c *Calculator) GetScores(ctx context.Context, minPercent, special float64) Thresholds {
	percent := minPercent
	if special != 0 {
		percent = special
	}
	max := c.MaxScore(ctx)
	scores := c.Scores(ctx)
	tags := make([]string, 0, len(scores))
	for tag := range scores {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return Thresholds{
		Threshold: float64(max) * percent / 100,
		MaxScore:  max,
		Tags:      tags,
	}
}

func cloneTable(table map[string]int) map[string]int {
	clone := make(map[string]int, len(table))
	for tag, weight := range table {
		clone[tag] = weight
	}
	return clone
}
