package scoring

import (
	"context"
	"regexp"
	"sync"
)

// Condition field types recognized by profile evaluation. Unknown type
// strings in stored rows are skipped without failing the profile so old
// profile data keeps working after upgrades.
const (
	ConditionProvider = "provider"
	ConditionUploader = "uploader"
	ConditionLanguage = "language"
	ConditionRegex    = "regex"
)

// Condition is one row of a custom score profile.
type Condition struct {
	Type     string
	Value    string
	Required bool
	Negate   bool
}

// Comparable exposes the candidate fields a condition can inspect.
type Comparable interface {
	ProviderName() string
	Uploader() string
	LanguageCode() string
	ReleaseInfo() string
}

// ProfileSource supplies stored profiles and their condition rows.
type ProfileSource interface {
	ProfilesFor(ctx context.Context, media string) ([]ProfileRecord, error)
	ConditionsFor(ctx context.Context, profileID int64) ([]Condition, error)
}

// ProfileRecord is the stored shape of a profile before conditions load.
type ProfileRecord struct {
	ID    int64
	Name  string
	Score int
	Media string
}

// Profile is a user-defined scoring rule. Conditions load lazily on first
// Check and stay cached until Invalidate.
type Profile struct {
	ID    int64
	Name  string
	Score int
	Media string

	source ProfileSource

	mu         sync.Mutex
	loaded     bool
	conditions []Condition
}

// NewProfile wraps a stored profile record with its condition source.
func NewProfile(rec ProfileRecord, source ProfileSource) *Profile {
	return &Profile{
		ID:     rec.ID,
		Name:   rec.Name,
		Score:  rec.Score,
		Media:  rec.Media,
		source: source,
	}
}

// LoadConditions fetches the ordered condition rows for this profile.
// Repeated calls are no-ops until Invalidate. A source miss or failure
// degrades to an empty condition list rather than an error; a profile
// with no conditions can never be satisfied.
func (p *Profile) LoadConditions(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadConditionsLocked(ctx)
}

func (p *Profile) loadConditionsLocked(ctx context.Context) {
	if p.loaded {
		return
	}
	p.conditions = nil
	if p.source != nil {
		if conditions, err := p.source.ConditionsFor(ctx, p.ID); err == nil {
			p.conditions = conditions
		}
	}
	p.loaded = true
}

// Invalidate clears the cached conditions so the next Check reloads them.
// Call after editing the stored profile.
func (p *Profile) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = false
	p.conditions = nil
}

// Conditions returns a copy of the cached condition rows, loading them if
// needed.
func (p *Profile) Conditions(ctx context.Context) []Condition {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadConditionsLocked(ctx)
	out := make([]Condition, len(p.conditions))
	copy(out, p.conditions)
	return out
}

// Check reports whether the subtitle candidate satisfies this profile.
// A profile with zero conditions is never satisfied. A failed required
// condition vetoes the profile immediately. Otherwise the profile is
// satisfied when at least one non-negated condition hit was recorded:
// required rows act as AND-style gates while optional rows combine as OR.
func (p *Profile) Check(ctx context.Context, sub Comparable) bool {
	if sub == nil {
		return false
	}
	p.mu.Lock()
	p.loadConditionsLocked(ctx)
	conditions := make([]Condition, len(p.conditions))
	copy(conditions, p.conditions)
	p.mu.Unlock()

	if len(conditions) == 0 {
		return false
	}
	return checkConditions(conditions, sub)
}

func checkConditions(conditions []Condition, sub Comparable) bool {
	var results []bool
	for _, cond := range conditions {
		value, ok := conditionField(cond.Type, sub)
		if !ok {
			// Unknown field type: neither a match nor a required failure.
			continue
		}
		if conditionHit(cond, value) {
			results = append(results, !cond.Negate)
			continue
		}
		if cond.Required {
			return false
		}
	}
	for _, matched := range results {
		if matched {
			return true
		}
	}
	return false
}

func conditionField(kind string, sub Comparable) (string, bool) {
	switch kind {
	case ConditionProvider:
		return sub.ProviderName(), true
	case ConditionUploader:
		return sub.Uploader(), true
	case ConditionLanguage:
		return sub.LanguageCode(), true
	case ConditionRegex:
		return sub.ReleaseInfo(), true
	default:
		return "", false
	}
}

func conditionHit(cond Condition, value string) bool {
	if cond.Type == ConditionRegex {
		re, err := regexp.Compile(cond.Value)
		if err != nil {
			// A bad pattern never hits; profile evaluation does not fail.
			return false
		}
		return re.FindStringIndex(value) != nil
	}
	return cond.Value == value
}
