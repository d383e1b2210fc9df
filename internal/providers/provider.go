package providers

import (
	"context"

	"substation/internal/media"
	"substation/internal/scoring"
)

// Candidate is one externally-sourced subtitle description, not yet
// downloaded. It exposes the comparable fields custom profile conditions
// inspect plus the provider-specific match computation.
type Candidate interface {
	scoring.Comparable

	// ID identifies the candidate within its provider.
	ID() string
	// Downloads returns the provider's download counter, used as a
	// ranking tiebreaker. Providers without counters return 0.
	Downloads() int
	// HearingImpaired reports whether the subtitle targets the
	// hearing impaired.
	HearingImpaired() bool
	// Matches computes the match tag set for this candidate against
	// the video.
	Matches(video media.Video) scoring.MatchSet
}

// Provider is the integration against one external subtitle source.
type Provider interface {
	// Name returns the provider identifier used in profiles and logs.
	Name() string
	// ListSubtitles queries the source for candidates in the requested
	// languages. Transient failures should be returned as wrapped
	// taxonomy errors; the caller degrades to an empty candidate list.
	ListSubtitles(ctx context.Context, video media.Video, languages []string) ([]Candidate, error)
	// Download fetches the raw subtitle content for a candidate,
	// decompressing archives when needed.
	Download(ctx context.Context, candidate Candidate) ([]byte, error)
}

// Registry holds the enabled providers in configuration order.
type Registry struct {
	providers []Provider
}

// NewRegistry builds a registry from the given providers, skipping nils.
func NewRegistry(providers ...Provider) *Registry {
	reg := &Registry{}
	for _, p := range providers {
		if p != nil {
			reg.providers = append(reg.providers, p)
		}
	}
	return reg
}

// All returns the registered providers.
func (r *Registry) All() []Provider {
	if r == nil {
		return nil
	}
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Get returns the provider with the given name, or nil.
func (r *Registry) Get(name string) Provider {
	if r == nil {
		return nil
	}
	for _, p := range r.providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}
