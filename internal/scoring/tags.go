package scoring

// Match tags shared by every provider adapter. The vocabulary is open:
// adapters may emit tags beyond this list and custom profile names join
// the set at scoring time, but these are the ones the default weight
// tables know about.
const (
	TagTitle            = "title"
	TagSeries           = "series"
	TagYear             = "year"
	TagSeason           = "season"
	TagEpisode          = "episode"
	TagSource           = "source"
	TagResolution       = "resolution"
	TagVideoCodec       = "video_codec"
	TagAudioCodec       = "audio_codec"
	TagReleaseGroup     = "release_group"
	TagHash             = "hash"
	TagStreamingService = "streaming_service"
	TagEdition          = "edition"
	TagHearingImpaired  = "hearing_impaired"
)

// MatchSet is the set of match tags one candidate earned against one video.
type MatchSet map[string]struct{}

// NewMatchSet builds a MatchSet from tag names.
func NewMatchSet(tags ...string) MatchSet {
	set := make(MatchSet, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// Add inserts a tag into the set.
func (m MatchSet) Add(tag string) {
	m[tag] = struct{}{}
}

// Has reports whether the set contains tag.
func (m MatchSet) Has(tag string) bool {
	_, ok := m[tag]
	return ok
}

// SeriesDefaults returns the default weight table for episodes.
func SeriesDefaults() map[string]int {
	return map[string]int{
		TagHash:             359,
		TagSeries:           180,
		TagYear:             90,
		TagSeason:           30,
		TagEpisode:          30,
		TagReleaseGroup:     15,
		TagSource:           7,
		TagAudioCodec:       3,
		TagResolution:       2,
		TagVideoCodec:       2,
		TagHearingImpaired:  1,
		TagStreamingService: 0,
		TagEdition:          0,
	}
}

// MovieDefaults returns the default weight table for movies.
func MovieDefaults() map[string]int {
	return map[string]int{
		TagHash:             119,
		TagTitle:            60,
		TagYear:             30,
		TagReleaseGroup:     13,
		TagSource:           7,
		TagAudioCodec:       3,
		TagResolution:       2,
		TagVideoCodec:       2,
		TagHearingImpaired:  1,
		TagStreamingService: 0,
		TagEdition:          0,
	}
}
