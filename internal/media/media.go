package media

// ItemID identifies an item in the media server library. It is opaque to
// curator; Emby happens to use decimal strings.
type ItemID string

// Movie is a snapshot of a library movie taken at the start of a sync pass.
type Movie struct {
	ID              ItemID
	Title           string
	Year            int
	CommunityRating *float64
	Genres          []string
	Tags            []string
	TMDBID          string
	IMDBID          string
	Studios         []string
}

// Collection is a snapshot of a media server collection (an Emby BoxSet).
// Overview carries the raw description text, including any embedded
// criteria blob.
type Collection struct {
	ID       ItemID
	Name     string
	Overview string
	ItemIDs  []ItemID
}

// Enrichment holds third-party metadata for a movie. Numeric fields are
// pointers because TMDB regularly omits them; an unknown budget must stay
// distinguishable from a zero budget.
type Enrichment struct {
	TMDBID              int64
	Budget              *int64
	VoteAverage         *float64
	Keywords            []string
	ProductionCompanies []string
}

// IDSet builds a membership set from a slice of item IDs.
func IDSet(ids []ItemID) map[ItemID]struct{} {
	set := make(map[ItemID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
