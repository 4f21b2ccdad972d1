package entities

import "civicmap/internal/ids"

// RatingContext is one of the six fixed dimensions a Rating scores a place
// on (spec.md §3).
type RatingContext int

const (
	Diversity RatingContext = iota
	Renewable
	Fairness
	Humanity
	Transparency
	Solidarity
)

// AllRatingContexts lists every context in a stable order, used when
// computing the six per-context averages (spec.md §4.3).
var AllRatingContexts = []RatingContext{
	Diversity, Renewable, Fairness, Humanity, Transparency, Solidarity,
}

func (c RatingContext) String() string {
	switch c {
	case Diversity:
		return "diversity"
	case Renewable:
		return "renewable"
	case Fairness:
		return "fairness"
	case Humanity:
		return "humanity"
	case Transparency:
		return "transparency"
	case Solidarity:
		return "solidarity"
	default:
		return "unknown"
	}
}

// Rating is a single user-submitted score against a place in one context
// (spec.md §3).
type Rating struct {
	ID         ids.ID
	PlaceID    ids.ID
	CreatedAt  ids.Timestamp
	ArchivedAt *ids.Timestamp
	ArchivedBy *ids.ID
	Title      string
	Value      float64 // in [-1, 2]
	Context    RatingContext
	Source     string
}

// Live reports whether the rating has not been archived (spec.md §3).
func (r Rating) Live() bool {
	return r.ArchivedAt == nil
}

// Comment is free-text feedback attached to a Rating (spec.md §3).
type Comment struct {
	ID         ids.ID
	RatingID   ids.ID
	CreatedAt  ids.Timestamp
	ArchivedAt *ids.Timestamp
	ArchivedBy *ids.ID
	Text       string
}

// Live reports whether the comment has not been archived.
func (c Comment) Live() bool {
	return c.ArchivedAt == nil
}

// AverageRatings is the per-context + scalar rating summary spec.md §4.3
// requires every place read-path to expose.
type AverageRatings struct {
	ByContext map[RatingContext]float64
	Total     float64
}

// ClampRating clamps v into the legal [-1, 2] rating range.
func ClampRating(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 2 {
		return 2
	}
	return v
}

// AverageFor computes the six per-context averages and the scalar total from
// a slice of ratings, per spec.md §4.3:
//
//	avg_C = clamp(sum(value of live ratings with ctx=C) / max(1, count), -1.0, 2.0)
//	total = unweighted mean over the six contexts
func AverageFor(ratings []Rating) AverageRatings {
	sums := make(map[RatingContext]float64, len(AllRatingContexts))
	counts := make(map[RatingContext]int, len(AllRatingContexts))
	for _, r := range ratings {
		if !r.Live() {
			continue
		}
		sums[r.Context] += r.Value
		counts[r.Context]++
	}

	byContext := make(map[RatingContext]float64, len(AllRatingContexts))
	var total float64
	for _, ctx := range AllRatingContexts {
		count := counts[ctx]
		denom := count
		if denom < 1 {
			denom = 1
		}
		avg := ClampRating(sums[ctx] / float64(denom))
		byContext[ctx] = avg
		total += avg
	}
	total /= float64(len(AllRatingContexts))

	return AverageRatings{ByContext: byContext, Total: total}
}
