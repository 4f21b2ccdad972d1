package entities

import (
	"sort"

	"civicmap/internal/geo"
	"civicmap/internal/ids"
)

// Tag is a free-standing label in the shared tag namespace (spec.md §3).
// It carries no data beyond its identifier; ownership is tracked on
// Organization, not here.
type Tag struct {
	ID string
}

// Category is a member of the small, fixed set of place/event categories
// ("initiative", "company", ...). Its id is merged into the tag set on
// write but stays distinguishable (spec.md §3).
type Category struct {
	ID   string
	Name string
}

// Organization owns a set of tags; edits that touch an owned tag require
// that org's authorization (spec.md §3, §4.1).
type Organization struct {
	ID        ids.ID
	Name      string
	APIToken  string
	OwnedTags []string // sorted
}

// Owns reports whether org owns tag.
func (o Organization) Owns(tag string) bool {
	i := sort.SearchStrings(o.OwnedTags, tag)
	return i < len(o.OwnedTags) && o.OwnedTags[i] == tag
}

// BboxSubscription is a user's standing request to be notified about new
// places/events inside a bounding box (spec.md §3).
type BboxSubscription struct {
	ID        ids.ID
	UserEmail string
	Bbox      geo.Bbox
}
