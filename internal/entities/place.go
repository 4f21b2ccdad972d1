package entities

import "civicmap/internal/ids"

// Place is the current-revision view of a physical entry on the map
// (spec.md §3). Revisions and review history live alongside it in
// PlaceRevision/PlaceRevisionReview; Place itself is the materialized head.
type Place struct {
	ID          ids.ID
	License     string
	Revision    ids.Revision
	Created     Activity
	Title       string
	Description string
	Location    Location
	Contact     *Contact
	Links       *Links
	Tags        []string // sorted, deduped, normalized

	CurrentStatus ReviewStatus
}

// PlaceRevision is one immutable snapshot in a place's edit history
// (spec.md §3 "PlaceRevision (history row)").
type PlaceRevision struct {
	PlaceID       ids.ID
	Rev           ids.Revision
	License       string
	Created       Activity
	Title         string
	Description   string
	Location      Location
	Contact       *Contact
	Links         *Links
	Tags          []string
	CurrentStatus ReviewStatus
}

// PlaceRevisionReview is one append-only moderation action against a
// revision (spec.md §3 "PlaceRevisionReview").
type PlaceRevisionReview struct {
	PlaceID   ids.ID
	Rev       ids.Revision // revision this review applies to
	ReviewRev uint64       // this review's own sequence number, starting at 1
	Status    ReviewStatus
	CreatedAt ids.Timestamp
	CreatedBy *ids.ID
	Context   string
	Comment   string
}

// PendingAuthorization marks that a revision's tag delta touched owned tags
// and awaits an organization's decision (spec.md GLOSSARY).
type PendingAuthorization struct {
	PlaceID              ids.ID
	CreatedAt            ids.Timestamp
	LastAuthorizedRev    ids.Revision
	LastAuthorizedStatus *ReviewStatus
}
