// Package repo declares the persistence contracts (C3) consumed by
// internal/usecases and internal/revision. Each interface is scoped to one
// entity family, composed by the concrete sqlite store and by in-memory test
// doubles; spec.md §9 "Polymorphism needs" asks for composition over a
// single god-interface.
package repo

import (
	"context"

	"civicmap/internal/entities"
	"civicmap/internal/ids"
)

// PlaceRepo is the revisioned place store (spec.md §4.1).
type PlaceRepo interface {
	// GetPlace returns the current revision of a place and its review
	// status, or ofdberrors.ErrNotFound.
	GetPlace(ctx context.Context, id ids.ID) (entities.Place, error)

	// CreateOrUpdatePlace inserts the first revision (place.Revision == 1)
	// or appends the next one, enforcing optimistic locking. Returns
	// ofdberrors.ErrInvalidVersion on a stale base revision.
	CreateOrUpdatePlace(ctx context.Context, place entities.Place) error

	// GetPlaceHistory returns every revision (newest first) with its review
	// chain (newest first).
	GetPlaceHistory(ctx context.Context, id ids.ID) ([]entities.PlaceRevision, map[ids.Revision][]entities.PlaceRevisionReview, error)

	// AppendReview appends one review row to a revision's chain.
	AppendReview(ctx context.Context, review entities.PlaceRevisionReview) error

	// SetCurrentStatus updates the current_status of a place's current
	// revision (used by the review use case).
	SetCurrentStatus(ctx context.Context, id ids.ID, status entities.ReviewStatus) error

	// AllPlaces returns every place's current revision and status, for
	// duplicate scanning and bulk review.
	AllPlaces(ctx context.Context) ([]entities.Place, error)

	// AddPendingAuthorization records that an edit awaits an org's decision.
	AddPendingAuthorization(ctx context.Context, orgIDs []ids.ID, pending entities.PendingAuthorization) error
}

// EventRepo stores Events (spec.md §4.7).
type EventRepo interface {
	GetEvent(ctx context.Context, id ids.ID) (entities.Event, error)
	CreateEvent(ctx context.Context, event entities.Event) error
	UpdateEvent(ctx context.Context, event entities.Event) error
	AllEvents(ctx context.Context) ([]entities.Event, error)
	// ArchiveEvents sets archived_at on every id whose archived_at is NULL,
	// returning the count actually changed.
	ArchiveEvents(ctx context.Context, ids []ids.ID, at ids.Timestamp) (int, error)
	// DeleteEvent removes the event row outright (only used by
	// delete_with_tag_filter, spec.md §4.7).
	DeleteEvent(ctx context.Context, id ids.ID) error
}

// UserRepo stores Accounts and their tokens (spec.md §4.8).
type UserRepo interface {
	GetUserByEmail(ctx context.Context, email string) (entities.Account, error)
	TryGetUserByEmail(ctx context.Context, email string) (*entities.Account, error)
	CreateUser(ctx context.Context, user entities.Account) error
	UpdateUser(ctx context.Context, user entities.Account) error
	DeleteUserByEmail(ctx context.Context, email string) error
}

// UserTokenRepo stores the single active token per user (spec.md §3
// "UserToken": insertion replaces any existing row).
type UserTokenRepo interface {
	ReplaceToken(ctx context.Context, token entities.UserToken) error
	ConsumeToken(ctx context.Context, email, nonce string) (entities.UserToken, error)
}

// RatingRepo stores Ratings attached to places (spec.md §3, §4.3).
type RatingRepo interface {
	CreateRating(ctx context.Context, rating entities.Rating) error
	LoadRatingsOfPlace(ctx context.Context, placeID ids.ID) ([]entities.Rating, error)
	LoadRatings(ctx context.Context, ids []ids.ID) ([]entities.Rating, error)
	ArchiveRatings(ctx context.Context, ids []ids.ID, at ids.Timestamp, by *ids.ID) error
	ArchiveRatingsOfPlace(ctx context.Context, placeID ids.ID, at ids.Timestamp, by *ids.ID) ([]entities.Rating, error)
}

// CommentRepo stores Comments attached to ratings (spec.md §3).
type CommentRepo interface {
	CreateComment(ctx context.Context, comment entities.Comment) error
	LoadCommentsOfRating(ctx context.Context, ratingID ids.ID) ([]entities.Comment, error)
	ArchiveCommentsOfRatings(ctx context.Context, ratingIDs []ids.ID, at ids.Timestamp, by *ids.ID) error
}

// TagRepo manages the shared tag namespace (spec.md §5 "Shared resources").
type TagRepo interface {
	// CreateTagIfNotExists is an INSERT OR IGNORE, racy-safe by design.
	CreateTagIfNotExists(ctx context.Context, tag entities.Tag) error
	AllTags(ctx context.Context) ([]entities.Tag, error)
}

// CategoryRepo stores the fixed Category set.
type CategoryRepo interface {
	AllCategories(ctx context.Context) ([]entities.Category, error)
	GetCategories(ctx context.Context, ids []string) ([]entities.Category, error)
}

// OrganizationRepo stores Organizations and resolves owned-tag ownership
// (spec.md §4.1, §5).
type OrganizationRepo interface {
	GetOrgByAPIToken(ctx context.Context, token string) (entities.Organization, error)
	AllTagsOwnedByOrgs(ctx context.Context) ([]string, error)
}

// BboxSubscriptionRepo stores per-user bbox subscriptions (spec.md §4.5).
type BboxSubscriptionRepo interface {
	CreateBboxSubscription(ctx context.Context, sub entities.BboxSubscription) error
	AllBboxSubscriptions(ctx context.Context) ([]entities.BboxSubscription, error)
	DeleteBboxSubscriptionsByEmail(ctx context.Context, email string) error
}
