// Package revision implements the revisioned place store's write path (C5,
// spec.md §4.1): optimistic-locking create/update, the review state
// machine, and the append-only review audit log.
package revision

import (
	"context"

	"civicmap/internal/entities"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
	"civicmap/internal/repo"
)

// Engine drives create_or_update, review, get, and get_history against a
// repo.PlaceRepo.
type Engine struct {
	places repo.PlaceRepo
}

// New builds an Engine over the given place repository.
func New(places repo.PlaceRepo) *Engine {
	return &Engine{places: places}
}

// CreateOrUpdate implements spec.md §4.1 create_or_update: if place.Revision
// is ids.Initial (1) a new place row is inserted, and the write fails with
// InvalidVersion if a place with that ID already exists; otherwise the
// existing place row's current_rev+1 must equal place.Revision, or the write
// fails with InvalidVersion. On success a seed review row is appended.
func (e *Engine) CreateOrUpdate(ctx context.Context, place entities.Place) error {
	if place.Revision == ids.Initial {
		if _, err := e.places.GetPlace(ctx, place.ID); err == nil {
			return ofdberrors.NewInvalidVersion()
		} else if re, ok := ofdberrors.AsRepo(err); !ok || re.Kind != ofdberrors.NotFound {
			return err
		}
	} else {
		existing, err := e.places.GetPlace(ctx, place.ID)
		if err != nil {
			return err
		}
		if existing.Revision.Next() != place.Revision {
			return ofdberrors.NewInvalidVersion()
		}
	}

	place.CurrentStatus = entities.Created
	if err := e.places.CreateOrUpdatePlace(ctx, place); err != nil {
		return err
	}

	review := entities.PlaceRevisionReview{
		PlaceID:   place.ID,
		Rev:       place.Revision,
		ReviewRev: 1,
		Status:    entities.Created,
		CreatedAt: place.Created.At,
		Comment:   "created",
	}
	return e.places.AppendReview(ctx, review)
}

// Review implements spec.md §4.1 review: for each place whose current
// revision's status differs from newStatus, the status is updated and a
// review row appended with rev = max(rev)+1. Returns the count changed.
func (e *Engine) Review(ctx context.Context, placeIDs []ids.ID, newStatus entities.ReviewStatus, createdBy *ids.ID, reviewContext, comment string) (int, error) {
	changed := 0
	for _, id := range placeIDs {
		place, err := e.places.GetPlace(ctx, id)
		if err != nil {
			return changed, err
		}
		if place.CurrentStatus == newStatus {
			continue
		}
		if err := e.places.SetCurrentStatus(ctx, id, newStatus); err != nil {
			return changed, err
		}

		_, reviewChain, err := e.places.GetPlaceHistory(ctx, id)
		if err != nil {
			return changed, err
		}
		nextReviewRev := uint64(1)
		if chain := reviewChain[place.Revision]; len(chain) > 0 {
			nextReviewRev = maxReviewRev(chain) + 1
		}

		review := entities.PlaceRevisionReview{
			PlaceID:   id,
			Rev:       place.Revision,
			ReviewRev: nextReviewRev,
			Status:    newStatus,
			CreatedAt: ids.Now(),
			CreatedBy: createdBy,
			Context:   reviewContext,
			Comment:   comment,
		}
		if err := e.places.AppendReview(ctx, review); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func maxReviewRev(chain []entities.PlaceRevisionReview) uint64 {
	var max uint64
	for _, r := range chain {
		if r.ReviewRev > max {
			max = r.ReviewRev
		}
	}
	return max
}

// Get returns the current revision of a place joined with its review
// status (spec.md §4.1 get).
func (e *Engine) Get(ctx context.Context, id ids.ID) (entities.Place, error) {
	return e.places.GetPlace(ctx, id)
}

// History returns every revision (newest first) with its review chain
// (newest first) (spec.md §4.1 get_history).
func (e *Engine) History(ctx context.Context, id ids.ID) ([]entities.PlaceRevision, map[ids.Revision][]entities.PlaceRevisionReview, error) {
	return e.places.GetPlaceHistory(ctx, id)
}
