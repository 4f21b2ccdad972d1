// Package flows implements the thin orchestrators (C10, spec.md §2) that
// wire one use case to its repository, the search index, and the
// notification gateway, per the write path spelled out in spec.md §2:
// "HTTP layer → Flow (C10) → use case (C7) → tag authorization (C4) →
// revision engine (C5) ... → search index update (C8) → notification
// fan-out (C9)". Indexing and notification are fire-and-forget: their
// errors are logged, never returned to the HTTP layer (spec.md §5).
package flows

import (
	"context"

	"go.uber.org/zap"

	"civicmap/internal/entities"
	"civicmap/internal/ids"
	"civicmap/internal/notify"
	"civicmap/internal/repo"
	"civicmap/internal/searchindex"
	"civicmap/internal/usecases"
)

// Places wires the place write path end to end.
type Places struct {
	Repos   usecases.Places
	Ratings repo.RatingRepo
	Subs    repo.BboxSubscriptionRepo
	Index   searchindex.Index
	Gateway notify.Gateway
	Log     *zap.Logger
}

// Create runs CreatePlace, then indexes it and notifies bbox subscribers,
// swallowing and logging failures in the fire-and-forget tail.
func (f Places) Create(ctx context.Context, in usecases.NewPlaceInput, org *entities.Organization) (entities.Place, error) {
	place, err := usecases.CreatePlace(ctx, f.Repos, in, org)
	if err != nil {
		return entities.Place{}, err
	}
	f.indexAndNotify(ctx, place)
	return place, nil
}

// Update runs UpdatePlace, then re-indexes and re-notifies.
func (f Places) Update(ctx context.Context, in usecases.UpdatePlaceInput, org *entities.Organization) (entities.Place, error) {
	place, err := usecases.UpdatePlace(ctx, f.Repos, in, org)
	if err != nil {
		return entities.Place{}, err
	}
	f.indexAndNotify(ctx, place)
	return place, nil
}

// Review runs ReviewPlaces; status transitions alone don't re-trigger
// notification fan-out (only create/update do, per spec.md §4.5), but the
// search index must still reflect visibility, so entries for
// newly-invisible places are removed and the rest re-indexed.
func (f Places) Review(ctx context.Context, placeIDs []ids.ID, newStatus entities.ReviewStatus, by *ids.ID, reviewContext, comment string) (int, error) {
	changed, err := usecases.ReviewPlaces(ctx, f.Repos.Place, placeIDs, newStatus, by, reviewContext, comment)
	if err != nil {
		return changed, err
	}
	for _, id := range placeIDs {
		place, err := f.Repos.Place.GetPlace(ctx, id)
		if err != nil {
			f.Log.Warn("review flow: reload place for reindex failed", zap.String("place_id", id.String()), zap.Error(err))
			continue
		}
		if place.CurrentStatus.Visible() {
			f.indexOnly(ctx, place)
		} else if err := f.Index.Remove(ctx, id); err != nil {
			f.Log.Warn("review flow: remove from index failed", zap.String("place_id", id.String()), zap.Error(err))
		}
	}
	return changed, nil
}

func (f Places) indexAndNotify(ctx context.Context, place entities.Place) {
	f.indexOnly(ctx, place)

	if err := usecases.NotifySubscribersOfPlace(ctx, f.Subs, f.Gateway, place, place.Tags); err != nil {
		f.Log.Warn("place flow: notify subscribers failed", zap.String("place_id", place.ID.String()), zap.Error(err))
	}
}

func (f Places) indexOnly(ctx context.Context, place entities.Place) {
	avg, err := usecases.AverageRatingsForPlace(ctx, f.Ratings, place.ID)
	if err != nil {
		f.Log.Warn("place flow: load ratings for index failed", zap.String("place_id", place.ID.String()), zap.Error(err))
	}

	entry := searchindex.Entry{
		ID:          place.ID,
		Pos:         place.Location.Pos,
		Title:       place.Title,
		Description: place.Description,
		Tags:        place.Tags,
		Ratings:     avg,
	}
	if err := f.Index.AddOrUpdate(ctx, entry); err != nil {
		f.Log.Warn("place flow: index update failed", zap.String("place_id", place.ID.String()), zap.Error(err))
		return
	}
	if err := f.Index.Flush(ctx); err != nil {
		f.Log.Warn("place flow: index flush failed", zap.String("place_id", place.ID.String()), zap.Error(err))
	}
}

// Events wires the event write path.
type Events struct {
	Repos   usecases.Events
	Subs    repo.BboxSubscriptionRepo
	Gateway notify.Gateway
	Log     *zap.Logger
}

// Create runs CreateEvent then notifies bbox subscribers keyed by event
// location, per spec.md §4.5 "Event notifications follow the same
// pattern".
func (f Events) Create(ctx context.Context, in usecases.NewEventInput, org *entities.Organization) (entities.Event, error) {
	event, err := usecases.CreateEvent(ctx, f.Repos, in, org)
	if err != nil {
		return entities.Event{}, err
	}
	if err := usecases.NotifySubscribersOfEvent(ctx, f.Subs, f.Gateway, event); err != nil {
		f.Log.Warn("event flow: notify subscribers failed", zap.String("event_id", event.ID.String()), zap.Error(err))
	}
	return event, nil
}

// Update runs UpdateEvent then re-notifies.
func (f Events) Update(ctx context.Context, id ids.ID, in usecases.NewEventInput, org *entities.Organization) (entities.Event, error) {
	event, err := usecases.UpdateEvent(ctx, f.Repos, id, in, org)
	if err != nil {
		return entities.Event{}, err
	}
	if err := usecases.NotifySubscribersOfEvent(ctx, f.Subs, f.Gateway, event); err != nil {
		f.Log.Warn("event flow: notify subscribers failed", zap.String("event_id", event.ID.String()), zap.Error(err))
	}
	return event, nil
}
