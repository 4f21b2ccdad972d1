package usecases

import (
	"context"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/notify"
	"civicmap/internal/ofdberrors"
	"civicmap/internal/repo"
)

// SubscribeToBbox implements spec.md §4.5 subscribe: validates the box,
// then enforces the single-subscription policy decided in SPEC_FULL.md §E
// by removing any prior subscription for the email before inserting the
// new one (the repository itself permits many rows per email).
func SubscribeToBbox(ctx context.Context, subs repo.BboxSubscriptionRepo, userEmail string, bbox geo.Bbox) (entities.BboxSubscription, error) {
	if !bbox.Valid() {
		return entities.BboxSubscription{}, ofdberrors.NewParameter(ofdberrors.Bbox)
	}

	if err := subs.DeleteBboxSubscriptionsByEmail(ctx, userEmail); err != nil {
		return entities.BboxSubscription{}, err
	}

	sub := entities.BboxSubscription{
		ID:        ids.NewID(),
		UserEmail: userEmail,
		Bbox:      bbox,
	}
	if err := subs.CreateBboxSubscription(ctx, sub); err != nil {
		return entities.BboxSubscription{}, err
	}
	return sub, nil
}

// UnsubscribeAll implements spec.md §4.5 unsubscribe_all.
func UnsubscribeAll(ctx context.Context, subs repo.BboxSubscriptionRepo, userEmail string) error {
	return subs.DeleteBboxSubscriptionsByEmail(ctx, userEmail)
}

// ListBboxSubscriptions returns every subscription on file, for the
// GET /bbox-subscriptions route.
func ListBboxSubscriptions(ctx context.Context, subs repo.BboxSubscriptionRepo) ([]entities.BboxSubscription, error) {
	return subs.AllBboxSubscriptions(ctx)
}

// BboxSubscriptionsByCoordinate is the supplemented use case from
// SPEC_FULL.md §D.3 (original_source's bbox_subscriptions_by_coordinate):
// every subscription whose bbox contains the given point.
func BboxSubscriptionsByCoordinate(ctx context.Context, subs repo.BboxSubscriptionRepo, pos geo.Point) ([]entities.BboxSubscription, error) {
	all, err := subs.AllBboxSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	var out []entities.BboxSubscription
	for _, s := range all {
		if s.Bbox.Contains(pos) {
			out = append(out, s)
		}
	}
	return out, nil
}

// EmailAddressesByCoordinate is the supplemented use case from
// SPEC_FULL.md §D.3 (original_source's email_addresses_by_coordinate): the
// deduplicated email set for every subscription covering a point. This is
// what flows hand to the notification gateway on place/event writes.
func EmailAddressesByCoordinate(ctx context.Context, subs repo.BboxSubscriptionRepo, pos geo.Point) ([]string, error) {
	matching, err := BboxSubscriptionsByCoordinate(ctx, subs, pos)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []string
	for _, s := range matching {
		if _, ok := seen[s.UserEmail]; ok {
			continue
		}
		seen[s.UserEmail] = struct{}{}
		out = append(out, s.UserEmail)
	}
	return out, nil
}

// NotifySubscribersOfPlace builds and sends the fan-out notification for a
// place create/update, per spec.md §4.5 and boundary scenario 5. The call
// is fire-and-forget: gateway implementations log and swallow failures.
func NotifySubscribersOfPlace(ctx context.Context, subs repo.BboxSubscriptionRepo, gateway notify.Gateway, place entities.Place, categories []string) error {
	emails, err := EmailAddressesByCoordinate(ctx, subs, place.Location.Pos)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return nil
	}
	return gateway.NotifyPlaceSubscribers(ctx, notify.PlaceNotification{
		PlaceID:    place.ID.String(),
		Title:      place.Title,
		Categories: categories,
		Emails:     emails,
	})
}

// NotifySubscribersOfEvent mirrors NotifySubscribersOfPlace for events
// (spec.md §4.5: "Event notifications follow the same pattern").
func NotifySubscribersOfEvent(ctx context.Context, subs repo.BboxSubscriptionRepo, gateway notify.Gateway, event entities.Event) error {
	if event.Location == nil {
		return nil
	}
	emails, err := EmailAddressesByCoordinate(ctx, subs, event.Location.Pos)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return nil
	}
	return gateway.NotifyEventSubscribers(ctx, notify.EventNotification{
		EventID: event.ID.String(),
		Title:   event.Title,
		Emails:  emails,
	})
}
