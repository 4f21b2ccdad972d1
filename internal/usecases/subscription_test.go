package usecases

import (
	"context"
	"testing"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/notify"
)

func TestSubscribeToBboxEnforcesSinglePolicy(t *testing.T) {
	subs := newFakeSubRepo()
	ctx := context.Background()
	sw1, _ := geo.NewPoint(40, 5)
	ne1, _ := geo.NewPoint(41, 6)
	if _, err := SubscribeToBbox(ctx, subs, "a@example.com", geo.Bbox{SouthWest: sw1, NorthEast: ne1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sw2, _ := geo.NewPoint(50, 5)
	ne2, _ := geo.NewPoint(51, 6)
	if _, err := SubscribeToBbox(ctx, subs, "a@example.com", geo.Bbox{SouthWest: sw2, NorthEast: ne2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, _ := subs.AllBboxSubscriptions(ctx)
	if len(all) != 1 {
		t.Fatalf("expected exactly one subscription, got %d", len(all))
	}
}

func TestNotifySubscribersOfPlaceDedupsAcrossOverlappingBboxes(t *testing.T) {
	subs := newFakeSubRepo()
	ctx := context.Background()

	sw1, _ := geo.NewPoint(47, 7)
	ne1, _ := geo.NewPoint(49, 9)
	sw2, _ := geo.NewPoint(48, 7.5)
	ne2, _ := geo.NewPoint(50, 9.5)
	_ = subs.CreateBboxSubscription(ctx, entities.BboxSubscription{ID: "s1", UserEmail: "a@example.com", Bbox: geo.Bbox{SouthWest: sw1, NorthEast: ne1}})
	_ = subs.CreateBboxSubscription(ctx, entities.BboxSubscription{ID: "s2", UserEmail: "b@example.com", Bbox: geo.Bbox{SouthWest: sw2, NorthEast: ne2}})

	var calls int
	var gotEmails []string
	gateway := recordingGateway{onPlace: func(n notify.PlaceNotification) {
		calls++
		gotEmails = n.Emails
	}}

	pos, _ := geo.NewPoint(48.2, 7.9)
	place := entities.Place{ID: "p1", Title: "Farm shop", Location: entities.Location{Pos: pos}}

	if err := NotifySubscribersOfPlace(ctx, subs, gateway, place, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected gateway invoked exactly once, got %d", calls)
	}
	if len(gotEmails) != 2 {
		t.Fatalf("expected deduplicated set of both emails, got %v", gotEmails)
	}
}

type recordingGateway struct {
	onPlace func(notify.PlaceNotification)
}

func (g recordingGateway) NotifyPlaceSubscribers(ctx context.Context, n notify.PlaceNotification) error {
	if g.onPlace != nil {
		g.onPlace(n)
	}
	return nil
}

func (g recordingGateway) NotifyEventSubscribers(ctx context.Context, n notify.EventNotification) error {
	return nil
}
