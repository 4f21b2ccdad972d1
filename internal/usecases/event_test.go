package usecases

import (
	"context"
	"testing"

	"civicmap/internal/entities"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
)

func eventsFixture() Events {
	return Events{
		Event:    newFakeEventRepo(),
		Tag:      newFakeTagRepo(),
		Org:      &fakeOrgRepo{},
		Category: fakeCategoryRepo{},
		User:     newFakeUserRepo(),
	}
}

func TestCreateEventRejectsIncoherentRegistration(t *testing.T) {
	repos := eventsFixture()
	email := entities.RegistrationEmail
	_, err := CreateEvent(context.Background(), repos, NewEventInput{
		Title: "Meetup", Registration: &email,
	}, nil)
	pe, ok := ofdberrors.AsParameter(err)
	if !ok || pe.Kind != ofdberrors.Email {
		t.Fatalf("expected Email parameter error, got %v", err)
	}
}

func TestCreateEventAcceptsCoherentRegistration(t *testing.T) {
	repos := eventsFixture()
	email := entities.RegistrationEmail
	event, err := CreateEvent(context.Background(), repos, NewEventInput{
		Title:        "Meetup",
		Contact:      &entities.Contact{Email: "host@example.com"},
		Registration: &email,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Registration == nil || *event.Registration != entities.RegistrationEmail {
		t.Fatalf("expected registration email, got %v", event.Registration)
	}
}

func TestCreateEventResolvesCreatedByToAccountID(t *testing.T) {
	repos := eventsFixture()
	account := entities.Account{ID: ids.NewID(), Email: "host@example.com"}
	if err := repos.User.CreateUser(context.Background(), account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	email := "host@example.com"
	event, err := CreateEvent(context.Background(), repos, NewEventInput{
		Title: "Meetup", CreatedBy: &email,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.CreatedBy == nil || *event.CreatedBy != account.ID {
		t.Fatalf("expected CreatedBy to resolve to %v, got %v", account.ID, event.CreatedBy)
	}
}

func TestCreateEventLeavesCreatedByNilForUnknownEmail(t *testing.T) {
	repos := eventsFixture()
	email := "ghost@example.com"
	event, err := CreateEvent(context.Background(), repos, NewEventInput{
		Title: "Meetup", CreatedBy: &email,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.CreatedBy != nil {
		t.Fatalf("expected nil CreatedBy for unregistered email, got %v", event.CreatedBy)
	}
}

func TestArchiveEventsIsIdempotent(t *testing.T) {
	repos := eventsFixture()
	ctx := context.Background()
	event, err := CreateEvent(ctx, repos, NewEventInput{Title: "Fest"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	at := ids.Now()
	changed, err := ArchiveEvents(ctx, repos.Event, []ids.ID{event.ID}, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 changed, got %d", changed)
	}

	changed, err = ArchiveEvents(ctx, repos.Event, []ids.ID{event.ID}, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected idempotent archive to change 0, got %d", changed)
	}
}

func TestDeleteEventWithTagFilter(t *testing.T) {
	repos := eventsFixture()
	ctx := context.Background()
	event, err := CreateEvent(ctx, repos, NewEventInput{Title: "Fair", Tags: []string{"bio", "local"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := DeleteEventWithTagFilter(ctx, repos.Event, event.ID, []string{"other"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no match for unrelated tag filter")
	}

	ok, err = DeleteEventWithTagFilter(ctx, repos.Event, event.ID, []string{"bio"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected deletion to match owned tag")
	}
}
