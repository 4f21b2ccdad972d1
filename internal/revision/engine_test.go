package revision

import (
	"context"
	"testing"

	"civicmap/internal/entities"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
)

type fakePlaceRepo struct {
	places  map[ids.ID]entities.Place
	reviews map[ids.ID]map[ids.Revision][]entities.PlaceRevisionReview
}

func newFakePlaceRepo() *fakePlaceRepo {
	return &fakePlaceRepo{
		places:  map[ids.ID]entities.Place{},
		reviews: map[ids.ID]map[ids.Revision][]entities.PlaceRevisionReview{},
	}
}

func (f *fakePlaceRepo) GetPlace(ctx context.Context, id ids.ID) (entities.Place, error) {
	p, ok := f.places[id]
	if !ok {
		return entities.Place{}, ofdberrors.NewNotFound()
	}
	return p, nil
}

func (f *fakePlaceRepo) CreateOrUpdatePlace(ctx context.Context, place entities.Place) error {
	f.places[place.ID] = place
	return nil
}

func (f *fakePlaceRepo) GetPlaceHistory(ctx context.Context, id ids.ID) ([]entities.PlaceRevision, map[ids.Revision][]entities.PlaceRevisionReview, error) {
	return nil, f.reviews[id], nil
}

func (f *fakePlaceRepo) AppendReview(ctx context.Context, review entities.PlaceRevisionReview) error {
	if f.reviews[review.PlaceID] == nil {
		f.reviews[review.PlaceID] = map[ids.Revision][]entities.PlaceRevisionReview{}
	}
	f.reviews[review.PlaceID][review.Rev] = append(f.reviews[review.PlaceID][review.Rev], review)
	return nil
}

func (f *fakePlaceRepo) SetCurrentStatus(ctx context.Context, id ids.ID, status entities.ReviewStatus) error {
	p := f.places[id]
	p.CurrentStatus = status
	f.places[id] = p
	return nil
}

func (f *fakePlaceRepo) AllPlaces(ctx context.Context) ([]entities.Place, error) {
	var out []entities.Place
	for _, p := range f.places {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePlaceRepo) AddPendingAuthorization(ctx context.Context, orgIDs []ids.ID, pending entities.PendingAuthorization) error {
	return nil
}

func TestCreateOrUpdateInsertsFirstRevision(t *testing.T) {
	repo := newFakePlaceRepo()
	e := New(repo)
	place := entities.Place{ID: "p1", Revision: ids.Initial, Created: entities.NowActivity(nil)}
	if err := e.CreateOrUpdate(context.Background(), place); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := e.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentStatus != entities.Created {
		t.Fatalf("expected Created status, got %v", got.CurrentStatus)
	}
}

func TestCreateOrUpdateRejectsStaleRevision(t *testing.T) {
	repo := newFakePlaceRepo()
	e := New(repo)
	ctx := context.Background()
	first := entities.Place{ID: "p1", Revision: ids.Initial, Created: entities.NowActivity(nil)}
	if err := e.CreateOrUpdate(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stale := entities.Place{ID: "p1", Revision: ids.Initial, Created: entities.NowActivity(nil)}
	err := e.CreateOrUpdate(ctx, stale)
	re, ok := ofdberrors.AsRepo(err)
	if !ok || re.Kind != ofdberrors.InvalidVersion {
		t.Fatalf("expected InvalidVersion repo error, got %v", err)
	}
}

func TestCreateOrUpdateAcceptsNextRevision(t *testing.T) {
	repo := newFakePlaceRepo()
	e := New(repo)
	ctx := context.Background()
	first := entities.Place{ID: "p1", Revision: ids.Initial, Created: entities.NowActivity(nil)}
	if err := e.CreateOrUpdate(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next := entities.Place{ID: "p1", Revision: ids.Initial.Next(), Created: entities.NowActivity(nil)}
	if err := e.CreateOrUpdate(ctx, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReviewSkipsUnchangedStatus(t *testing.T) {
	repo := newFakePlaceRepo()
	e := New(repo)
	ctx := context.Background()
	place := entities.Place{ID: "p1", Revision: ids.Initial, Created: entities.NowActivity(nil)}
	if err := e.CreateOrUpdate(ctx, place); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := e.Review(ctx, []ids.ID{"p1"}, entities.Created, nil, "", "no-op")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected 0 changed, got %d", changed)
	}

	changed, err = e.Review(ctx, []ids.ID{"p1"}, entities.Confirmed, nil, "", "approved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 changed, got %d", changed)
	}
}
