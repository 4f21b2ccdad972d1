package flows

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/notify"
	"civicmap/internal/ofdberrors"
	"civicmap/internal/searchindex"
	"civicmap/internal/usecases"
)

type memPlaceRepo struct {
	places map[ids.ID]entities.Place
}

func newMemPlaceRepo() *memPlaceRepo { return &memPlaceRepo{places: map[ids.ID]entities.Place{}} }

func (r *memPlaceRepo) GetPlace(ctx context.Context, id ids.ID) (entities.Place, error) {
	p, ok := r.places[id]
	if !ok {
		return entities.Place{}, ofdberrors.NewNotFound()
	}
	return p, nil
}
func (r *memPlaceRepo) CreateOrUpdatePlace(ctx context.Context, place entities.Place) error {
	r.places[place.ID] = place
	return nil
}
func (r *memPlaceRepo) GetPlaceHistory(ctx context.Context, id ids.ID) ([]entities.PlaceRevision, map[ids.Revision][]entities.PlaceRevisionReview, error) {
	return nil, nil, nil
}
func (r *memPlaceRepo) AppendReview(ctx context.Context, review entities.PlaceRevisionReview) error {
	return nil
}
func (r *memPlaceRepo) SetCurrentStatus(ctx context.Context, id ids.ID, status entities.ReviewStatus) error {
	p := r.places[id]
	p.CurrentStatus = status
	r.places[id] = p
	return nil
}
func (r *memPlaceRepo) AllPlaces(ctx context.Context) ([]entities.Place, error) {
	var out []entities.Place
	for _, p := range r.places {
		out = append(out, p)
	}
	return out, nil
}
func (r *memPlaceRepo) AddPendingAuthorization(ctx context.Context, orgIDs []ids.ID, pending entities.PendingAuthorization) error {
	return nil
}

type memTagRepo struct{}

func (memTagRepo) CreateTagIfNotExists(ctx context.Context, tag entities.Tag) error { return nil }
func (memTagRepo) AllTags(ctx context.Context) ([]entities.Tag, error)              { return nil, nil }

type memCategoryRepo struct{}

func (memCategoryRepo) AllCategories(ctx context.Context) ([]entities.Category, error) {
	return nil, nil
}
func (memCategoryRepo) GetCategories(ctx context.Context, categoryIDs []string) ([]entities.Category, error) {
	return nil, nil
}

type memOrgRepo struct{}

func (memOrgRepo) GetOrgByAPIToken(ctx context.Context, token string) (entities.Organization, error) {
	return entities.Organization{}, ofdberrors.NewNotFound()
}
func (memOrgRepo) AllTagsOwnedByOrgs(ctx context.Context) ([]string, error) { return nil, nil }

type memRatingRepo struct{}

func (memRatingRepo) CreateRating(ctx context.Context, rating entities.Rating) error { return nil }
func (memRatingRepo) LoadRatingsOfPlace(ctx context.Context, placeID ids.ID) ([]entities.Rating, error) {
	return nil, nil
}
func (memRatingRepo) LoadRatings(ctx context.Context, ratingIDs []ids.ID) ([]entities.Rating, error) {
	return nil, nil
}
func (memRatingRepo) ArchiveRatings(ctx context.Context, ratingIDs []ids.ID, at ids.Timestamp, by *ids.ID) error {
	return nil
}
func (memRatingRepo) ArchiveRatingsOfPlace(ctx context.Context, placeID ids.ID, at ids.Timestamp, by *ids.ID) ([]entities.Rating, error) {
	return nil, nil
}

type memSubRepo struct{}

func (memSubRepo) CreateBboxSubscription(ctx context.Context, sub entities.BboxSubscription) error {
	return nil
}
func (memSubRepo) AllBboxSubscriptions(ctx context.Context) ([]entities.BboxSubscription, error) {
	return nil, nil
}
func (memSubRepo) DeleteBboxSubscriptionsByEmail(ctx context.Context, email string) error {
	return nil
}

func TestPlacesFlowCreateIndexesPlace(t *testing.T) {
	flow := Places{
		Repos: usecases.Places{
			Place:    newMemPlaceRepo(),
			Tag:      memTagRepo{},
			Org:      memOrgRepo{},
			Category: memCategoryRepo{},
		},
		Ratings: memRatingRepo{},
		Subs:    memSubRepo{},
		Index:   searchindex.NewMemory(),
		Gateway: notify.NoopGateway{},
		Log:     zap.NewNop(),
	}

	pos, _ := geo.NewPoint(48.0, 8.0)
	place, err := flow.Create(context.Background(), usecases.NewPlaceInput{Title: "Shop", Pos: pos}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := flow.Index.Query(context.Background(), searchindex.Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != place.ID {
		t.Fatalf("expected place indexed, got %v", results)
	}
}
