package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"civicmap/internal/authsvc"
	"civicmap/internal/entities"
	"civicmap/internal/flows"
	"civicmap/internal/geocode"
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

func newTestServer() *Server {
	placeRepo := newMemPlaceRepo()
	places := flows.Places{
		Repos: usecases.Places{
			Place:    placeRepo,
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

	return New(Server{
		Places:    places,
		Ratings:   usecases.Ratings{Rating: memRatingRepo{}, Comment: nil, Place: placeRepo},
		PlaceRepo: placeRepo,
		TagRepo:   memTagRepo{},
		Category:  memCategoryRepo{},
		Org:       memOrgRepo{},
		Subs:      memSubRepo{},
		Index:     places.Index,
		Geocode:   geocode.Stub{},
		Session:   authsvc.NewSessionCodec([]byte("0123456789abcdef0123456789abcdef"), []byte("0123456789abcdef0123456789abcdef")),
		Log:       zap.NewNop(),
	})
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateAndGetPlace(t *testing.T) {
	srv := newTestServer()
	router := srv.Router()

	body, _ := json.Marshal(placeRequest{
		License: "CC0-1.0", Title: "Community Garden", Description: "grows things",
		Lat: 48.0, Lng: 8.0, Tags: []string{"community"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v0/entries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created placeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Title != "Community Garden" || created.Version != 1 {
		t.Fatalf("unexpected created place: %+v", created)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v0/entries/"+created.ID, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", getRec.Code, getRec.Body.String())
	}

	var fetched placeResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if fetched.ID != created.ID || fetched.Title != created.Title {
		t.Fatalf("expected round trip to match, got %+v", fetched)
	}
}

func TestGetUnknownPlaceReturnsNotFound(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v0/entries/"+ids.NewID().String(), nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

type fixtureCategoryRepo struct {
	categories []entities.Category
}

func (f fixtureCategoryRepo) AllCategories(ctx context.Context) ([]entities.Category, error) {
	return f.categories, nil
}
func (f fixtureCategoryRepo) GetCategories(ctx context.Context, categoryIDs []string) ([]entities.Category, error) {
	return nil, nil
}

func TestExportEntriesCSVResolvesCategoriesAndFiltersByBbox(t *testing.T) {
	srv := newTestServer()
	srv.Category = fixtureCategoryRepo{categories: []entities.Category{{ID: "cat-food", Name: "Food"}}}
	router := srv.Router()

	inside, _ := json.Marshal(placeRequest{
		License: "CC0-1.0", Title: "Inside", Lat: 1, Lng: 1, Tags: []string{"cat-food"},
	})
	outside, _ := json.Marshal(placeRequest{
		License: "CC0-1.0", Title: "Outside", Lat: 50, Lng: 50, Tags: []string{"cat-food"},
	})
	for _, body := range [][]byte{inside, outside} {
		req := httptest.NewRequest(http.MethodPost, "/api/v0/entries", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v0/export/entries.csv?bbox=0,0,2,2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	out := rec.Body.String()
	if !strings.Contains(out, "Inside") {
		t.Fatalf("expected in-bbox place in CSV, got:\n%s", out)
	}
	if strings.Contains(out, "Outside") {
		t.Fatalf("expected out-of-bbox place to be filtered out, got:\n%s", out)
	}
	if !strings.Contains(out, "Food") {
		t.Fatalf("expected category name resolved in CSV, got:\n%s", out)
	}
}
