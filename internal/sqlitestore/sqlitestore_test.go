package sqlitestore

import (
	"context"
	"testing"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir() + "/civicmap-test.sqlite")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPlaceRepoRoundTripAndOptimisticLocking(t *testing.T) {
	s := openTestStore(t)
	repo := NewPlaceRepo(s)
	ctx := context.Background()

	pos, _ := geo.NewPoint(48.2, 7.9)
	place := entities.Place{
		ID: ids.NewID(), License: "CC0-1.0", Revision: ids.Initial,
		Created: entities.NowActivity(nil), Title: "Co-op", Description: "desc",
		Location: entities.Location{Pos: pos}, Tags: []string{"a", "b"},
		CurrentStatus: entities.Created,
	}
	if err := repo.CreateOrUpdatePlace(ctx, place); err != nil {
		t.Fatalf("create place: %v", err)
	}

	got, err := repo.GetPlace(ctx, place.ID)
	if err != nil {
		t.Fatalf("get place: %v", err)
	}
	if got.Title != "Co-op" || len(got.Tags) != 2 {
		t.Fatalf("unexpected place: %+v", got)
	}

	place.Revision = ids.Initial.Next()
	place.Title = "Co-op (updated)"
	if err := repo.CreateOrUpdatePlace(ctx, place); err != nil {
		t.Fatalf("update place: %v", err)
	}
	got, err = repo.GetPlace(ctx, place.ID)
	if err != nil {
		t.Fatalf("get place after update: %v", err)
	}
	if got.Title != "Co-op (updated)" || got.Revision != 2 {
		t.Fatalf("unexpected place after update: %+v", got)
	}

	stale := place
	stale.Revision = 2 // already consumed
	err = repo.CreateOrUpdatePlace(ctx, stale)
	re, ok := ofdberrors.AsRepo(err)
	if !ok || re.Kind != ofdberrors.InvalidVersion {
		t.Fatalf("expected InvalidVersion, got %v", err)
	}

	history, reviews, err := repo.GetPlaceHistory(ctx, place.ID)
	if err != nil {
		t.Fatalf("get place history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(history))
	}
	_ = reviews
}

func TestPlaceRepoGetMissingReturnsNotFound(t *testing.T) {
	s := openTestStore(t)
	repo := NewPlaceRepo(s)
	_, err := repo.GetPlace(context.Background(), ids.NewID())
	re, ok := ofdberrors.AsRepo(err)
	if !ok || re.Kind != ofdberrors.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestEventRepoCreateUpdateArchive(t *testing.T) {
	s := openTestStore(t)
	repo := NewEventRepo(s)
	ctx := context.Background()

	event := entities.Event{ID: ids.NewID(), Title: "Town hall", Start: ids.Now(), Tags: []string{"meeting"}}
	if err := repo.CreateEvent(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	event.Title = "Town hall (rescheduled)"
	if err := repo.UpdateEvent(ctx, event); err != nil {
		t.Fatalf("update event: %v", err)
	}
	got, err := repo.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Title != "Town hall (rescheduled)" {
		t.Fatalf("unexpected event title: %q", got.Title)
	}

	changed, err := repo.ArchiveEvents(ctx, []ids.ID{event.ID}, ids.Now())
	if err != nil {
		t.Fatalf("archive events: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 archived, got %d", changed)
	}
	changed, err = repo.ArchiveEvents(ctx, []ids.ID{event.ID}, ids.Now())
	if err != nil {
		t.Fatalf("archive events again: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected idempotent archive, got %d changed", changed)
	}
}

func TestUserRepoAndTokenRoundTrip(t *testing.T) {
	s := openTestStore(t)
	users := NewUserRepo(s)
	tokens := NewUserTokenRepo(s)
	ctx := context.Background()

	acc := entities.Account{ID: ids.NewID(), Email: "a@example.com", Username: "a", PasswordHash: "hash", Role: entities.Guest}
	if err := users.CreateUser(ctx, acc); err != nil {
		t.Fatalf("create user: %v", err)
	}

	existing, err := users.TryGetUserByEmail(ctx, "a@example.com")
	if err != nil || existing == nil {
		t.Fatalf("try get user: %v, %v", existing, err)
	}

	token := entities.UserToken{UserID: acc.ID, Email: acc.Email, Nonce: "nonce1", ExpiresAt: ids.Now()}
	if err := tokens.ReplaceToken(ctx, token); err != nil {
		t.Fatalf("replace token: %v", err)
	}

	consumed, err := tokens.ConsumeToken(ctx, acc.Email, "nonce1")
	if err != nil {
		t.Fatalf("consume token: %v", err)
	}
	if consumed.UserID != acc.ID {
		t.Fatalf("unexpected consumed token: %+v", consumed)
	}

	if _, err := tokens.ConsumeToken(ctx, acc.Email, "nonce1"); err == nil {
		t.Fatalf("expected second consume to fail")
	}
}

func TestRatingAndCommentCascadeArchive(t *testing.T) {
	s := openTestStore(t)
	ratings := NewRatingRepo(s)
	comments := NewCommentRepo(s)
	ctx := context.Background()

	placeID := ids.NewID()
	rating := entities.Rating{ID: ids.NewID(), PlaceID: placeID, CreatedAt: ids.Now(), Value: 1, Context: entities.Fairness}
	if err := ratings.CreateRating(ctx, rating); err != nil {
		t.Fatalf("create rating: %v", err)
	}
	comment := entities.Comment{ID: ids.NewID(), RatingID: rating.ID, CreatedAt: ids.Now(), Text: "nice"}
	if err := comments.CreateComment(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	archived, err := ratings.ArchiveRatingsOfPlace(ctx, placeID, ids.Now(), nil)
	if err != nil {
		t.Fatalf("archive ratings of place: %v", err)
	}
	if len(archived) != 1 || archived[0].Live() {
		t.Fatalf("expected rating archived, got %+v", archived)
	}

	if err := comments.ArchiveCommentsOfRatings(ctx, []ids.ID{rating.ID}, ids.Now(), nil); err != nil {
		t.Fatalf("archive comments: %v", err)
	}
	loaded, err := comments.LoadCommentsOfRating(ctx, rating.ID)
	if err != nil {
		t.Fatalf("load comments: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Live() {
		t.Fatalf("expected comment archived, got %+v", loaded)
	}
}

func TestOrganizationRepoOwnedTags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO organizations (id, name, api_token, owned_tags) VALUES (?, ?, ?, ?)`,
		"org1", "Energy Co-op", "secrettoken", "solar,wind"); err != nil {
		t.Fatalf("seed organization: %v", err)
	}

	orgs := NewOrganizationRepo(s)
	org, err := orgs.GetOrgByAPIToken(ctx, "secrettoken")
	if err != nil {
		t.Fatalf("get org by api token: %v", err)
	}
	if !org.Owns("solar") || org.Owns("coal") {
		t.Fatalf("unexpected owned tags: %v", org.OwnedTags)
	}

	owned, err := orgs.AllTagsOwnedByOrgs(ctx)
	if err != nil {
		t.Fatalf("all tags owned by orgs: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("expected 2 owned tags, got %v", owned)
	}
}

func TestBboxSubscriptionRepoCreateListDelete(t *testing.T) {
	s := openTestStore(t)
	repo := NewBboxSubscriptionRepo(s)
	ctx := context.Background()

	sub := entities.BboxSubscription{
		ID: ids.NewID(), UserEmail: "sub@example.com",
		Bbox: geo.Bbox{SouthWest: geo.Point{Lat: 48.0, Lng: 7.0}, NorthEast: geo.Point{Lat: 49.0, Lng: 8.0}},
	}
	if err := repo.CreateBboxSubscription(ctx, sub); err != nil {
		t.Fatalf("create bbox subscription: %v", err)
	}

	all, err := repo.AllBboxSubscriptions(ctx)
	if err != nil {
		t.Fatalf("all bbox subscriptions: %v", err)
	}
	if len(all) != 1 || all[0].UserEmail != "sub@example.com" {
		t.Fatalf("unexpected subscriptions: %v", all)
	}

	if err := repo.DeleteBboxSubscriptionsByEmail(ctx, "sub@example.com"); err != nil {
		t.Fatalf("delete bbox subscriptions: %v", err)
	}
	all, err = repo.AllBboxSubscriptions(ctx)
	if err != nil {
		t.Fatalf("all bbox subscriptions after delete: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no subscriptions, got %v", all)
	}
}
