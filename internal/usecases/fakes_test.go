package usecases

import (
	"context"

	"civicmap/internal/entities"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
)

type fakePlaceRepo struct {
	places  map[ids.ID]entities.Place
	reviews map[ids.ID]map[ids.Revision][]entities.PlaceRevisionReview
	pending []entities.PendingAuthorization
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
	f.pending = append(f.pending, pending)
	return nil
}

type fakeTagRepo struct {
	tags map[string]entities.Tag
}

func newFakeTagRepo() *fakeTagRepo { return &fakeTagRepo{tags: map[string]entities.Tag{}} }

func (f *fakeTagRepo) CreateTagIfNotExists(ctx context.Context, tag entities.Tag) error {
	f.tags[tag.ID] = tag
	return nil
}

func (f *fakeTagRepo) AllTags(ctx context.Context) ([]entities.Tag, error) {
	var out []entities.Tag
	for _, t := range f.tags {
		out = append(out, t)
	}
	return out, nil
}

type fakeCategoryRepo struct{}

func (fakeCategoryRepo) AllCategories(ctx context.Context) ([]entities.Category, error) {
	return nil, nil
}

func (fakeCategoryRepo) GetCategories(ctx context.Context, categoryIDs []string) ([]entities.Category, error) {
	var out []entities.Category
	for _, id := range categoryIDs {
		out = append(out, entities.Category{ID: id})
	}
	return out, nil
}

type fakeOrgRepo struct {
	owned []string
}

func (f *fakeOrgRepo) GetOrgByAPIToken(ctx context.Context, token string) (entities.Organization, error) {
	return entities.Organization{}, ofdberrors.NewNotFound()
}

func (f *fakeOrgRepo) AllTagsOwnedByOrgs(ctx context.Context) ([]string, error) {
	return f.owned, nil
}

type fakeRatingRepo struct {
	ratings map[ids.ID]entities.Rating
}

func newFakeRatingRepo() *fakeRatingRepo { return &fakeRatingRepo{ratings: map[ids.ID]entities.Rating{}} }

func (f *fakeRatingRepo) CreateRating(ctx context.Context, rating entities.Rating) error {
	f.ratings[rating.ID] = rating
	return nil
}

func (f *fakeRatingRepo) LoadRatingsOfPlace(ctx context.Context, placeID ids.ID) ([]entities.Rating, error) {
	var out []entities.Rating
	for _, r := range f.ratings {
		if r.PlaceID == placeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) LoadRatings(ctx context.Context, ratingIDs []ids.ID) ([]entities.Rating, error) {
	var out []entities.Rating
	for _, id := range ratingIDs {
		if r, ok := f.ratings[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) ArchiveRatings(ctx context.Context, ratingIDs []ids.ID, at ids.Timestamp, by *ids.ID) error {
	for _, id := range ratingIDs {
		r := f.ratings[id]
		r.ArchivedAt = &at
		r.ArchivedBy = by
		f.ratings[id] = r
	}
	return nil
}

func (f *fakeRatingRepo) ArchiveRatingsOfPlace(ctx context.Context, placeID ids.ID, at ids.Timestamp, by *ids.ID) ([]entities.Rating, error) {
	var archived []entities.Rating
	for id, r := range f.ratings {
		if r.PlaceID != placeID || !r.Live() {
			continue
		}
		r.ArchivedAt = &at
		r.ArchivedBy = by
		f.ratings[id] = r
		archived = append(archived, r)
	}
	return archived, nil
}

type fakeCommentRepo struct {
	comments         map[ids.ID]entities.Comment
	archivedRatingIDs []ids.ID
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[ids.ID]entities.Comment{}}
}

func (f *fakeCommentRepo) CreateComment(ctx context.Context, comment entities.Comment) error {
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeCommentRepo) LoadCommentsOfRating(ctx context.Context, ratingID ids.ID) ([]entities.Comment, error) {
	var out []entities.Comment
	for _, c := range f.comments {
		if c.RatingID == ratingID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) ArchiveCommentsOfRatings(ctx context.Context, ratingIDs []ids.ID, at ids.Timestamp, by *ids.ID) error {
	f.archivedRatingIDs = append(f.archivedRatingIDs, ratingIDs...)
	for id, c := range f.comments {
		for _, rid := range ratingIDs {
			if c.RatingID == rid {
				c.ArchivedAt = &at
				c.ArchivedBy = by
				f.comments[id] = c
			}
		}
	}
	return nil
}

type fakeEventRepo struct {
	events map[ids.ID]entities.Event
}

func newFakeEventRepo() *fakeEventRepo { return &fakeEventRepo{events: map[ids.ID]entities.Event{}} }

func (f *fakeEventRepo) GetEvent(ctx context.Context, id ids.ID) (entities.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return entities.Event{}, ofdberrors.NewNotFound()
	}
	return e, nil
}

func (f *fakeEventRepo) CreateEvent(ctx context.Context, event entities.Event) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) UpdateEvent(ctx context.Context, event entities.Event) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) AllEvents(ctx context.Context) ([]entities.Event, error) {
	var out []entities.Event
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) ArchiveEvents(ctx context.Context, eventIDs []ids.ID, at ids.Timestamp) (int, error) {
	changed := 0
	for _, id := range eventIDs {
		e, ok := f.events[id]
		if !ok || e.ArchivedAt != nil {
			continue
		}
		e.ArchivedAt = &at
		f.events[id] = e
		changed++
	}
	return changed, nil
}

func (f *fakeEventRepo) DeleteEvent(ctx context.Context, id ids.ID) error {
	delete(f.events, id)
	return nil
}

type fakeSubRepo struct {
	subs map[ids.ID]entities.BboxSubscription
}

func newFakeSubRepo() *fakeSubRepo { return &fakeSubRepo{subs: map[ids.ID]entities.BboxSubscription{}} }

func (f *fakeSubRepo) CreateBboxSubscription(ctx context.Context, sub entities.BboxSubscription) error {
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeSubRepo) AllBboxSubscriptions(ctx context.Context) ([]entities.BboxSubscription, error) {
	var out []entities.BboxSubscription
	for _, s := range f.subs {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubRepo) DeleteBboxSubscriptionsByEmail(ctx context.Context, email string) error {
	for id, s := range f.subs {
		if s.UserEmail == email {
			delete(f.subs, id)
		}
	}
	return nil
}

type fakeUserRepo struct {
	byEmail map[string]entities.Account
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{byEmail: map[string]entities.Account{}} }

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (entities.Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return entities.Account{}, ofdberrors.NewNotFound()
	}
	return a, nil
}

func (f *fakeUserRepo) TryGetUserByEmail(ctx context.Context, email string) (*entities.Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user entities.Account) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user entities.Account) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) DeleteUserByEmail(ctx context.Context, email string) error {
	delete(f.byEmail, email)
	return nil
}

type fakeTokenRepo struct {
	byEmail map[string]entities.UserToken
}

func newFakeTokenRepo() *fakeTokenRepo { return &fakeTokenRepo{byEmail: map[string]entities.UserToken{}} }

func (f *fakeTokenRepo) ReplaceToken(ctx context.Context, token entities.UserToken) error {
	f.byEmail[token.Email] = token
	return nil
}

func (f *fakeTokenRepo) ConsumeToken(ctx context.Context, email, nonce string) (entities.UserToken, error) {
	t, ok := f.byEmail[email]
	if !ok || t.Nonce != nonce {
		return entities.UserToken{}, ofdberrors.NewNotFound()
	}
	delete(f.byEmail, email)
	return t, nil
}
