package usecases

import (
	"context"

	"civicmap/internal/entities"
	"civicmap/internal/ids"
	"civicmap/internal/repo"
)

// NewRatingInput carries a rating plus its first comment (the UI always
// collects both together).
type NewRatingInput struct {
	PlaceID ids.ID
	Title   string
	Value   float64
	Context entities.RatingContext
	Source  string
	Comment string
}

// Ratings bundles the repositories rating writes need.
type Ratings struct {
	Rating  repo.RatingRepo
	Comment repo.CommentRepo
	Place   repo.PlaceRepo
}

// RatePlace implements spec.md §4.3: creates a rating (and its opening
// comment, when supplied) attached to an existing place.
func RatePlace(ctx context.Context, repos Ratings, in NewRatingInput) (entities.Rating, error) {
	if _, err := repos.Place.GetPlace(ctx, in.PlaceID); err != nil {
		return entities.Rating{}, err
	}

	rating := entities.Rating{
		ID:        ids.NewID(),
		PlaceID:   in.PlaceID,
		CreatedAt: ids.Now(),
		Title:     in.Title,
		Value:     entities.ClampRating(in.Value),
		Context:   in.Context,
		Source:    in.Source,
	}
	if err := repos.Rating.CreateRating(ctx, rating); err != nil {
		return entities.Rating{}, err
	}

	if in.Comment != "" {
		comment := entities.Comment{
			ID:        ids.NewID(),
			RatingID:  rating.ID,
			CreatedAt: ids.Now(),
			Text:      in.Comment,
		}
		if err := repos.Comment.CreateComment(ctx, comment); err != nil {
			return entities.Rating{}, err
		}
	}

	return rating, nil
}

// AverageRatingsForPlace implements the read side of spec.md §4.3.
func AverageRatingsForPlace(ctx context.Context, ratingRepo repo.RatingRepo, placeID ids.ID) (entities.AverageRatings, error) {
	ratings, err := ratingRepo.LoadRatingsOfPlace(ctx, placeID)
	if err != nil {
		return entities.AverageRatings{}, err
	}
	return entities.AverageFor(ratings), nil
}

// ArchivePlaceCascade implements spec.md §4.3's archive-on-delete cascade:
// archiving a place archives its ratings then their comments (SPEC_FULL.md
// §E records this ordering decision), stamping archived_at/archived_by on
// every row without deleting anything.
func ArchivePlaceCascade(ctx context.Context, repos Ratings, placeID ids.ID, at ids.Timestamp, by *ids.ID) error {
	archivedRatings, err := repos.Rating.ArchiveRatingsOfPlace(ctx, placeID, at, by)
	if err != nil {
		return err
	}

	ratingIDs := make([]ids.ID, 0, len(archivedRatings))
	for _, r := range archivedRatings {
		ratingIDs = append(ratingIDs, r.ID)
	}
	if len(ratingIDs) == 0 {
		return nil
	}
	return repos.Comment.ArchiveCommentsOfRatings(ctx, ratingIDs, at, by)
}

// ArchiveRating archives one rating and cascades to its comments.
func ArchiveRating(ctx context.Context, repos Ratings, ratingID ids.ID, at ids.Timestamp, by *ids.ID) error {
	if err := repos.Rating.ArchiveRatings(ctx, []ids.ID{ratingID}, at, by); err != nil {
		return err
	}
	return repos.Comment.ArchiveCommentsOfRatings(ctx, []ids.ID{ratingID}, at, by)
}
