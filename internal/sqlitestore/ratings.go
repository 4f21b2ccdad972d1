package sqlitestore

import (
	"context"
	"database/sql"
	"strings"

	"civicmap/internal/entities"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
)

// RatingRepo adapts Store to repo.RatingRepo.
type RatingRepo struct{ s *Store }

func NewRatingRepo(s *Store) *RatingRepo { return &RatingRepo{s: s} }

func (r *RatingRepo) CreateRating(ctx context.Context, rating entities.Rating) error {
	var archivedAt, archivedBy sql.NullString
	if rating.ArchivedAt != nil {
		archivedAt = sql.NullString{String: formatTime(rating.ArchivedAt.Time()), Valid: true}
	}
	if rating.ArchivedBy != nil {
		archivedBy = sql.NullString{String: rating.ArchivedBy.String(), Valid: true}
	}
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO ratings (id, place_id, created_at, archived_at, archived_by, title, value, context, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rating.ID), string(rating.PlaceID), formatTime(rating.CreatedAt.Time()),
		archivedAt, archivedBy, rating.Title, rating.Value, int(rating.Context), rating.Source)
	return ofdberrors.WrapRepo(err, "create rating")
}

func scanRating(row rowScanner) (entities.Rating, error) {
	var (
		id, placeID, createdAt string
		archivedAt, archivedBy sql.NullString
		title                  string
		value                  float64
		context                int
		source                 string
	)
	if err := row.Scan(&id, &placeID, &createdAt, &archivedAt, &archivedBy, &title, &value, &context, &source); err != nil {
		return entities.Rating{}, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return entities.Rating{}, err
	}
	rating := entities.Rating{
		ID: ids.ID(id), PlaceID: ids.ID(placeID), CreatedAt: ids.FromTime(created),
		Title: title, Value: value, Context: entities.RatingContext(context), Source: source,
	}
	if archivedAt.Valid {
		at, err := parseTime(archivedAt.String)
		if err != nil {
			return entities.Rating{}, err
		}
		ts := ids.FromTime(at)
		rating.ArchivedAt = &ts
	}
	if archivedBy.Valid {
		by := ids.ID(archivedBy.String)
		rating.ArchivedBy = &by
	}
	return rating, nil
}

func (r *RatingRepo) LoadRatingsOfPlace(ctx context.Context, placeID ids.ID) ([]entities.Rating, error) {
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, place_id, created_at, archived_at, archived_by, title, value, context, source
		FROM ratings WHERE place_id = ?`, string(placeID))
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "load ratings of place")
	}
	defer rows.Close()
	return scanRatingRows(rows)
}

func (r *RatingRepo) LoadRatings(ctx context.Context, ratingIDs []ids.ID) ([]entities.Rating, error) {
	if len(ratingIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ratingIDs))
	args := make([]any, len(ratingIDs))
	for i, id := range ratingIDs {
		placeholders[i] = "?"
		args[i] = string(id)
	}
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, place_id, created_at, archived_at, archived_by, title, value, context, source
		FROM ratings WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "load ratings")
	}
	defer rows.Close()
	return scanRatingRows(rows)
}

func scanRatingRows(rows *sql.Rows) ([]entities.Rating, error) {
	var out []entities.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, ofdberrors.WrapRepo(err, "scan rating")
		}
		out = append(out, rating)
	}
	return out, ofdberrors.WrapRepo(rows.Err(), "iterate ratings")
}

func (r *RatingRepo) ArchiveRatings(ctx context.Context, ratingIDs []ids.ID, at ids.Timestamp, by *ids.ID) error {
	var archivedBy sql.NullString
	if by != nil {
		archivedBy = sql.NullString{String: by.String(), Valid: true}
	}
	for _, id := range ratingIDs {
		if _, err := r.s.db.ExecContext(ctx, `
			UPDATE ratings SET archived_at = ?, archived_by = ? WHERE id = ? AND archived_at IS NULL`,
			formatTime(at.Time()), archivedBy, string(id)); err != nil {
			return ofdberrors.WrapRepo(err, "archive ratings")
		}
	}
	return nil
}

func (r *RatingRepo) ArchiveRatingsOfPlace(ctx context.Context, placeID ids.ID, at ids.Timestamp, by *ids.ID) ([]entities.Rating, error) {
	live, err := r.LoadRatingsOfPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	var liveIDs []ids.ID
	for _, rt := range live {
		if rt.Live() {
			liveIDs = append(liveIDs, rt.ID)
		}
	}
	if err := r.ArchiveRatings(ctx, liveIDs, at, by); err != nil {
		return nil, err
	}
	return r.LoadRatings(ctx, liveIDs)
}

// CommentRepo adapts Store to repo.CommentRepo.
type CommentRepo struct{ s *Store }

func NewCommentRepo(s *Store) *CommentRepo { return &CommentRepo{s: s} }

func (r *CommentRepo) CreateComment(ctx context.Context, comment entities.Comment) error {
	var archivedAt, archivedBy sql.NullString
	if comment.ArchivedAt != nil {
		archivedAt = sql.NullString{String: formatTime(comment.ArchivedAt.Time()), Valid: true}
	}
	if comment.ArchivedBy != nil {
		archivedBy = sql.NullString{String: comment.ArchivedBy.String(), Valid: true}
	}
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO comments (id, rating_id, created_at, archived_at, archived_by, text)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(comment.ID), string(comment.RatingID), formatTime(comment.CreatedAt.Time()), archivedAt, archivedBy, comment.Text)
	return ofdberrors.WrapRepo(err, "create comment")
}

func (r *CommentRepo) LoadCommentsOfRating(ctx context.Context, ratingID ids.ID) ([]entities.Comment, error) {
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, rating_id, created_at, archived_at, archived_by, text
		FROM comments WHERE rating_id = ?`, string(ratingID))
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "load comments of rating")
	}
	defer rows.Close()

	var out []entities.Comment
	for rows.Next() {
		var (
			id, ratingIDStr, createdAt string
			archivedAt, archivedBy     sql.NullString
			text                       string
		)
		if err := rows.Scan(&id, &ratingIDStr, &createdAt, &archivedAt, &archivedBy, &text); err != nil {
			return nil, ofdberrors.WrapRepo(err, "scan comment")
		}
		created, err := parseTime(createdAt)
		if err != nil {
			return nil, ofdberrors.WrapRepo(err, "parse comment time")
		}
		c := entities.Comment{ID: ids.ID(id), RatingID: ids.ID(ratingIDStr), CreatedAt: ids.FromTime(created), Text: text}
		if archivedAt.Valid {
			at, err := parseTime(archivedAt.String)
			if err != nil {
				return nil, ofdberrors.WrapRepo(err, "parse comment archive time")
			}
			ts := ids.FromTime(at)
			c.ArchivedAt = &ts
		}
		if archivedBy.Valid {
			by := ids.ID(archivedBy.String)
			c.ArchivedBy = &by
		}
		out = append(out, c)
	}
	return out, ofdberrors.WrapRepo(rows.Err(), "iterate comments")
}

func (r *CommentRepo) ArchiveCommentsOfRatings(ctx context.Context, ratingIDs []ids.ID, at ids.Timestamp, by *ids.ID) error {
	var archivedBy sql.NullString
	if by != nil {
		archivedBy = sql.NullString{String: by.String(), Valid: true}
	}
	for _, id := range ratingIDs {
		if _, err := r.s.db.ExecContext(ctx, `
			UPDATE comments SET archived_at = ?, archived_by = ?
			WHERE rating_id = ? AND archived_at IS NULL`,
			formatTime(at.Time()), archivedBy, string(id)); err != nil {
			return ofdberrors.WrapRepo(err, "archive comments of ratings")
		}
	}
	return nil
}
