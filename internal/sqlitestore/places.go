package sqlitestore

import (
	"context"
	"database/sql"
	"strings"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
)

// PlaceRepo adapts Store to repo.PlaceRepo.
type PlaceRepo struct{ s *Store }

func NewPlaceRepo(s *Store) *PlaceRepo { return &PlaceRepo{s: s} }

func joinTags(tags []string) string { return strings.Join(tags, ",") }

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func (r *PlaceRepo) GetPlace(ctx context.Context, id ids.ID) (entities.Place, error) {
	row := r.s.db.QueryRowContext(ctx, `
		SELECT pr.place_id, pr.rev, p.license, p.created_at, p.created_by,
		       pr.title, pr.description, pr.lat, pr.lng,
		       pr.street, pr.zip, pr.city, pr.country, pr.state,
		       pr.contact_email, pr.contact_phone,
		       pr.homepage, pr.image, pr.image_href,
		       pr.tags, pr.current_status
		FROM places p
		JOIN place_revisions pr ON pr.place_id = p.id AND pr.rev = p.current_rev
		WHERE p.id = ?`, string(id))
	place, err := scanPlace(row)
	if err == sql.ErrNoRows {
		return entities.Place{}, ofdberrors.NewNotFound()
	}
	if err != nil {
		return entities.Place{}, ofdberrors.WrapRepo(err, "get place")
	}
	return place, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (entities.Place, error) {
	var (
		placeID, license                                string
		rev                                              uint64
		createdAt, createdBy                             sql.NullString
		title, description                               string
		lat, lng                                         float64
		street, zip, city, country, state                sql.NullString
		contactEmail, contactPhone                        sql.NullString
		homepage, image, imageHref                        sql.NullString
		tags                                              string
		status                                            int
	)
	if err := row.Scan(&placeID, &rev, &license, &createdAt, &createdBy,
		&title, &description, &lat, &lng,
		&street, &zip, &city, &country, &state,
		&contactEmail, &contactPhone,
		&homepage, &image, &imageHref,
		&tags, &status); err != nil {
		return entities.Place{}, err
	}

	created, err := parseTime(createdAt.String)
	if err != nil {
		return entities.Place{}, err
	}

	place := entities.Place{
		ID:            ids.ID(placeID),
		License:       license,
		Revision:      ids.Revision(rev),
		Created:       entities.Activity{At: ids.FromTime(created), By: stringPtr(createdBy)},
		Title:         title,
		Description:   description,
		Location:      entities.Location{Pos: geo.Point{Lat: lat, Lng: lng}},
		Tags:          splitTags(tags),
		CurrentStatus: entities.ReviewStatus(status),
	}
	if addr := addressFrom(street, zip, city, country, state); addr != nil {
		place.Location.Address = addr
	}
	if contact := contactFrom(contactEmail, contactPhone); contact != nil {
		place.Contact = contact
	}
	if links := linksFrom(homepage, image, imageHref); links != nil {
		place.Links = links
	}
	return place, nil
}

func addressFrom(street, zip, city, country, state sql.NullString) *entities.Address {
	if !street.Valid && !zip.Valid && !city.Valid && !country.Valid && !state.Valid {
		return nil
	}
	a := entities.Address{Street: street.String, Zip: zip.String, City: city.String, Country: country.String, State: state.String}
	if a.IsEmpty() {
		return nil
	}
	return &a
}

func contactFrom(email, phone sql.NullString) *entities.Contact {
	if !email.Valid && !phone.Valid {
		return nil
	}
	c := entities.Contact{Email: email.String, Phone: phone.String}
	if c.IsEmpty() {
		return nil
	}
	return &c
}

func linksFrom(homepage, image, imageHref sql.NullString) *entities.Links {
	if !homepage.Valid && !image.Valid && !imageHref.Valid {
		return nil
	}
	l := entities.Links{Homepage: homepage.String, Image: image.String, ImageHref: imageHref.String}
	if l.IsEmpty() {
		return nil
	}
	return &l
}

func (r *PlaceRepo) CreateOrUpdatePlace(ctx context.Context, place entities.Place) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return ofdberrors.WrapRepo(err, "begin tx")
	}
	defer tx.Rollback()

	if place.Revision == ids.Initial {
		if _, err := tx.ExecContext(ctx, `INSERT INTO places (id, license, created_at, created_by, current_rev, current_status) VALUES (?, ?, ?, ?, ?, ?)`,
			string(place.ID), place.License, formatTime(place.Created.At.Time()), nullString(place.Created.By), uint64(place.Revision), int(place.CurrentStatus)); err != nil {
			return ofdberrors.WrapRepo(err, "insert place")
		}
	} else {
		res, err := tx.ExecContext(ctx, `UPDATE places SET current_rev = ?, current_status = ? WHERE id = ? AND current_rev = ?`,
			uint64(place.Revision), int(place.CurrentStatus), string(place.ID), uint64(place.Revision)-1)
		if err != nil {
			return ofdberrors.WrapRepo(err, "update place")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return ofdberrors.WrapRepo(err, "rows affected")
		}
		if n == 0 {
			return ofdberrors.NewInvalidVersion()
		}
	}

	if err := insertRevision(ctx, tx, place); err != nil {
		return err
	}
	return ofdberrors.WrapRepo(tx.Commit(), "commit place write")
}

func insertRevision(ctx context.Context, tx *sql.Tx, place entities.Place) error {
	var street, zip, city, country, state, contactEmail, contactPhone, homepage, image, imageHref sql.NullString
	if place.Location.Address != nil {
		a := place.Location.Address
		street, zip, city, country, state = sql.NullString{String: a.Street, Valid: true}, sql.NullString{String: a.Zip, Valid: true},
			sql.NullString{String: a.City, Valid: true}, sql.NullString{String: a.Country, Valid: true}, sql.NullString{String: a.State, Valid: true}
	}
	if place.Contact != nil {
		contactEmail = sql.NullString{String: place.Contact.Email, Valid: true}
		contactPhone = sql.NullString{String: place.Contact.Phone, Valid: true}
	}
	if place.Links != nil {
		homepage = sql.NullString{String: place.Links.Homepage, Valid: true}
		image = sql.NullString{String: place.Links.Image, Valid: true}
		imageHref = sql.NullString{String: place.Links.ImageHref, Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO place_revisions (place_id, rev, title, description, lat, lng,
			street, zip, city, country, state, contact_email, contact_phone,
			homepage, image, image_href, tags, current_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(place.ID), uint64(place.Revision), place.Title, place.Description,
		place.Location.Pos.Lat, place.Location.Pos.Lng,
		street, zip, city, country, state, contactEmail, contactPhone,
		homepage, image, imageHref, joinTags(place.Tags), int(place.CurrentStatus))
	return ofdberrors.WrapRepo(err, "insert revision")
}

func (r *PlaceRepo) GetPlaceHistory(ctx context.Context, id ids.ID) ([]entities.PlaceRevision, map[ids.Revision][]entities.PlaceRevisionReview, error) {
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT place_id, rev, title, description, lat, lng,
		       street, zip, city, country, state,
		       contact_email, contact_phone, homepage, image, image_href,
		       tags, current_status
		FROM place_revisions WHERE place_id = ? ORDER BY rev DESC`, string(id))
	if err != nil {
		return nil, nil, ofdberrors.WrapRepo(err, "query place history")
	}
	defer rows.Close()

	var revisions []entities.PlaceRevision
	for rows.Next() {
		var (
			placeID                                   string
			rev                                        uint64
			title, description                         string
			lat, lng                                   float64
			street, zip, city, country, state          sql.NullString
			contactEmail, contactPhone                  sql.NullString
			homepage, image, imageHref                  sql.NullString
			tags                                        string
			status                                      int
		)
		if err := rows.Scan(&placeID, &rev, &title, &description, &lat, &lng,
			&street, &zip, &city, &country, &state,
			&contactEmail, &contactPhone, &homepage, &image, &imageHref,
			&tags, &status); err != nil {
			return nil, nil, ofdberrors.WrapRepo(err, "scan place revision")
		}
		pr := entities.PlaceRevision{
			PlaceID: ids.ID(placeID), Rev: ids.Revision(rev),
			Title: title, Description: description,
			Location:      entities.Location{Pos: geo.Point{Lat: lat, Lng: lng}, Address: addressFrom(street, zip, city, country, state)},
			Contact:       contactFrom(contactEmail, contactPhone),
			Links:         linksFrom(homepage, image, imageHref),
			Tags:          splitTags(tags),
			CurrentStatus: entities.ReviewStatus(status),
		}
		revisions = append(revisions, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, ofdberrors.WrapRepo(err, "iterate place revisions")
	}

	reviewRows, err := r.s.db.QueryContext(ctx, `
		SELECT rev, review_rev, status, created_at, created_by, context, comment
		FROM place_reviews WHERE place_id = ? ORDER BY rev DESC, review_rev DESC`, string(id))
	if err != nil {
		return nil, nil, ofdberrors.WrapRepo(err, "query place reviews")
	}
	defer reviewRows.Close()

	reviews := map[ids.Revision][]entities.PlaceRevisionReview{}
	for reviewRows.Next() {
		var (
			rev, reviewRev      uint64
			status              int
			createdAt, createdBy sql.NullString
			reviewContext, comment sql.NullString
		)
		if err := reviewRows.Scan(&rev, &reviewRev, &status, &createdAt, &createdBy, &reviewContext, &comment); err != nil {
			return nil, nil, ofdberrors.WrapRepo(err, "scan place review")
		}
		at, err := parseTime(createdAt.String)
		if err != nil {
			return nil, nil, ofdberrors.WrapRepo(err, "parse review time")
		}
		var createdByID *ids.ID
		if createdBy.Valid {
			id := ids.ID(createdBy.String)
			createdByID = &id
		}
		review := entities.PlaceRevisionReview{
			PlaceID: id, Rev: ids.Revision(rev), ReviewRev: reviewRev,
			Status: entities.ReviewStatus(status), CreatedAt: ids.FromTime(at),
			CreatedBy: createdByID, Context: reviewContext.String, Comment: comment.String,
		}
		reviews[ids.Revision(rev)] = append(reviews[ids.Revision(rev)], review)
	}
	if err := reviewRows.Err(); err != nil {
		return nil, nil, ofdberrors.WrapRepo(err, "iterate place reviews")
	}
	return revisions, reviews, nil
}

func (r *PlaceRepo) AppendReview(ctx context.Context, review entities.PlaceRevisionReview) error {
	var createdBy sql.NullString
	if review.CreatedBy != nil {
		createdBy = sql.NullString{String: review.CreatedBy.String(), Valid: true}
	}
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO place_reviews (place_id, rev, review_rev, status, created_at, created_by, context, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(review.PlaceID), uint64(review.Rev), review.ReviewRev, int(review.Status),
		formatTime(review.CreatedAt.Time()), createdBy, review.Context, review.Comment)
	return ofdberrors.WrapRepo(err, "append review")
}

func (r *PlaceRepo) SetCurrentStatus(ctx context.Context, id ids.ID, status entities.ReviewStatus) error {
	res, err := r.s.db.ExecContext(ctx, `
		UPDATE place_revisions SET current_status = ?
		WHERE place_id = ? AND rev = (SELECT current_rev FROM places WHERE id = ?)`,
		int(status), string(id), string(id))
	if err != nil {
		return ofdberrors.WrapRepo(err, "set current status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ofdberrors.NewNotFound()
	}
	_, err = r.s.db.ExecContext(ctx, `UPDATE places SET current_status = ? WHERE id = ?`, int(status), string(id))
	return ofdberrors.WrapRepo(err, "set current status on place")
}

func (r *PlaceRepo) AllPlaces(ctx context.Context) ([]entities.Place, error) {
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT pr.place_id, pr.rev, p.license, p.created_at, p.created_by,
		       pr.title, pr.description, pr.lat, pr.lng,
		       pr.street, pr.zip, pr.city, pr.country, pr.state,
		       pr.contact_email, pr.contact_phone,
		       pr.homepage, pr.image, pr.image_href,
		       pr.tags, pr.current_status
		FROM places p
		JOIN place_revisions pr ON pr.place_id = p.id AND pr.rev = p.current_rev`)
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "query all places")
	}
	defer rows.Close()

	var out []entities.Place
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, ofdberrors.WrapRepo(err, "scan place")
		}
		out = append(out, place)
	}
	return out, ofdberrors.WrapRepo(rows.Err(), "iterate places")
}

func (r *PlaceRepo) AddPendingAuthorization(ctx context.Context, orgIDs []ids.ID, pending entities.PendingAuthorization) error {
	var status sql.NullInt64
	if pending.LastAuthorizedStatus != nil {
		status = sql.NullInt64{Int64: int64(*pending.LastAuthorizedStatus), Valid: true}
	}
	for _, orgID := range orgIDs {
		if _, err := r.s.db.ExecContext(ctx, `
			INSERT INTO pending_authorizations (place_id, org_id, created_at, last_authorized_rev, last_authorized_status)
			VALUES (?, ?, ?, ?, ?)`,
			string(pending.PlaceID), string(orgID), formatTime(pending.CreatedAt.Time()), uint64(pending.LastAuthorizedRev), status); err != nil {
			return ofdberrors.WrapRepo(err, "add pending authorization")
		}
	}
	return nil
}
