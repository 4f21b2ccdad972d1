package sqlitestore

import (
	"context"
	"database/sql"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
)

// EventRepo adapts Store to repo.EventRepo.
type EventRepo struct{ s *Store }

func NewEventRepo(s *Store) *EventRepo { return &EventRepo{s: s} }

func (r *EventRepo) GetEvent(ctx context.Context, id ids.ID) (entities.Event, error) {
	row := r.s.db.QueryRowContext(ctx, `
		SELECT id, title, start_at, end_at, lat, lng,
		       street, zip, city, country, state,
		       contact_email, contact_phone, homepage, image, image_href,
		       created_by, tags, registration, organizer, archived_at
		FROM events WHERE id = ?`, string(id))
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return entities.Event{}, ofdberrors.NewNotFound()
	}
	if err != nil {
		return entities.Event{}, ofdberrors.WrapRepo(err, "get event")
	}
	return event, nil
}

func scanEvent(row rowScanner) (entities.Event, error) {
	var (
		id, title, startAt                       string
		endAt                                    sql.NullString
		lat, lng                                 sql.NullFloat64
		street, zip, city, country, state         sql.NullString
		contactEmail, contactPhone                sql.NullString
		homepage, image, imageHref                sql.NullString
		createdBy                                 sql.NullString
		tags                                      string
		registration                              sql.NullInt64
		organizer                                 string
		archivedAt                                sql.NullString
	)
	if err := row.Scan(&id, &title, &startAt, &endAt, &lat, &lng,
		&street, &zip, &city, &country, &state,
		&contactEmail, &contactPhone, &homepage, &image, &imageHref,
		&createdBy, &tags, &registration, &organizer, &archivedAt); err != nil {
		return entities.Event{}, err
	}

	start, err := parseTime(startAt)
	if err != nil {
		return entities.Event{}, err
	}

	event := entities.Event{
		ID: ids.ID(id), Title: title, Start: ids.FromTime(start),
		Tags: splitTags(tags), Organizer: organizer,
		Contact: contactFrom(contactEmail, contactPhone),
		Links:   linksFrom(homepage, image, imageHref),
	}
	if endAt.Valid {
		end, err := parseTime(endAt.String)
		if err != nil {
			return entities.Event{}, err
		}
		ts := ids.FromTime(end)
		event.End = &ts
	}
	if lat.Valid && lng.Valid {
		event.Location = &entities.Location{
			Pos:     geo.Point{Lat: lat.Float64, Lng: lng.Float64},
			Address: addressFrom(street, zip, city, country, state),
		}
	}
	if createdBy.Valid {
		by := ids.ID(createdBy.String)
		event.CreatedBy = &by
	}
	if registration.Valid {
		rt := entities.RegistrationType(registration.Int64)
		event.Registration = &rt
	}
	if archivedAt.Valid {
		at, err := parseTime(archivedAt.String)
		if err != nil {
			return entities.Event{}, err
		}
		ts := ids.FromTime(at)
		event.ArchivedAt = &ts
	}
	return event, nil
}

func (r *EventRepo) CreateEvent(ctx context.Context, event entities.Event) error {
	return r.upsertEvent(ctx, event, true)
}

func (r *EventRepo) UpdateEvent(ctx context.Context, event entities.Event) error {
	return r.upsertEvent(ctx, event, false)
}

func (r *EventRepo) upsertEvent(ctx context.Context, event entities.Event, insert bool) error {
	var lat, lng sql.NullFloat64
	var street, zip, city, country, state sql.NullString
	if event.Location != nil {
		lat = sql.NullFloat64{Float64: event.Location.Pos.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: event.Location.Pos.Lng, Valid: true}
		if event.Location.Address != nil {
			a := event.Location.Address
			street, zip, city, country, state = sql.NullString{String: a.Street, Valid: true}, sql.NullString{String: a.Zip, Valid: true},
				sql.NullString{String: a.City, Valid: true}, sql.NullString{String: a.Country, Valid: true}, sql.NullString{String: a.State, Valid: true}
		}
	}
	var contactEmail, contactPhone sql.NullString
	if event.Contact != nil {
		contactEmail = sql.NullString{String: event.Contact.Email, Valid: true}
		contactPhone = sql.NullString{String: event.Contact.Phone, Valid: true}
	}
	var homepage, image, imageHref sql.NullString
	if event.Links != nil {
		homepage = sql.NullString{String: event.Links.Homepage, Valid: true}
		image = sql.NullString{String: event.Links.Image, Valid: true}
		imageHref = sql.NullString{String: event.Links.ImageHref, Valid: true}
	}
	var createdBy sql.NullString
	if event.CreatedBy != nil {
		createdBy = sql.NullString{String: event.CreatedBy.String(), Valid: true}
	}
	var endAt sql.NullString
	if event.End != nil {
		endAt = sql.NullString{String: formatTime(event.End.Time()), Valid: true}
	}
	var registration sql.NullInt64
	if event.Registration != nil {
		registration = sql.NullInt64{Int64: int64(*event.Registration), Valid: true}
	}
	var archivedAt sql.NullString
	if event.ArchivedAt != nil {
		archivedAt = sql.NullString{String: formatTime(event.ArchivedAt.Time()), Valid: true}
	}

	var err error
	if insert {
		_, err = r.s.db.ExecContext(ctx, `
			INSERT INTO events (id, title, start_at, end_at, lat, lng,
				street, zip, city, country, state,
				contact_email, contact_phone, homepage, image, image_href,
				created_by, tags, registration, organizer, archived_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(event.ID), event.Title, formatTime(event.Start.Time()), endAt, lat, lng,
			street, zip, city, country, state,
			contactEmail, contactPhone, homepage, image, imageHref,
			createdBy, joinTags(event.Tags), registration, event.Organizer, archivedAt)
	} else {
		_, err = r.s.db.ExecContext(ctx, `
			UPDATE events SET title=?, start_at=?, end_at=?, lat=?, lng=?,
				street=?, zip=?, city=?, country=?, state=?,
				contact_email=?, contact_phone=?, homepage=?, image=?, image_href=?,
				tags=?, registration=?, organizer=?, archived_at=?
			WHERE id=?`,
			event.Title, formatTime(event.Start.Time()), endAt, lat, lng,
			street, zip, city, country, state,
			contactEmail, contactPhone, homepage, image, imageHref,
			joinTags(event.Tags), registration, event.Organizer, archivedAt,
			string(event.ID))
	}
	return ofdberrors.WrapRepo(err, "upsert event")
}

func (r *EventRepo) AllEvents(ctx context.Context) ([]entities.Event, error) {
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, title, start_at, end_at, lat, lng,
		       street, zip, city, country, state,
		       contact_email, contact_phone, homepage, image, image_href,
		       created_by, tags, registration, organizer, archived_at
		FROM events`)
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "query all events")
	}
	defer rows.Close()

	var out []entities.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, ofdberrors.WrapRepo(err, "scan event")
		}
		out = append(out, event)
	}
	return out, ofdberrors.WrapRepo(rows.Err(), "iterate events")
}

func (r *EventRepo) ArchiveEvents(ctx context.Context, eventIDs []ids.ID, at ids.Timestamp) (int, error) {
	changed := 0
	for _, id := range eventIDs {
		res, err := r.s.db.ExecContext(ctx, `UPDATE events SET archived_at = ? WHERE id = ? AND archived_at IS NULL`,
			formatTime(at.Time()), string(id))
		if err != nil {
			return changed, ofdberrors.WrapRepo(err, "archive event")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return changed, ofdberrors.WrapRepo(err, "rows affected")
		}
		changed += int(n)
	}
	return changed, nil
}

func (r *EventRepo) DeleteEvent(ctx context.Context, id ids.ID) error {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, string(id))
	if err != nil {
		return ofdberrors.WrapRepo(err, "delete event")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ofdberrors.NewNotFound()
	}
	return nil
}
