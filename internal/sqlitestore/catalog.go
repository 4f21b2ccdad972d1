package sqlitestore

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
)

// TagRepo adapts Store to repo.TagRepo.
type TagRepo struct{ s *Store }

func NewTagRepo(s *Store) *TagRepo { return &TagRepo{s: s} }

func (r *TagRepo) CreateTagIfNotExists(ctx context.Context, tag entities.Tag) error {
	_, err := r.s.db.ExecContext(ctx, `INSERT OR IGNORE INTO tags (id) VALUES (?)`, tag.ID)
	return ofdberrors.WrapRepo(err, "create tag if not exists")
}

func (r *TagRepo) AllTags(ctx context.Context) ([]entities.Tag, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT id FROM tags ORDER BY id`)
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "query all tags")
	}
	defer rows.Close()

	var out []entities.Tag
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, ofdberrors.WrapRepo(err, "scan tag")
		}
		out = append(out, entities.Tag{ID: id})
	}
	return out, ofdberrors.WrapRepo(rows.Err(), "iterate tags")
}

// CategoryRepo adapts Store to repo.CategoryRepo.
type CategoryRepo struct{ s *Store }

func NewCategoryRepo(s *Store) *CategoryRepo { return &CategoryRepo{s: s} }

func (r *CategoryRepo) AllCategories(ctx context.Context) ([]entities.Category, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "query all categories")
	}
	defer rows.Close()
	return scanCategoryRows(rows)
}

func (r *CategoryRepo) GetCategories(ctx context.Context, categoryIDs []string) ([]entities.Category, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(categoryIDs))
	args := make([]any, len(categoryIDs))
	for i, id := range categoryIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT id, name FROM categories WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "get categories")
	}
	defer rows.Close()
	return scanCategoryRows(rows)
}

func scanCategoryRows(rows *sql.Rows) ([]entities.Category, error) {
	var out []entities.Category
	for rows.Next() {
		var c entities.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, ofdberrors.WrapRepo(err, "scan category")
		}
		out = append(out, c)
	}
	return out, ofdberrors.WrapRepo(rows.Err(), "iterate categories")
}

// OrganizationRepo adapts Store to repo.OrganizationRepo.
type OrganizationRepo struct{ s *Store }

func NewOrganizationRepo(s *Store) *OrganizationRepo { return &OrganizationRepo{s: s} }

func (r *OrganizationRepo) GetOrgByAPIToken(ctx context.Context, token string) (entities.Organization, error) {
	row := r.s.db.QueryRowContext(ctx, `SELECT id, name, api_token, owned_tags FROM organizations WHERE api_token = ?`, token)
	var id, name, apiToken, ownedTags string
	if err := row.Scan(&id, &name, &apiToken, &ownedTags); err == sql.ErrNoRows {
		return entities.Organization{}, ofdberrors.NewNotFound()
	} else if err != nil {
		return entities.Organization{}, ofdberrors.WrapRepo(err, "get org by api token")
	}
	tags := splitTags(ownedTags)
	sort.Strings(tags)
	return entities.Organization{ID: ids.ID(id), Name: name, APIToken: apiToken, OwnedTags: tags}, nil
}

func (r *OrganizationRepo) AllTagsOwnedByOrgs(ctx context.Context) ([]string, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT owned_tags FROM organizations`)
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "query owned tags")
	}
	defer rows.Close()

	set := map[string]struct{}{}
	for rows.Next() {
		var ownedTags string
		if err := rows.Scan(&ownedTags); err != nil {
			return nil, ofdberrors.WrapRepo(err, "scan owned tags")
		}
		for _, t := range splitTags(ownedTags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, ofdberrors.WrapRepo(err, "iterate organizations")
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// BboxSubscriptionRepo adapts Store to repo.BboxSubscriptionRepo.
type BboxSubscriptionRepo struct{ s *Store }

func NewBboxSubscriptionRepo(s *Store) *BboxSubscriptionRepo { return &BboxSubscriptionRepo{s: s} }

func (r *BboxSubscriptionRepo) CreateBboxSubscription(ctx context.Context, sub entities.BboxSubscription) error {
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO bbox_subscriptions (id, user_email, sw_lat, sw_lng, ne_lat, ne_lng)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(sub.ID), sub.UserEmail, sub.Bbox.SouthWest.Lat, sub.Bbox.SouthWest.Lng, sub.Bbox.NorthEast.Lat, sub.Bbox.NorthEast.Lng)
	return ofdberrors.WrapRepo(err, "create bbox subscription")
}

func (r *BboxSubscriptionRepo) AllBboxSubscriptions(ctx context.Context) ([]entities.BboxSubscription, error) {
	rows, err := r.s.db.QueryContext(ctx, `SELECT id, user_email, sw_lat, sw_lng, ne_lat, ne_lng FROM bbox_subscriptions`)
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "query all bbox subscriptions")
	}
	defer rows.Close()

	var out []entities.BboxSubscription
	for rows.Next() {
		var id, email string
		var swLat, swLng, neLat, neLng float64
		if err := rows.Scan(&id, &email, &swLat, &swLng, &neLat, &neLng); err != nil {
			return nil, ofdberrors.WrapRepo(err, "scan bbox subscription")
		}
		out = append(out, entities.BboxSubscription{
			ID: ids.ID(id), UserEmail: email,
			Bbox: geo.Bbox{SouthWest: geo.Point{Lat: swLat, Lng: swLng}, NorthEast: geo.Point{Lat: neLat, Lng: neLng}},
		})
	}
	return out, ofdberrors.WrapRepo(rows.Err(), "iterate bbox subscriptions")
}

func (r *BboxSubscriptionRepo) DeleteBboxSubscriptionsByEmail(ctx context.Context, email string) error {
	_, err := r.s.db.ExecContext(ctx, `DELETE FROM bbox_subscriptions WHERE user_email = ?`, email)
	return ofdberrors.WrapRepo(err, "delete bbox subscriptions by email")
}
