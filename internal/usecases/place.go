package usecases

import (
	"context"

	"github.com/go-playground/validator/v10"

	"civicmap/internal/duplicate"
	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
	"civicmap/internal/repo"
	"civicmap/internal/revision"
	"civicmap/internal/tagauth"
)

var validate = validator.New()

// NewPlaceInput carries everything a caller supplies to create a place.
type NewPlaceInput struct {
	License     string
	CreatedBy   *string
	Title       string
	Description string
	Pos         geo.Point
	Address     *entities.Address
	Contact     *entities.Contact
	Links       *entities.Links
	Tags        []string
	CategoryIDs []string
}

// UpdatePlaceInput is NewPlaceInput plus the place being edited and the
// revision the edit is stored as (BaseRevision), which must be the place's
// current revision plus one.
type UpdatePlaceInput struct {
	NewPlaceInput
	PlaceID     ids.ID
	BaseRevision ids.Revision
}

// Places bundles the repositories a place write needs. It is constructed by
// the flow layer and passed into each use case call.
type Places struct {
	Place   repo.PlaceRepo
	Tag     repo.TagRepo
	Org     repo.OrganizationRepo
	Category repo.CategoryRepo
}

// CreatePlace implements spec.md §4.1 create_or_update for a brand-new
// place (rev=1): normalizes tags, authorizes any owned tags against org,
// then delegates to the revision engine.
func CreatePlace(ctx context.Context, repos Places, in NewPlaceInput, org *entities.Organization) (entities.Place, error) {
	if err := validateContact(in.Contact); err != nil {
		return entities.Place{}, err
	}
	if !in.Pos.Valid() {
		return entities.Place{}, ofdberrors.NewParameter(ofdberrors.InvalidPosition)
	}
	if err := validateLinks(in.Links); err != nil {
		return entities.Place{}, err
	}

	tags, err := PrepareTags(ctx, repos.Category, in.Tags, in.CategoryIDs)
	if err != nil {
		return entities.Place{}, err
	}
	if err := tagauth.AuthorizeCreate(ctx, repos.Org, tags, org); err != nil {
		return entities.Place{}, err
	}
	if err := EnsureTagsExist(ctx, repos.Tag, tags); err != nil {
		return entities.Place{}, err
	}

	place := entities.Place{
		ID:      ids.NewID(),
		License: in.License,
		Revision: ids.Initial,
		Created: entities.NowActivity(in.CreatedBy),
		Title:   in.Title,
		Description: in.Description,
		Location: entities.Location{Pos: in.Pos, Address: in.Address},
		Contact:  in.Contact,
		Links:    in.Links,
		Tags:     tags,
	}

	eng := revision.New(repos.Place)
	if err := eng.CreateOrUpdate(ctx, place); err != nil {
		return entities.Place{}, err
	}
	return place, nil
}

// UpdatePlace implements spec.md §4.1's update path: loads the current
// revision, computes the tag delta, authorizes it, and writes the next
// revision through the revision engine. The tag delta is taken against the
// current revision. Whenever that delta touches owned tags and org is
// given, a pending-authorization row naming the current revision is
// recorded and the write still succeeds (spec.md §4.1 point 4); earlier
// authorizations are not tracked, so the delta is not compared with a last
// authorized revision.
func UpdatePlace(ctx context.Context, repos Places, in UpdatePlaceInput, org *entities.Organization) (entities.Place, error) {
	if err := validateContact(in.Contact); err != nil {
		return entities.Place{}, err
	}
	if !in.Pos.Valid() {
		return entities.Place{}, ofdberrors.NewParameter(ofdberrors.InvalidPosition)
	}
	if err := validateLinks(in.Links); err != nil {
		return entities.Place{}, err
	}

	current, err := repos.Place.GetPlace(ctx, in.PlaceID)
	if err != nil {
		return entities.Place{}, err
	}

	tags, err := PrepareTags(ctx, repos.Category, in.Tags, in.CategoryIDs)
	if err != nil {
		return entities.Place{}, err
	}

	authorizedByOrg, err := tagauth.AuthorizeEdit(ctx, repos.Org, current.Tags, tags, org)
	if err != nil {
		return entities.Place{}, err
	}
	if err := EnsureTagsExist(ctx, repos.Tag, tags); err != nil {
		return entities.Place{}, err
	}

	place := entities.Place{
		ID:      in.PlaceID,
		License: current.License,
		Revision: in.BaseRevision,
		Created: current.Created,
		Title:   in.Title,
		Description: in.Description,
		Location: entities.Location{Pos: in.Pos, Address: in.Address},
		Contact:  in.Contact,
		Links:    in.Links,
		Tags:     tags,
	}

	eng := revision.New(repos.Place)
	if err := eng.CreateOrUpdate(ctx, place); err != nil {
		return entities.Place{}, err
	}

	if len(authorizedByOrg) > 0 && org != nil {
		pending := entities.PendingAuthorization{
			PlaceID:           place.ID,
			CreatedAt:         ids.Now(),
			LastAuthorizedRev: current.Revision,
		}
		if err := repos.Place.AddPendingAuthorization(ctx, []ids.ID{org.ID}, pending); err != nil {
			return entities.Place{}, err
		}
	}

	return place, nil
}

// ReviewPlaces implements spec.md §4.1 review: moves every listed place to
// newStatus, appending one review row per place actually changed.
func ReviewPlaces(ctx context.Context, placeRepo repo.PlaceRepo, placeIDs []ids.ID, newStatus entities.ReviewStatus, by *ids.ID, reviewContext, comment string) (int, error) {
	eng := revision.New(placeRepo)
	return eng.Review(ctx, placeIDs, newStatus, by, reviewContext, comment)
}

// FindDuplicatesForPlace compares a candidate place against every stored
// place, per spec.md §4.2.
func FindDuplicatesForPlace(ctx context.Context, placeRepo repo.PlaceRepo, candidate entities.Place) ([]duplicate.Pair, error) {
	all, err := placeRepo.AllPlaces(ctx)
	if err != nil {
		return nil, err
	}
	return duplicate.FindForPlace(candidate, all), nil
}

// FindAllDuplicates scans the whole place collection, per spec.md §4.2
// "pairwise scans across a collection".
func FindAllDuplicates(ctx context.Context, placeRepo repo.PlaceRepo) ([]duplicate.Pair, error) {
	all, err := placeRepo.AllPlaces(ctx)
	if err != nil {
		return nil, err
	}
	return duplicate.FindAll(all, all), nil
}

func validateContact(c *entities.Contact) error {
	if c == nil || c.IsEmpty() {
		return nil
	}
	if c.Email != "" {
		if err := validate.Var(c.Email, "email"); err != nil {
			return ofdberrors.NewParameter(ofdberrors.Email)
		}
	}
	if c.Phone != "" {
		if err := validate.Var(c.Phone, "e164|max=32"); err != nil {
			return ofdberrors.NewParameter(ofdberrors.Phone)
		}
	}
	return nil
}

// validateLinks enforces the Open Question decision recorded in
// SPEC_FULL.md §E: image must be an absolute URL when present.
func validateLinks(l *entities.Links) error {
	if l == nil || l.IsEmpty() {
		return nil
	}
	if l.Homepage != "" {
		if err := validate.Var(l.Homepage, "url"); err != nil {
			return ofdberrors.NewParameter(ofdberrors.Url)
		}
	}
	if l.Image != "" {
		if err := validate.Var(l.Image, "http_url"); err != nil {
			return ofdberrors.NewParameter(ofdberrors.Url)
		}
	}
	return nil
}
