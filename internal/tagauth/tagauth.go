// Package tagauth implements the tag-ownership authorization rule (C4,
// spec.md §4.1): an edit that adds or removes a tag owned by some
// organization must be authorized, directly or pending, by that org.
//
// Grounded on original_source/src/core/usecases/mod.rs
// (check_and_count_owned_tags) and update_place.rs
// (authorization::moderated_tag::authorize_editing), see SPEC_FULL.md §D.1:
// create and update are deliberately two entry points, not one collapsed
// path, because create has no prior authorized revision to diff against.
package tagauth

import (
	"context"
	"sort"

	"civicmap/internal/entities"
	"civicmap/internal/ofdberrors"
	"civicmap/internal/repo"
)

// OwnedTagSource resolves which tags are owned by any organization, so the
// authorizer never has to see the whole Organization table.
type OwnedTagSource interface {
	AllTagsOwnedByOrgs(ctx context.Context) ([]string, error)
}

var _ OwnedTagSource = repo.OrganizationRepo(nil)

// AuthorizeCreate checks the tags attached to a brand-new place/event
// against owned-tag rules. There is no prior revision, so any owned tag
// requires the caller's org to own it outright; there is no pending-
// authorization concept on create.
func AuthorizeCreate(ctx context.Context, src OwnedTagSource, tags []string, org *entities.Organization) error {
	owned, err := src.AllTagsOwnedByOrgs(ctx)
	if err != nil {
		return err
	}
	ownedSet := toSet(owned)
	for _, t := range tags {
		if _, isOwned := ownedSet[t]; !isOwned {
			continue
		}
		if org == nil || !org.Owns(t) {
			return ofdberrors.NewParameter(ofdberrors.OwnedTag)
		}
	}
	return nil
}

// AuthorizeEdit checks the tag delta between an old and new place revision.
// It returns, sorted, the owned tags in that delta, all of which org owns;
// if any owned tag in the delta is not owned by org (or org is nil) it fails
// with OwnedTag. A non-empty result is what usecases.UpdatePlace turns into
// a PendingAuthorization row.
func AuthorizeEdit(ctx context.Context, src OwnedTagSource, oldTags, newTags []string, org *entities.Organization) ([]string, error) {
	added, removed := entities.TagDelta(oldTags, newTags)
	touched := append(append([]string{}, added...), removed...)
	if len(touched) == 0 {
		return nil, nil
	}

	owned, err := src.AllTagsOwnedByOrgs(ctx)
	if err != nil {
		return nil, err
	}
	ownedSet := toSet(owned)

	var authorizedByOrg []string
	for _, t := range touched {
		if _, isOwned := ownedSet[t]; !isOwned {
			continue
		}
		if org == nil || !org.Owns(t) {
			return nil, ofdberrors.NewParameter(ofdberrors.OwnedTag)
		}
		authorizedByOrg = append(authorizedByOrg, t)
	}
	sort.Strings(authorizedByOrg)
	return authorizedByOrg, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
