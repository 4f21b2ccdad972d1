package usecases

import (
	"context"
	"strings"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
	"civicmap/internal/repo"
	"civicmap/internal/tagauth"
)

// NewEventInput carries everything a caller supplies to create or update an
// event (spec.md §4.7: "create and update mirror place's use-case shape but
// without revisioning").
type NewEventInput struct {
	Title        string
	Start        ids.Timestamp
	End          *ids.Timestamp
	Pos          *geo.Point
	Address      *entities.Address
	Contact      *entities.Contact
	Links        *entities.Links
	CreatedBy    *string
	Tags         []string
	CategoryIDs  []string
	Registration *entities.RegistrationType
	Organizer    string
}

// Events bundles the repositories event writes need.
type Events struct {
	Event    repo.EventRepo
	Tag      repo.TagRepo
	Org      repo.OrganizationRepo
	Category repo.CategoryRepo
	User     repo.UserRepo
}

// CreateEvent implements spec.md §4.7's create path, including the
// registration-type coherence check (boundary scenario 6) and, when a
// bearer-token org is present, the same tag-ownership path places use
// (SPEC_FULL.md §D.5).
func CreateEvent(ctx context.Context, repos Events, in NewEventInput, org *entities.Organization) (entities.Event, error) {
	if err := validateEvent(in); err != nil {
		return entities.Event{}, err
	}

	tags, err := PrepareTags(ctx, repos.Category, in.Tags, in.CategoryIDs)
	if err != nil {
		return entities.Event{}, err
	}
	if err := tagauth.AuthorizeCreate(ctx, repos.Org, tags, org); err != nil {
		return entities.Event{}, err
	}
	if err := EnsureTagsExist(ctx, repos.Tag, tags); err != nil {
		return entities.Event{}, err
	}

	// CreatedBy is supplied as an email; resolve it to the registered
	// account's ID, since Event.CreatedBy records a real creator identity
	// rather than an arbitrary string. An unknown or absent email leaves
	// the event anonymous instead of failing the write.
	var createdBy *ids.ID
	if in.CreatedBy != nil && repos.User != nil {
		if account, err := repos.User.TryGetUserByEmail(ctx, *in.CreatedBy); err == nil && account != nil {
			createdBy = &account.ID
		}
	}

	event := entities.Event{
		ID:           ids.NewID(),
		Title:        in.Title,
		Start:        in.Start,
		End:          in.End,
		CreatedBy:    createdBy,
		Tags:         tags,
		Registration: in.Registration,
		Organizer:    in.Organizer,
	}
	if in.Pos != nil {
		event.Location = &entities.Location{Pos: *in.Pos, Address: in.Address}
	}
	event.Contact = in.Contact
	event.Links = in.Links

	if err := repos.Event.CreateEvent(ctx, event); err != nil {
		return entities.Event{}, err
	}
	return event, nil
}

// UpdateEvent implements spec.md §4.7's update path.
func UpdateEvent(ctx context.Context, repos Events, id ids.ID, in NewEventInput, org *entities.Organization) (entities.Event, error) {
	if err := validateEvent(in); err != nil {
		return entities.Event{}, err
	}
	existing, err := repos.Event.GetEvent(ctx, id)
	if err != nil {
		return entities.Event{}, err
	}

	tags, err := PrepareTags(ctx, repos.Category, in.Tags, in.CategoryIDs)
	if err != nil {
		return entities.Event{}, err
	}
	if _, err := tagauth.AuthorizeEdit(ctx, repos.Org, existing.Tags, tags, org); err != nil {
		return entities.Event{}, err
	}
	if err := EnsureTagsExist(ctx, repos.Tag, tags); err != nil {
		return entities.Event{}, err
	}

	updated := existing
	updated.Title = in.Title
	updated.Start = in.Start
	updated.End = in.End
	updated.Tags = tags
	updated.Registration = in.Registration
	updated.Organizer = in.Organizer
	updated.Contact = in.Contact
	updated.Links = in.Links
	if in.Pos != nil {
		updated.Location = &entities.Location{Pos: *in.Pos, Address: in.Address}
	} else {
		updated.Location = nil
	}

	if err := repos.Event.UpdateEvent(ctx, updated); err != nil {
		return entities.Event{}, err
	}
	return updated, nil
}

// ArchiveEvents implements spec.md §4.7 archive: sets archived_at only on
// rows where it is NULL, returning the count changed (boundary scenario 7).
func ArchiveEvents(ctx context.Context, eventRepo repo.EventRepo, eventIDs []ids.ID, at ids.Timestamp) (int, error) {
	return eventRepo.ArchiveEvents(ctx, eventIDs, at)
}

// DeleteEventWithTagFilter implements spec.md §4.7
// delete_with_tag_filter: deletes iff the event carries at least one of the
// required tags (or the filter is empty); returns ok=false when nothing
// matched.
func DeleteEventWithTagFilter(ctx context.Context, eventRepo repo.EventRepo, id ids.ID, requiredTags []string) (bool, error) {
	event, err := eventRepo.GetEvent(ctx, id)
	if err != nil {
		if re, ok := ofdberrors.AsRepo(err); ok && re.Kind == ofdberrors.NotFound {
			return false, nil
		}
		return false, err
	}
	if !event.HasAnyTag(requiredTags) {
		return false, nil
	}
	if err := eventRepo.DeleteEvent(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// EventQuery is the supplemented query shape from SPEC_FULL.md §D.2:
// bbox, creator, time window, tags, free text, and a result limit.
type EventQuery struct {
	Bbox        *geo.Bbox
	CreatedBy   *ids.ID
	StartsAfter *ids.Timestamp
	StartsBefore *ids.Timestamp
	Tags        []string
	Text        string
	Limit       int
}

// QueryEvents filters the live (non-archived) event set in-process; a
// durable deployment would push this down to the search index or a SQL
// WHERE clause, but the filter semantics belong here so both paths agree.
func QueryEvents(ctx context.Context, eventRepo repo.EventRepo, q EventQuery) ([]entities.Event, error) {
	all, err := eventRepo.AllEvents(ctx)
	if err != nil {
		return nil, err
	}

	var out []entities.Event
	for _, e := range all {
		if !e.Live() {
			continue
		}
		if q.Bbox != nil {
			if e.Location == nil || !q.Bbox.Contains(e.Location.Pos) {
				continue
			}
		}
		if q.CreatedBy != nil && (e.CreatedBy == nil || *e.CreatedBy != *q.CreatedBy) {
			continue
		}
		if q.StartsAfter != nil && e.Start.Before(*q.StartsAfter) {
			continue
		}
		if q.StartsBefore != nil && !e.Start.Before(*q.StartsBefore) {
			continue
		}
		if len(q.Tags) > 0 && !e.HasAnyTag(q.Tags) {
			continue
		}
		if q.Text != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(q.Text)) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// validateEvent enforces spec.md §3's registration-type coherence
// invariant (boundary scenario 6).
func validateEvent(in NewEventInput) error {
	if in.Registration == nil {
		return nil
	}
	switch *in.Registration {
	case entities.RegistrationEmail:
		if in.Contact == nil || in.Contact.Email == "" {
			return ofdberrors.NewParameter(ofdberrors.Email)
		}
	case entities.RegistrationPhone:
		if in.Contact == nil || in.Contact.Phone == "" {
			return ofdberrors.NewParameter(ofdberrors.Phone)
		}
	case entities.RegistrationHomepage:
		if in.Links == nil || in.Links.Homepage == "" {
			return ofdberrors.NewParameter(ofdberrors.RegistrationType)
		}
	}
	return nil
}
