package entities

import (
	"strings"

	"civicmap/internal/ids"
)

// RegistrationType names how attendees sign up for an Event (spec.md §3).
type RegistrationType int

const (
	RegistrationNone RegistrationType = iota
	RegistrationEmail
	RegistrationPhone
	RegistrationHomepage
)

func (r RegistrationType) String() string {
	switch r {
	case RegistrationEmail:
		return "email"
	case RegistrationPhone:
		return "telephone"
	case RegistrationHomepage:
		return "homepage"
	default:
		return ""
	}
}

// ParseRegistrationType parses the case-insensitive wire values accepted by
// NewEvent/UpdateEvent requests.
func ParseRegistrationType(s string) (RegistrationType, bool) {
	switch strings.ToLower(s) {
	case "email":
		return RegistrationEmail, true
	case "telephone":
		return RegistrationPhone, true
	case "homepage":
		return RegistrationHomepage, true
	default:
		return RegistrationNone, false
	}
}

// Event is a time-bounded happening tied (optionally) to a place
// (spec.md §3).
type Event struct {
	ID           ids.ID
	Title        string
	Start        ids.Timestamp
	End          *ids.Timestamp
	Location     *Location
	Contact      *Contact
	Links        *Links
	CreatedBy    *ids.ID
	Tags         []string
	Registration *RegistrationType
	Organizer    string
	ArchivedAt   *ids.Timestamp
}

// Live reports whether the event has not been archived.
func (e Event) Live() bool {
	return e.ArchivedAt == nil
}

// Stripped returns a public-safe projection of e with contact details
// removed, for unauthenticated/unprivileged read paths (recovered from
// the original's strip_event_details use case, see SPEC_FULL.md §D.6).
func (e Event) Stripped() Event {
	stripped := e
	stripped.Contact = nil
	return stripped
}

// HasAnyTag reports whether e carries at least one tag from required, or
// required is empty (spec.md §4.7 delete_with_tag_filter).
func (e Event) HasAnyTag(required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := TagSet(e.Tags)
	for _, t := range required {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
