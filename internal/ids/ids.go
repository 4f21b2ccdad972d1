// Package ids holds the opaque identifier, revision, and timestamp
// primitives shared by every entity in internal/entities.
package ids

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID is an opaque, stable identifier. It never changes across revisions of
// the entity it names.
type ID string

// NewID generates a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}

// Empty reports whether id carries no value.
func (id ID) Empty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Revision numbers a place's edit history. Revisions start at 1 and are
// contiguous: the only valid successor of N is N+1.
type Revision uint64

// Next returns the only revision number that may legally follow r.
func (r Revision) Next() Revision {
	return r + 1
}

// Initial is the revision of a place's first stored snapshot.
const Initial Revision = 1

// Timestamp is a point in time held in UTC at full (nanosecond) precision;
// the store persists it as an RFC 3339 string with nanoseconds.
type Timestamp struct {
	t time.Time
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{t: time.Now().UTC()}
}

// FromTime converts a time.Time into a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp{t: t.UTC()}
}

// Time returns the underlying time.Time.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Before reports whether ts happened before other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts.t.Before(other.t)
}

// IsZero reports whether ts was never set.
func (ts Timestamp) IsZero() bool {
	return ts.t.IsZero()
}
