// Package geocode declares the OSM-based geocoding gateway contract
// (spec.md §1 "out of scope: OSM-based geocoding"; §9 "Global state": a
// process-wide singleton injected into flows) and a stub implementation
// used outside of a real deployment.
package geocode

import (
	"context"
	"errors"

	"civicmap/internal/geo"
)

// ErrNoMatch is returned when an address resolves to nothing.
var ErrNoMatch = errors.New("geocode: no match")

// Gateway resolves a postal address to coordinates. The fix-event-address-
// location CLI verb (spec.md §6) is its only caller in this repo; real
// deployments back it with an OSM lookup.
type Gateway interface {
	Resolve(ctx context.Context, street, zip, city, country string) (geo.Point, error)
}

// Stub never finds a match; it exists so the CLI verb and its flow compile
// and can be exercised in tests without network access.
type Stub struct{}

func (Stub) Resolve(ctx context.Context, street, zip, city, country string) (geo.Point, error) {
	return geo.Point{}, ErrNoMatch
}
