package entities

import (
	"civicmap/internal/geo"
	"civicmap/internal/ids"
)

// Address is a free-text postal address. An address with every field empty
// is treated as absent (spec.md §3 Place.location).
type Address struct {
	Street  string
	Zip     string
	City    string
	Country string
	State   string
}

// IsEmpty reports whether every field is blank.
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.Zip == "" && a.City == "" && a.Country == "" && a.State == ""
}

// Location pairs a geographic point with an optional address.
type Location struct {
	Pos     geo.Point
	Address *Address
}

// Contact holds optional reach-out channels.
type Contact struct {
	Email string
	Phone string
}

// IsEmpty reports whether neither channel is set.
func (c Contact) IsEmpty() bool {
	return c.Email == "" && c.Phone == ""
}

// Links holds optional outbound URLs attached to a place or event.
type Links struct {
	Homepage  string
	Image     string
	ImageHref string
}

// IsEmpty reports whether no link is set.
func (l Links) IsEmpty() bool {
	return l.Homepage == "" && l.Image == "" && l.ImageHref == ""
}

// Activity records who did something and when.
type Activity struct {
	At ids.Timestamp
	By *string
}

// NowActivity builds an Activity stamped with the current time.
func NowActivity(by *string) Activity {
	return Activity{At: ids.Now(), By: by}
}
