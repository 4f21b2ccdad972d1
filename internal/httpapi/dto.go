package httpapi

import (
	"time"

	"civicmap/internal/entities"
	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/usecases"
)

// placeRequest is the wire shape accepted by POST/PUT /entries.
type placeRequest struct {
	License     string   `json:"license"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Street      string   `json:"street"`
	Zip         string   `json:"zip"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	State       string   `json:"state"`
	Email       string   `json:"email"`
	Telephone   string   `json:"telephone"`
	Homepage    string   `json:"homepage"`
	Image       string   `json:"image"`
	ImageHref   string   `json:"image_href"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories"`
	Version     uint64   `json:"version"`
}

func (req placeRequest) toNewPlaceInput(createdBy *string) usecases.NewPlaceInput {
	return usecases.NewPlaceInput{
		License:     req.License,
		CreatedBy:   createdBy,
		Title:       req.Title,
		Description: req.Description,
		Pos:         geo.Point{Lat: req.Lat, Lng: req.Lng},
		Address:     req.address(),
		Contact:     req.contact(),
		Links:       req.links(),
		Tags:        req.Tags,
		CategoryIDs: req.Categories,
	}
}

func (req placeRequest) address() *entities.Address {
	a := entities.Address{Street: req.Street, Zip: req.Zip, City: req.City, Country: req.Country, State: req.State}
	if a.IsEmpty() {
		return nil
	}
	return &a
}

func (req placeRequest) contact() *entities.Contact {
	c := entities.Contact{Email: req.Email, Phone: req.Telephone}
	if c.IsEmpty() {
		return nil
	}
	return &c
}

func (req placeRequest) links() *entities.Links {
	l := entities.Links{Homepage: req.Homepage, Image: req.Image, ImageHref: req.ImageHref}
	if l.IsEmpty() {
		return nil
	}
	return &l
}

// placeResponse is the wire shape returned for a Place.
type placeResponse struct {
	ID          string   `json:"id"`
	License     string   `json:"license"`
	Version     uint64   `json:"version"`
	Created     int64    `json:"created"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Street      string   `json:"street,omitempty"`
	Zip         string   `json:"zip,omitempty"`
	City        string   `json:"city,omitempty"`
	Country     string   `json:"country,omitempty"`
	State       string   `json:"state,omitempty"`
	Email       string   `json:"email,omitempty"`
	Telephone   string   `json:"telephone,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	Image       string   `json:"image,omitempty"`
	ImageHref   string   `json:"image_href,omitempty"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
	AvgRating   float64  `json:"avg_rating"`
}

func placeToResponse(p entities.Place, avg entities.AverageRatings) placeResponse {
	resp := placeResponse{
		ID: p.ID.String(), License: p.License, Version: uint64(p.Revision),
		Created: p.Created.At.Time().Unix(), Title: p.Title, Description: p.Description,
		Lat: p.Location.Pos.Lat, Lng: p.Location.Pos.Lng, Tags: p.Tags,
		Status: p.CurrentStatus.String(), AvgRating: avg.Total,
	}
	if p.Location.Address != nil {
		resp.Street, resp.Zip, resp.City, resp.Country, resp.State = p.Location.Address.Street, p.Location.Address.Zip, p.Location.Address.City, p.Location.Address.Country, p.Location.Address.State
	}
	if p.Contact != nil {
		resp.Email, resp.Telephone = p.Contact.Email, p.Contact.Phone
	}
	if p.Links != nil {
		resp.Homepage, resp.Image, resp.ImageHref = p.Links.Homepage, p.Links.Image, p.Links.ImageHref
	}
	return resp
}

// eventRequest is the wire shape accepted by POST/PUT /events.
type eventRequest struct {
	Title        string   `json:"title"`
	Start        int64    `json:"start"`
	End          *int64   `json:"end,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Street       string   `json:"street"`
	Zip          string   `json:"zip"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	State        string   `json:"state"`
	Email        string   `json:"email"`
	Telephone    string   `json:"telephone"`
	Homepage     string   `json:"homepage"`
	Tags         []string `json:"tags"`
	Categories   []string `json:"categories"`
	Registration string   `json:"registration"`
	Organizer    string   `json:"organizer"`
	CreatedBy    string   `json:"created_by"`
}

func (req eventRequest) toNewEventInput() usecases.NewEventInput {
	in := usecases.NewEventInput{
		Title: req.Title, Start: ids.FromTime(unixTime(req.Start)),
		Tags: req.Tags, CategoryIDs: req.Categories, Organizer: req.Organizer,
	}
	if req.End != nil {
		end := ids.FromTime(unixTime(*req.End))
		in.End = &end
	}
	if req.Lat != nil && req.Lng != nil {
		pos := geo.Point{Lat: *req.Lat, Lng: *req.Lng}
		in.Pos = &pos
		addr := entities.Address{Street: req.Street, Zip: req.Zip, City: req.City, Country: req.Country, State: req.State}
		if !addr.IsEmpty() {
			in.Address = &addr
		}
	}
	contact := entities.Contact{Email: req.Email, Phone: req.Telephone}
	if !contact.IsEmpty() {
		in.Contact = &contact
	}
	links := entities.Links{Homepage: req.Homepage}
	if !links.IsEmpty() {
		in.Links = &links
	}
	if req.CreatedBy != "" {
		in.CreatedBy = &req.CreatedBy
	}
	if rt, ok := entities.ParseRegistrationType(req.Registration); ok {
		in.Registration = &rt
	}
	return in
}

type eventResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Start        int64    `json:"start"`
	End          *int64   `json:"end,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Tags         []string `json:"tags"`
	Registration string   `json:"registration,omitempty"`
	Organizer    string   `json:"organizer,omitempty"`
	Archived     bool     `json:"archived"`
}

func eventToResponse(e entities.Event) eventResponse {
	resp := eventResponse{
		ID: e.ID.String(), Title: e.Title, Start: e.Start.Time().Unix(),
		Tags: e.Tags, Organizer: e.Organizer, Archived: !e.Live(),
	}
	if e.End != nil {
		end := e.End.Time().Unix()
		resp.End = &end
	}
	if e.Location != nil {
		resp.Lat, resp.Lng = &e.Location.Pos.Lat, &e.Location.Pos.Lng
	}
	if e.Registration != nil {
		resp.Registration = e.Registration.String()
	}
	return resp
}

type ratingRequest struct {
	PlaceID string  `json:"entry_id"`
	Title   string  `json:"title"`
	Value   float64 `json:"value"`
	Context string  `json:"context"`
	Source  string  `json:"source"`
	Comment string  `json:"comment"`
}

func parseRatingContext(s string) entities.RatingContext {
	for _, c := range entities.AllRatingContexts {
		if c.String() == s {
			return c
		}
	}
	return entities.Diversity
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
