package httpapi

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"civicmap/internal/ofdberrors"
	"civicmap/internal/repo"
	"civicmap/internal/usecases"
)

func (s *Server) handleServerVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Version string `json:"version"`
	}{Version: Version})
}

// apiDescription is marshaled to YAML by handleServerAPIYAML. Info.Version
// is taken from Version; Paths is written out by hand in the handler and
// does not list the login/logout, user registration, email confirmation or
// /server routes.
type apiDescription struct {
	Openapi string              `yaml:"openapi"`
	Info    apiDescriptionInfo  `yaml:"info"`
	Paths   map[string][]string `yaml:"paths"`
}

type apiDescriptionInfo struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

// handleServerAPIYAML serves a generated OpenAPI-shaped description of the
// route surface, mirroring spec.md §6's GET /server/api.yaml.
func (s *Server) handleServerAPIYAML(w http.ResponseWriter, r *http.Request) {
	doc := apiDescription{
		Openapi: "3.0.0",
		Info:    apiDescriptionInfo{Title: "civic map API", Version: Version},
		Paths: map[string][]string{
			"/entries":                 {"post"},
			"/entries/{id}":            {"get", "put"},
			"/duplicates":              {"get"},
			"/search":                  {"get"},
			"/tags":                    {"get"},
			"/categories":              {"get"},
			"/categories/{ids}":        {"get"},
			"/events":                  {"get", "post"},
			"/events/{id}":             {"get", "put", "delete"},
			"/ratings":                 {"post"},
			"/ratings/{id}":            {"get"},
			"/subscribe-to-bbox":       {"post"},
			"/unsubscribe-all-bboxes":  {"delete"},
			"/bbox-subscriptions":      {"get"},
			"/count/entries":           {"get"},
			"/count/tags":              {"get"},
			"/export/entries.csv":      {"get"},
		},
	}
	body, err := yaml.Marshal(doc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// csvColumns is the fixed column order for GET /export/entries.csv,
// spec.md §6.
var csvColumns = []string{
	"id", "osm_node", "created", "version", "title", "description",
	"lat", "lng", "street", "zip", "city", "country", "homepage",
	"categories", "tags", "license", "avg_rating",
}

func (s *Server) handleExportEntriesCSV(w http.ResponseWriter, r *http.Request) {
	places, err := s.PlaceRepo.AllPlaces(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	bbox, hasBbox, err := parseBboxParam(r.URL.Query().Get("bbox"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ofdberrors.Bbox.String()})
		return
	}

	categoryNames, err := categoryNamesByID(r.Context(), s.Category)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write(csvColumns)
	for _, p := range places {
		if !p.CurrentStatus.Visible() {
			continue
		}
		if hasBbox && !bbox.Contains(p.Location.Pos) {
			continue
		}
		avg, err := usecases.AverageRatingsForPlace(r.Context(), s.Places.Ratings, p.ID)
		if err != nil {
			continue
		}

		var street, zip, city, country string
		if p.Location.Address != nil {
			street, zip, city, country = p.Location.Address.Street, p.Location.Address.Zip, p.Location.Address.City, p.Location.Address.Country
		}
		var homepage string
		if p.Links != nil {
			homepage = p.Links.Homepage
		}

		var categories []string
		for _, tag := range p.Tags {
			if name, ok := categoryNames[tag]; ok {
				categories = append(categories, name)
			}
		}

		record := []string{
			p.ID.String(),
			"", // osm_node: places carry no OSM node id, so this column is always empty
			strconv.FormatInt(p.Created.At.Time().Unix(), 10),
			strconv.FormatUint(uint64(p.Revision), 10),
			p.Title,
			p.Description,
			strconv.FormatFloat(p.Location.Pos.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Location.Pos.Lng, 'f', -1, 64),
			street, zip, city, country, homepage,
			strings.Join(categories, ","),
			strings.Join(p.Tags, ","),
			p.License,
			strconv.FormatFloat(avg.Total, 'f', -1, 64),
		}
		_ = cw.Write(record)
	}
}

// categoryNamesByID maps every known category's ID to its display name, so
// handleExportEntriesCSV can recover the categories folded into a place's
// tags on write (categories are modeled as tags whose ID happens to match a
// Category.ID; see entities.MergeCategoryIDsIntoTags).
func categoryNamesByID(ctx context.Context, categories repo.CategoryRepo) (map[string]string, error) {
	all, err := categories.AllCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(all))
	for _, c := range all {
		names[c.ID] = c.Name
	}
	return names, nil
}
