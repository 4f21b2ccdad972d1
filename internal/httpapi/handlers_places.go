package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"civicmap/internal/geo"
	"civicmap/internal/ids"
	"civicmap/internal/metrics"
	"civicmap/internal/ofdberrors"
	"civicmap/internal/searchindex"
	"civicmap/internal/usecases"
)

func (s *Server) handleCreatePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	org, err := s.organizationFromBearer(r.Context(), r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	email, _ := s.sessionEmail(r)
	var createdBy *string
	if email != "" {
		createdBy = &email
	}

	place, err := s.Places.Create(r.Context(), req.toNewPlaceInput(createdBy), org)
	if err != nil {
		metrics.RecordWrite("place", "error")
		s.writeError(w, err)
		return
	}
	metrics.RecordWrite("place", "ok")
	avg, _ := usecases.AverageRatingsForPlace(r.Context(), s.Places.Ratings, place.ID)
	writeJSON(w, http.StatusCreated, placeToResponse(place, avg))
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	id := ids.ID(chi.URLParam(r, "id"))
	place, err := s.PlaceRepo.GetPlace(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	avg, _ := usecases.AverageRatingsForPlace(r.Context(), s.Places.Ratings, id)
	writeJSON(w, http.StatusOK, placeToResponse(place, avg))
}

func (s *Server) handleUpdatePlace(w http.ResponseWriter, r *http.Request) {
	id := ids.ID(chi.URLParam(r, "id"))
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	org, err := s.organizationFromBearer(r.Context(), r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	in := usecases.UpdatePlaceInput{
		NewPlaceInput: req.toNewPlaceInput(nil),
		PlaceID:       id,
		BaseRevision:  ids.Revision(req.Version),
	}
	place, err := s.Places.Update(r.Context(), in, org)
	if err != nil {
		metrics.RecordWrite("place", "error")
		s.writeError(w, err)
		return
	}
	metrics.RecordWrite("place", "ok")
	avg, _ := usecases.AverageRatingsForPlace(r.Context(), s.Places.Ratings, place.ID)
	writeJSON(w, http.StatusOK, placeToResponse(place, avg))
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	pairs, err := usecases.FindAllDuplicates(r.Context(), s.PlaceRepo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	type pairDTO struct {
		First  string `json:"first"`
		Second string `json:"second"`
		Reason string `json:"reason"`
	}
	out := make([]pairDTO, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, pairDTO{First: p.First.String(), Second: p.Second.String(), Reason: p.Reason.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := searchindex.Query{
		Text:       q.Get("text"),
		Categories: splitCSV(q.Get("categories")),
		Tags:       splitCSV(q.Get("tags")),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		query.Limit = limit
	}
	bbox, hasBbox, err := parseBboxParam(q.Get("bbox"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ofdberrors.Bbox.String()})
		return
	}
	if hasBbox {
		extended := searchindex.ExtendedBbox(bbox, 0.1)
		query.Bbox = &extended
	}

	started := time.Now()
	results, err := s.Index.Query(r.Context(), query)
	metrics.ObserveSearch(time.Since(started))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var visible, invisible []searchindex.Entry
	if hasBbox {
		visible, invisible = searchindex.Split(results, &bbox)
	} else {
		visible = results
	}

	type entryDTO struct {
		ID        string  `json:"id"`
		Title     string  `json:"title"`
		Lat       float64 `json:"lat"`
		Lng       float64 `json:"lng"`
		AvgRating float64 `json:"avg_rating"`
	}
	toDTO := func(entries []searchindex.Entry) []entryDTO {
		out := make([]entryDTO, 0, len(entries))
		for _, e := range entries {
			out = append(out, entryDTO{ID: e.ID.String(), Title: e.Title, Lat: e.Pos.Lat, Lng: e.Pos.Lng, AvgRating: e.Ratings.Total})
		}
		return out
	}

	writeJSON(w, http.StatusOK, struct {
		Visible   []entryDTO `json:"visible"`
		Invisible []entryDTO `json:"invisible"`
	}{Visible: toDTO(visible), Invisible: toDTO(invisible)})
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// parseBboxParam parses "sw_lat,sw_lng,ne_lat,ne_lng" (spec.md §6 CSV
// export query param shape, reused for /search).
func parseBboxParam(s string) (geo.Bbox, bool, error) {
	if strings.TrimSpace(s) == "" {
		return geo.Bbox{}, false, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.Bbox{}, false, errBadBbox
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.Bbox{}, false, errBadBbox
		}
		vals[i] = v
	}
	bbox := geo.Bbox{
		SouthWest: geo.Point{Lat: vals[0], Lng: vals[1]},
		NorthEast: geo.Point{Lat: vals[2], Lng: vals[3]},
	}
	if !bbox.Valid() {
		return geo.Bbox{}, false, errBadBbox
	}
	return bbox, true, nil
}

var errBadBbox = ofdberrors.NewParameter(ofdberrors.Bbox)
