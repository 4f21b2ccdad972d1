package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civicmap/internal/ids"
	"civicmap/internal/metrics"
	"civicmap/internal/usecases"
)

func (s *Server) handleCreateRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	in := usecases.NewRatingInput{
		PlaceID: ids.ID(req.PlaceID),
		Title:   req.Title,
		Value:   req.Value,
		Context: parseRatingContext(req.Context),
		Source:  req.Source,
		Comment: req.Comment,
	}
	rating, err := usecases.RatePlace(r.Context(), s.Ratings, in)
	if err != nil {
		metrics.RecordWrite("rating", "error")
		s.writeError(w, err)
		return
	}
	metrics.RecordWrite("rating", "ok")
	writeJSON(w, http.StatusCreated, struct {
		ID      string  `json:"id"`
		PlaceID string  `json:"entry_id"`
		Value   float64 `json:"value"`
	}{ID: rating.ID.String(), PlaceID: rating.PlaceID.String(), Value: rating.Value})
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	id := ids.ID(chi.URLParam(r, "id"))
	ratings, err := s.Ratings.Rating.LoadRatings(r.Context(), []ids.ID{id})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(ratings) == 0 {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NotFound"})
		return
	}
	rating := ratings[0]
	comments, err := s.Ratings.Comment.LoadCommentsOfRating(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	type commentDTO struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	commentDTOs := make([]commentDTO, 0, len(comments))
	for _, c := range comments {
		commentDTOs = append(commentDTOs, commentDTO{ID: c.ID.String(), Text: c.Text})
	}
	writeJSON(w, http.StatusOK, struct {
		ID       string       `json:"id"`
		PlaceID  string       `json:"entry_id"`
		Title    string       `json:"title"`
		Value    float64      `json:"value"`
		Context  string       `json:"context"`
		Source   string       `json:"source"`
		Comments []commentDTO `json:"comments"`
	}{
		ID: rating.ID.String(), PlaceID: rating.PlaceID.String(), Title: rating.Title,
		Value: rating.Value, Context: rating.Context.String(), Source: rating.Source,
		Comments: commentDTOs,
	})
}
