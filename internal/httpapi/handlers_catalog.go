package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"civicmap/internal/usecases"
)

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := usecases.ListTags(r.Context(), s.TagRepo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.ID)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := usecases.ListCategories(r.Context(), s.Category)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	idsParam := chi.URLParam(r, "ids")
	categoryIDs := strings.Split(idsParam, ",")
	categories, err := s.Category.GetCategories(r.Context(), categoryIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCountEntries(w http.ResponseWriter, r *http.Request) {
	places, err := s.PlaceRepo.AllPlaces(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	count := 0
	for _, p := range places {
		if p.CurrentStatus.Counted() {
			count++
		}
	}
	writeJSON(w, http.StatusOK, count)
}

func (s *Server) handleCountTags(w http.ResponseWriter, r *http.Request) {
	tags, err := usecases.ListTags(r.Context(), s.TagRepo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, len(tags))
}
