package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"civicmap/internal/ids"
	"civicmap/internal/metrics"
	"civicmap/internal/usecases"
)

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	org, err := s.organizationFromBearer(r.Context(), r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	event, err := s.Events.Create(r.Context(), req.toNewEventInput(), org)
	if err != nil {
		metrics.RecordWrite("event", "error")
		s.writeError(w, err)
		return
	}
	metrics.RecordWrite("event", "ok")
	writeJSON(w, http.StatusCreated, eventToResponse(event))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := ids.ID(chi.URLParam(r, "id"))
	event, err := s.Events.Repos.Event.GetEvent(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, authenticated := s.sessionEmail(r); !authenticated {
		event = event.Stripped()
	}
	writeJSON(w, http.StatusOK, eventToResponse(event))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := ids.ID(chi.URLParam(r, "id"))
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	org, err := s.organizationFromBearer(r.Context(), r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	event, err := s.Events.Update(r.Context(), id, req.toNewEventInput(), org)
	if err != nil {
		metrics.RecordWrite("event", "error")
		s.writeError(w, err)
		return
	}
	metrics.RecordWrite("event", "ok")
	writeJSON(w, http.StatusOK, eventToResponse(event))
}

// handleDeleteEvent implements delete_with_tag_filter (spec.md §4.7): an
// optional ?tag= repeated query param restricts deletion to events
// carrying at least one of the listed tags.
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := ids.ID(chi.URLParam(r, "id"))
	requiredTags := r.URL.Query()["tag"]
	ok, err := usecases.DeleteEventWithTagFilter(r.Context(), s.Events.Repos.Event, id, requiredTags)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NotFound"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQueryEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := usecases.EventQuery{
		Text: q.Get("text"),
		Tags: splitCSV(q.Get("tags")),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		query.Limit = limit
	}
	if bbox, hasBbox, err := parseBboxParam(q.Get("bbox")); err == nil && hasBbox {
		b := bbox
		query.Bbox = &b
	}
	if createdBy := q.Get("created_by"); createdBy != "" {
		id := ids.ID(createdBy)
		query.CreatedBy = &id
	}
	if after, err := strconv.ParseInt(q.Get("starts_after"), 10, 64); err == nil {
		ts := ids.FromTime(unixTime(after))
		query.StartsAfter = &ts
	}
	if before, err := strconv.ParseInt(q.Get("starts_before"), 10, 64); err == nil {
		ts := ids.FromTime(unixTime(before))
		query.StartsBefore = &ts
	}

	events, err := usecases.QueryEvents(r.Context(), s.Events.Repos.Event, query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	_, authenticated := s.sessionEmail(r)
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		if !authenticated {
			e = e.Stripped()
		}
		out = append(out, eventToResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}
