package httpapi

import (
	"encoding/json"
	"net/http"

	"civicmap/internal/geo"
	"civicmap/internal/usecases"
)

type bboxRequest struct {
	SwLat float64 `json:"sw_lat"`
	SwLng float64 `json:"sw_lng"`
	NeLat float64 `json:"ne_lat"`
	NeLng float64 `json:"ne_lng"`
}

func (s *Server) handleSubscribeToBbox(w http.ResponseWriter, r *http.Request) {
	email, ok := s.sessionEmail(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}
	var req bboxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	bbox := geo.Bbox{
		SouthWest: geo.Point{Lat: req.SwLat, Lng: req.SwLng},
		NorthEast: geo.Point{Lat: req.NeLat, Lng: req.NeLng},
	}
	sub, err := usecases.SubscribeToBbox(r.Context(), s.Subs, email, bbox)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		ID string `json:"id"`
	}{ID: sub.ID.String()})
}

func (s *Server) handleUnsubscribeAll(w http.ResponseWriter, r *http.Request) {
	email, ok := s.sessionEmail(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}
	if err := usecases.UnsubscribeAll(r.Context(), s.Subs, email); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := usecases.ListBboxSubscriptions(r.Context(), s.Subs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	type subDTO struct {
		ID    string  `json:"id"`
		Email string  `json:"user_email"`
		SwLat float64 `json:"sw_lat"`
		SwLng float64 `json:"sw_lng"`
		NeLat float64 `json:"ne_lat"`
		NeLng float64 `json:"ne_lng"`
	}
	out := make([]subDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, subDTO{
			ID: sub.ID.String(), Email: sub.UserEmail,
			SwLat: sub.Bbox.SouthWest.Lat, SwLng: sub.Bbox.SouthWest.Lng,
			NeLat: sub.Bbox.NorthEast.Lat, NeLng: sub.Bbox.NorthEast.Lng,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
