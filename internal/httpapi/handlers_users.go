package httpapi

import (
	"encoding/json"
	"net/http"

	"civicmap/internal/usecases"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	username, err := usecases.Login(r.Context(), s.Users.User, req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.setSessionCookie(w, req.Email); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Username string `json:"username"`
	}{Username: username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	if _, err := usecases.Register(r.Context(), s.Users, req.Email, req.Password); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type confirmEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (s *Server) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request body"})
		return
	}
	if err := usecases.ConfirmEmail(r.Context(), s.Users, req.Email, req.Token); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
