package httpapi

import (
	"context"
	"net/http"
	"strings"

	"civicmap/internal/authsvc"
	"civicmap/internal/entities"
)

// sessionEmail extracts the signed session cookie's email, if any. Absence
// is not an error: most read routes are anonymous.
func (s *Server) sessionEmail(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(authsvc.SessionCookieName)
	if err != nil {
		return "", false
	}
	value, err := s.Session.Decode(cookie.Value)
	if err != nil {
		return "", false
	}
	return value.UserEmail, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, email string) error {
	encoded, err := s.Session.Encode(authsvc.SessionValue{UserEmail: email})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authsvc.SessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authsvc.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// organizationFromBearer resolves the Authorization: Bearer <api_token>
// header, if present, to an Organization used for owned-tag authorization
// (spec.md §6 "some routes also accept an Authorization: Bearer ... which
// binds writes to an organization").
func (s *Server) organizationFromBearer(ctx context.Context, r *http.Request) (*entities.Organization, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return nil, nil
	}
	org, err := s.Org.GetOrgByAPIToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &org, nil
}
