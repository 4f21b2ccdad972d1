package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"civicmap/internal/ofdberrors"
)

// writeJSON mirrors the teacher's helper of the same name and shape
// (internal/api/server.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the ofdberrors taxonomy to status codes per spec.md §7's
// table, logging anything that falls through to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if pe, ok := ofdberrors.AsParameter(err); ok {
		status := http.StatusBadRequest
		switch pe.Kind {
		case ofdberrors.Credentials, ofdberrors.Unauthorized:
			status = http.StatusUnauthorized
		case ofdberrors.UserExists:
			status = http.StatusBadRequest
		case ofdberrors.EmailNotConfirmed:
			status = http.StatusForbidden
		case ofdberrors.Forbidden, ofdberrors.OwnedTag:
			status = http.StatusForbidden
		}
		writeJSON(w, status, errorBody{Error: pe.Kind.String()})
		return
	}
	if re, ok := ofdberrors.AsRepo(err); ok {
		if re.Kind == ofdberrors.NotFound {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "NotFound"})
			return
		}
		s.Log.Error("repo error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal"})
		return
	}
	s.Log.Error("internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal"})
}
