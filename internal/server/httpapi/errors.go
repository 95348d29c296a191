package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dvolkovs/filevault/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps service errors onto HTTP responses. Anything not
// recognized is logged and reported as a generic 500 so internals never
// leak to clients.
func (s *Server) writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrMissingName):
		writeError(w, http.StatusBadRequest, "Missing name")
	case errors.Is(err, common.ErrInvalidKind):
		writeError(w, http.StatusBadRequest, "Missing type")
	case errors.Is(err, common.ErrMissingData):
		writeError(w, http.StatusBadRequest, "Missing data")
	case errors.Is(err, common.ErrParentNotFound):
		writeError(w, http.StatusBadRequest, "Parent not found")
	case errors.Is(err, common.ErrParentNotAFolder):
		writeError(w, http.StatusBadRequest, "Parent is not a folder")
	case errors.Is(err, common.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, "Already exist")
	case errors.Is(err, common.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, common.ErrNotReadable):
		writeError(w, http.StatusBadRequest, "A folder doesn't have content")
	case errors.Is(err, common.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		s.logger.Error(ctx, "request failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
