package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dvolkovs/filevault/internal/common"
)

type ctxKey int

const userIDKey ctxKey = iota

// userIDFrom returns the authenticated user id, or "" when the request
// is anonymous.
func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs one line per request after the handler returns.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	}
}

// withAuth resolves the X-Token header and stores the user id in the
// request context. Requests without a live session get 401.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(common.TokenHeaderName)

		userID, err := s.sessions.Resolve(r.Context(), token)
		if err != nil {
			s.writeDomainError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// resolveOptional turns X-Token into a user id when a live session
// exists, and an anonymous requester when no token is presented or the
// token is dead. A session-store failure is reported as an error: an
// owner mid-outage must not silently read as anonymous and see 404s on
// their own private files.
func (s *Server) resolveOptional(r *http.Request) (string, error) {
	token := r.Header.Get(common.TokenHeaderName)
	if token == "" {
		return "", nil
	}
	userID, err := s.sessions.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return "", nil
		}
		return "", err
	}
	return userID, nil
}
