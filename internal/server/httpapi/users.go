package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dvolkovs/filevault/internal/common"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Missing email")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing password")
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userDoc{ID: user.ID, Email: user.Email})
}

// handleConnect trades Basic credentials for a session token.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	userID, err := s.users.Authenticate(r.Context(), email, password)
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}

	token, err := s.sessions.Create(r.Context(), userID)
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenDoc{Token: token})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(common.TokenHeaderName)
	if err := s.sessions.Destroy(r.Context(), token); err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, userDoc{ID: user.ID, Email: user.Email})
}

// handleStatus probes the session store and the database.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	doc := statusDoc{
		Redis: s.kv.Ping(r.Context()) == nil,
		DB:    s.db.Ping(r.Context()) == nil,
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userCount, fileCount, err := s.users.Stats(r.Context())
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsDoc{Users: userCount, Files: fileCount})
}
