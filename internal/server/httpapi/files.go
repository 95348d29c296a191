package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/dvolkovs/filevault/internal/server/models"
)

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	var req createFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ownerID := userIDFrom(r.Context())
	parent := models.ParseParentRef(string(req.ParentID))
	kind := models.Kind(req.Type)

	if kind == models.KindFolder {
		node, err := s.files.CreateFolder(r.Context(), ownerID, req.Name, parent, req.IsPublic)
		if err != nil {
			s.writeDomainError(r.Context(), w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newFileDoc(node))
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	node, err := s.files.CreateFile(r.Context(), ownerID, req.Name, kind, parent, data, req.IsPublic)
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFileDoc(node))
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	node, err := s.files.Get(r.Context(), r.PathValue("id"), userIDFrom(r.Context()))
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFileDoc(node))
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	parent := models.ParseParentRef(r.URL.Query().Get("parentId"))

	page := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}

	nodes, err := s.files.List(r.Context(), userIDFrom(r.Context()), parent, page, 0)
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFileDocs(nodes))
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	s.setVisibility(w, r, true)
}

func (s *Server) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	s.setVisibility(w, r, false)
}

func (s *Server) setVisibility(w http.ResponseWriter, r *http.Request, isPublic bool) {
	node, err := s.files.SetVisibility(r.Context(), r.PathValue("id"), userIDFrom(r.Context()), isPublic)
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFileDoc(node))
}

// handleFileData serves raw bytes, optionally a thumbnail via ?size=.
// The route is public; visibility is decided per node, with or without a
// session.
func (s *Server) handleFileData(w http.ResponseWriter, r *http.Request) {
	requesterID, err := s.resolveOptional(r)
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}
	id := r.PathValue("id")

	var (
		data []byte
		node *models.FileNode
	)
	if v := r.URL.Query().Get("size"); v != "" {
		width, convErr := strconv.Atoi(v)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid size")
			return
		}
		data, node, err = s.files.ReadThumbnail(r.Context(), id, width, requesterID)
	} else {
		data, node, err = s.files.ReadContent(r.Context(), id, requesterID)
	}
	if err != nil {
		s.writeDomainError(r.Context(), w, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(node.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
