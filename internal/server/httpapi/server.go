// Package httpapi exposes the service over HTTP: account and session
// endpoints, the file namespace, raw content delivery, and the liveness
// and stats probes. Authentication is an opaque token in the X-Token
// header; GET /connect trades Basic credentials for one.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/dvolkovs/filevault/internal/logging"
	"github.com/dvolkovs/filevault/internal/server/models"
)

// UserService is the account surface the API depends on.
type UserService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Stats(ctx context.Context) (userCount, fileCount int64, err error)
}

// FileService is the namespace surface the API depends on.
type FileService interface {
	CreateFolder(ctx context.Context, ownerID, name string, parent models.ParentRef, isPublic bool) (*models.FileNode, error)
	CreateFile(ctx context.Context, ownerID, name string, kind models.Kind, parent models.ParentRef, data []byte, isPublic bool) (*models.FileNode, error)
	Get(ctx context.Context, id, requesterID string) (*models.FileNode, error)
	List(ctx context.Context, ownerID string, parent models.ParentRef, page, pageSize int) ([]*models.FileNode, error)
	SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (*models.FileNode, error)
	ReadContent(ctx context.Context, id, requesterID string) ([]byte, *models.FileNode, error)
	ReadThumbnail(ctx context.Context, id string, width int, requesterID string) ([]byte, *models.FileNode, error)
}

// SessionManager issues and resolves the tokens behind X-Token.
type SessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

// Pinger is a liveness probe on a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type sqlPinger struct {
	db *sql.DB
}

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// SQLPinger adapts a *sql.DB to the Pinger probe.
func SQLPinger(db *sql.DB) Pinger { return sqlPinger{db: db} }

type Server struct {
	users    UserService
	files    FileService
	sessions SessionManager
	db       Pinger
	kv       Pinger
	logger   logging.Logger
}

func NewServer(users UserService, files FileService, sessions SessionManager, db, kv Pinger, logger logging.Logger) *Server {
	return &Server{
		users:    users,
		files:    files,
		sessions: sessions,
		db:       db,
		kv:       kv,
		logger:   logger.With("module", "httpapi"),
	}
}

// Routes builds the handler tree with logging on every route and token
// authentication where the endpoint requires a user. GET /files/{id}/data
// stays public so published content is reachable without an account.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /status", s.withLogging(s.handleStatus))
	mux.HandleFunc("GET /stats", s.withLogging(s.handleStats))

	mux.HandleFunc("POST /users", s.withLogging(s.handleCreateUser))
	mux.HandleFunc("GET /connect", s.withLogging(s.handleConnect))
	mux.HandleFunc("GET /disconnect", s.withLogging(s.withAuth(s.handleDisconnect)))
	mux.HandleFunc("GET /users/me", s.withLogging(s.withAuth(s.handleMe)))

	mux.HandleFunc("POST /files", s.withLogging(s.withAuth(s.handleCreateFile)))
	mux.HandleFunc("GET /files", s.withLogging(s.withAuth(s.handleListFiles)))
	mux.HandleFunc("GET /files/{id}", s.withLogging(s.withAuth(s.handleGetFile)))
	mux.HandleFunc("PUT /files/{id}/publish", s.withLogging(s.withAuth(s.handlePublish)))
	mux.HandleFunc("PUT /files/{id}/unpublish", s.withLogging(s.withAuth(s.handleUnpublish)))
	mux.HandleFunc("GET /files/{id}/data", s.withLogging(s.handleFileData))

	return mux
}
