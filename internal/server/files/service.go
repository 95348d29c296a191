// Package files implements the hierarchical namespace operations: folder
// and file creation, listing, visibility, and content retrieval. It owns
// the parent-type and storage-key invariants and is the producer side of
// the thumbnail pipeline.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dvolkovs/filevault/internal/common"
	"github.com/dvolkovs/filevault/internal/logging"
	"github.com/dvolkovs/filevault/internal/server/access"
	"github.com/dvolkovs/filevault/internal/server/blob"
	"github.com/dvolkovs/filevault/internal/server/models"
	"github.com/dvolkovs/filevault/internal/server/queue"
	"github.com/dvolkovs/filevault/internal/server/repositories/repomanager"
)

// DefaultPageSize caps one listing page when the caller does not choose.
const DefaultPageSize = 20

type Service struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	blobs  blob.Store
	jobs   queue.Enqueuer
	logger logging.Logger
}

func NewService(db *sql.DB, repos repomanager.RepositoryManager, blobs blob.Store, jobs queue.Enqueuer, logger logging.Logger) *Service {
	return &Service{
		db:     db,
		repos:  repos,
		blobs:  blobs,
		jobs:   jobs,
		logger: logger.With("module", "files"),
	}
}

// validateParent enforces the hierarchy invariant: a non-root parent must
// exist and be a folder.
func (s *Service) validateParent(ctx context.Context, parent models.ParentRef) error {
	id, ok := parent.FolderID()
	if !ok {
		return nil
	}

	node, err := s.repos.Files(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrParentNotFound
		}
		return fmt.Errorf("looking up parent: %w", err)
	}
	if node.Kind != models.KindFolder {
		return common.ErrParentNotAFolder
	}
	return nil
}

// CreateFolder adds a folder node under parent.
func (s *Service) CreateFolder(ctx context.Context, ownerID, name string, parent models.ParentRef, isPublic bool) (*models.FileNode, error) {
	if name == "" {
		return nil, common.ErrMissingName
	}
	if err := s.validateParent(ctx, parent); err != nil {
		return nil, err
	}

	node := &models.FileNode{
		OwnerID:  ownerID,
		Name:     name,
		Kind:     models.KindFolder,
		IsPublic: isPublic,
		Parent:   parent,
	}
	node, err := s.repos.Files(s.db).Create(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("creating folder: %w", err)
	}
	return node, nil
}

// CreateFile stores data in the blob store and adds a file or image node
// pointing at it. Image uploads additionally enqueue a thumbnail job;
// a failed enqueue does not fail the upload.
func (s *Service) CreateFile(ctx context.Context, ownerID, name string, kind models.Kind, parent models.ParentRef, data []byte, isPublic bool) (*models.FileNode, error) {
	if name == "" {
		return nil, common.ErrMissingName
	}
	if !kind.Valid() || !kind.RequiresData() {
		return nil, common.ErrInvalidKind
	}
	if len(data) == 0 {
		return nil, common.ErrMissingData
	}
	if err := s.validateParent(ctx, parent); err != nil {
		return nil, err
	}

	key, err := s.blobs.Write(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("storing blob: %w", err)
	}

	node := &models.FileNode{
		OwnerID:    ownerID,
		Name:       name,
		Kind:       kind,
		IsPublic:   isPublic,
		Parent:     parent,
		StorageKey: key,
	}
	node, err = s.repos.Files(s.db).Create(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	if kind == models.KindImage {
		job := models.ThumbnailJob{FileID: node.ID, UserID: ownerID}
		if err := s.jobs.Enqueue(ctx, job); err != nil {
			s.logger.Error(ctx, "enqueueing thumbnail job failed",
				"file_id", node.ID, "error", err.Error())
		}
	}

	return node, nil
}

// Get returns the node when requesterID may see it. An absent record and
// a record the requester lacks visibility into are both reported as
// common.ErrNotFound so callers cannot probe for existence.
func (s *Service) Get(ctx context.Context, id, requesterID string) (*models.FileNode, error) {
	node, err := s.repos.Files(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(node, requesterID) {
		return nil, common.ErrNotFound
	}
	return node, nil
}

// List returns one page of ownerID's nodes under parent.
func (s *Service) List(ctx context.Context, ownerID string, parent models.ParentRef, page, pageSize int) ([]*models.FileNode, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return s.repos.Files(s.db).List(ctx, ownerID, parent, page, pageSize)
}

// SetVisibility publishes or unpublishes a node. Only the owner can; for
// anyone else the node simply does not exist. Setting the current value
// again is a no-op success.
func (s *Service) SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (*models.FileNode, error) {
	return s.repos.Files(s.db).SetVisibility(ctx, id, ownerID, isPublic)
}

// ReadContent returns the raw bytes of a file or image node. Folders have
// no bytes and report common.ErrNotReadable.
func (s *Service) ReadContent(ctx context.Context, id, requesterID string) ([]byte, *models.FileNode, error) {
	node, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, nil, err
	}
	if node.Kind == models.KindFolder {
		return nil, nil, common.ErrNotReadable
	}

	data, err := s.blobs.Read(ctx, node.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return data, node, nil
}

// ReadThumbnail returns the derived variant of an image node at width.
// Unknown widths read as absent, like a variant that was never generated.
func (s *Service) ReadThumbnail(ctx context.Context, id string, width int, requesterID string) ([]byte, *models.FileNode, error) {
	node, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, nil, err
	}
	if node.Kind == models.KindFolder {
		return nil, nil, common.ErrNotReadable
	}
	if !validWidth(width) {
		return nil, nil, common.ErrNotFound
	}

	data, err := s.blobs.ReadDerived(ctx, node.StorageKey, width)
	if err != nil {
		return nil, nil, err
	}
	return data, node, nil
}

func validWidth(width int) bool {
	for _, w := range models.ThumbnailWidths {
		if w == width {
			return true
		}
	}
	return false
}
