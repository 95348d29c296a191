package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dvolkovs/filevault/internal/common"
	"github.com/dvolkovs/filevault/internal/dbx"
	"github.com/dvolkovs/filevault/internal/server/models"
)

// PostgresRepository implements file-node storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const nodeColumns = `id, user_id, name, type, is_public, parent_id, storage_key, created_at`

func scanNode(row interface{ Scan(...any) error }) (*models.FileNode, error) {
	var (
		node       models.FileNode
		parentID   sql.NullString
		storageKey sql.NullString
	)
	err := row.Scan(&node.ID, &node.OwnerID, &node.Name, &node.Kind,
		&node.IsPublic, &parentID, &storageKey, &node.CreatedAt)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		node.Parent = models.Folder(parentID.String)
	}
	node.StorageKey = storageKey.String
	return &node, nil
}

// parentArg converts a ParentRef to the nullable column value.
func parentArg(p models.ParentRef) any {
	if id, ok := p.FolderID(); ok {
		return id
	}
	return nil
}

// validID filters ids that cannot be uuids before they reach the uuid cast
// in PostgreSQL, so an arbitrary client-supplied id reads as absent rather
// than as a database error.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// Create inserts a node. Kind/parent validation happens in the service
// layer; the database constraints are the last line of defense.
func (r *PostgresRepository) Create(ctx context.Context, node *models.FileNode) (*models.FileNode, error) {
	query :=
		`INSERT INTO files (user_id, name, type, is_public, parent_id, storage_key)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	var storageKey any
	if node.StorageKey != "" {
		storageKey = node.StorageKey
	}

	err := r.db.QueryRowContext(ctx, query,
		node.OwnerID, node.Name, node.Kind, node.IsPublic,
		parentArg(node.Parent), storageKey).Scan(&node.ID, &node.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return node, nil
}

// GetByID returns the node with the given id, or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FileNode, error) {
	if !validID(id) {
		return nil, common.ErrNotFound
	}

	query := `SELECT ` + nodeColumns + ` FROM files WHERE id = $1`

	node, err := scanNode(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return node, nil
}

// GetByIDAndOwner returns the node only when it belongs to ownerID.
func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.FileNode, error) {
	if !validID(id) {
		return nil, common.ErrNotFound
	}

	query := `SELECT ` + nodeColumns + ` FROM files WHERE id = $1 AND user_id = $2`

	node, err := scanNode(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return node, nil
}

// List returns one page of ownerID's nodes under parent, in insertion
// order. Paging is offset-based: page*pageSize rows are skipped.
func (r *PostgresRepository) List(ctx context.Context, ownerID string, parent models.ParentRef, page, pageSize int) ([]*models.FileNode, error) {
	var (
		query string
		args  []any
	)
	if id, ok := parent.FolderID(); ok {
		query = `SELECT ` + nodeColumns + ` FROM files
		 WHERE user_id = $1 AND parent_id = $2
		 ORDER BY created_at, id
		 LIMIT $3 OFFSET $4`
		args = []any{ownerID, id, pageSize, page * pageSize}
	} else {
		query = `SELECT ` + nodeColumns + ` FROM files
		 WHERE user_id = $1 AND parent_id IS NULL
		 ORDER BY created_at, id
		 LIMIT $2 OFFSET $3`
		args = []any{ownerID, pageSize, page * pageSize}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.FileNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetVisibility flips is_public on the node owned by ownerID. The single
// UPDATE is the serialization point for concurrent toggles on one record.
// Returns common.ErrNotFound when no row matches id+owner.
func (r *PostgresRepository) SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (*models.FileNode, error) {
	if !validID(id) {
		return nil, common.ErrNotFound
	}

	query :=
		`UPDATE files SET is_public = $1
		 WHERE id = $2 AND user_id = $3
		 RETURNING ` + nodeColumns

	node, err := scanNode(r.db.QueryRowContext(ctx, query, isPublic, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return node, nil
}

// Count returns the total number of file nodes.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
