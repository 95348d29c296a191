package files

import (
	"context"

	"github.com/dvolkovs/filevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, node *models.FileNode) (*models.FileNode, error)
	GetByID(ctx context.Context, id string) (*models.FileNode, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.FileNode, error)
	List(ctx context.Context, ownerID string, parent models.ParentRef, page, pageSize int) ([]*models.FileNode, error)
	SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (*models.FileNode, error)
	Count(ctx context.Context) (int64, error)
}
