package files

import (
	"context"

	"github.com/mbayed/filevault/internal/server/models"
)

// Repository is the file catalog. It scopes listing by ownership but does
// not authorize anything: per-operation access checks are the file
// service's job.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	ListFor(ctx context.Context, user *models.User) ([]*models.File, error)
	UpdateName(ctx context.Context, id string, name string) error
	Delete(ctx context.Context, id string) error
}
