package recoveries

import (
	"context"

	"github.com/mbayed/filevault/internal/server/models"
)

// Repository persists recovery codes, one row per email.
type Repository interface {
	// Upsert writes the request for its email, replacing any prior row.
	// The UNIQUE(email) constraint keeps at most one active code per email.
	Upsert(ctx context.Context, req *models.RecoveryRequest) error

	// FindActiveForUpdate returns the valid request matching email and
	// code, locking the row until the surrounding transaction ends.
	// No match is ErrNotFound.
	FindActiveForUpdate(ctx context.Context, email string, code string) (*models.RecoveryRequest, error)

	// Consume marks the request invalid. A consumed request never
	// matches FindActiveForUpdate again.
	Consume(ctx context.Context, id string) error
}
