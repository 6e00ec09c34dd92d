package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbayed/filevault/internal/common"
	"github.com/mbayed/filevault/internal/dbx"
	"github.com/mbayed/filevault/internal/server/models"
)

// PostgresRepository implements the catalog over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (name, locator, media_type, public_url, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		file.Name, file.Locator, file.MediaType, file.PublicURL, file.OwnerID).Scan(&file.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}

	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `
		SELECT id, name, locator, media_type, public_url, owner_id FROM files
		WHERE id = $1
	`

	file := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.Name, &file.Locator, &file.MediaType, &file.PublicURL, &file.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}

	return file, nil
}

// ListFor returns the requester's files, or every file when the requester
// is an admin.
func (r *PostgresRepository) ListFor(ctx context.Context, user *models.User) ([]*models.File, error) {
	query := `SELECT id, name, locator, media_type, public_url, owner_id FROM files`
	args := []any{}

	if !user.Role.IsAdmin() {
		query += ` WHERE owner_id = $1`
		args = append(args, user.ID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.ID, &item.Name, &item.Locator, &item.MediaType, &item.PublicURL, &item.OwnerID); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateName(ctx context.Context, id string, name string) error {
	query := `UPDATE files SET name = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, name)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
