package recoveries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbayed/filevault/internal/common"
	"github.com/mbayed/filevault/internal/dbx"
	"github.com/mbayed/filevault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, req *models.RecoveryRequest) error {
	query := `
		INSERT INTO recovery_requests (email, code, expiration, valid)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email)
		DO UPDATE SET
			code = EXCLUDED.code,
			expiration = EXCLUDED.expiration,
			valid = EXCLUDED.valid
	`

	_, err := r.db.ExecContext(ctx, query, req.Email, req.Code, req.Expiration, req.Valid)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindActiveForUpdate locks the matching row (FOR UPDATE) so a concurrent
// reissue or a second validation attempt for the same email serializes
// behind this transaction.
func (r *PostgresRepository) FindActiveForUpdate(ctx context.Context, email string, code string) (*models.RecoveryRequest, error) {
	query := `
		SELECT id, email, code, expiration, valid FROM recovery_requests
		WHERE email = $1 AND code = $2 AND valid
		FOR UPDATE
	`

	req := &models.RecoveryRequest{}
	err := r.db.QueryRowContext(ctx, query, email, code).Scan(
		&req.ID, &req.Email, &req.Code, &req.Expiration, &req.Valid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return req, nil
}

func (r *PostgresRepository) Consume(ctx context.Context, id string) error {
	query := `UPDATE recovery_requests SET valid = false WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}
