package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mbayed/filevault/internal/common"
	"github.com/mbayed/filevault/internal/dbx"
	"github.com/mbayed/filevault/internal/logging"
	"github.com/mbayed/filevault/internal/server/config"
	"github.com/mbayed/filevault/internal/server/mail"
	"github.com/mbayed/filevault/internal/server/models"
	"github.com/mbayed/filevault/internal/server/repositories/repomanager"
)

const (
	recoveryMailSubject    = "Password recovery"
	recoveryMailBodyPrefix = "Your password recovery code is: "
)

// RecoveryService issues single-use password recovery codes and applies
// password updates against them. A code survives until its first validation
// attempt, successful or not, or until a new code replaces it.
type RecoveryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mail.Mailer
	codeMin     int
	codeMax     int
	codeTTL     time.Duration
	logger      logging.Logger
}

// NewRecoveryService constructs a RecoveryService from server config.
func NewRecoveryService(db *sql.DB, m repomanager.RepositoryManager, mailer mail.Mailer, cfg *config.Config, logger logging.Logger) *RecoveryService {
	return &RecoveryService{
		db:          db,
		repomanager: m,
		mailer:      mailer,
		codeMin:     cfg.RecoveryCodeMin,
		codeMax:     cfg.RecoveryCodeMax,
		codeTTL:     cfg.RecoveryCodeTTL,
		logger:      logger,
	}
}

// generateCode returns a uniform random integer in [codeMin, codeMax],
// rendered as a decimal string.
func (s *RecoveryService) generateCode() (string, error) {
	span := int64(s.codeMax-s.codeMin) + 1
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+int64(s.codeMin), 10), nil
}

// RequestCode issues a fresh code for email and mails it. The row for that
// email is overwritten, so at most one code is ever active. A mail failure
// is logged; the code stays issued either way.
func (s *RecoveryService) RequestCode(ctx context.Context, email string) error {
	userRepo := s.repomanager.Users(s.db)
	if _, err := userRepo.GetByEmail(ctx, email); err != nil {
		return err
	}

	code, err := s.generateCode()
	if err != nil {
		return common.ErrInternal
	}

	req := &models.RecoveryRequest{
		Email:      email,
		Code:       code,
		Expiration: time.Now().Add(s.codeTTL),
		Valid:      true,
	}
	recRepo := s.repomanager.Recoveries(s.db)
	if err := recRepo.Upsert(ctx, req); err != nil {
		return fmt.Errorf("error saving recovery code: %w", err)
	}

	if err := s.mailer.Send(ctx, email, recoveryMailSubject, recoveryMailBodyPrefix+code); err != nil {
		s.logger.Error(ctx, "error sending recovery mail", "email", email, "error", err)
	}
	return nil
}

// ValidateAndConsume checks the code for email and, if it is still current,
// replaces the user's password with newPassword. The code is consumed on
// the first attempt whatever the outcome: an expired code is invalidated
// and the attempt fails with ErrCodeExpired, and any retry then fails with
// ErrInvalidCode like an unknown code would.
func (s *RecoveryService) ValidateAndConsume(ctx context.Context, email string, code string, newPassword string) error {
	digest, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrInternal
	}

	expired := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		recRepo := s.repomanager.Recoveries(tx)
		req, err := recRepo.FindActiveForUpdate(ctx, email, code)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidCode
			}
			return err
		}

		if err := recRepo.Consume(ctx, req.ID); err != nil {
			return err
		}

		if time.Now().After(req.Expiration) {
			// Commit the consume anyway; the failure is reported after.
			expired = true
			return nil
		}

		userRepo := s.repomanager.Users(tx)
		user, err := userRepo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		return userRepo.UpdatePassword(ctx, user.ID, string(digest))
	})
	if err != nil {
		return err
	}
	if expired {
		return common.ErrCodeExpired
	}
	return nil
}
