package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mbayed/filevault/internal/common"
	"github.com/mbayed/filevault/internal/server/auth"
	"github.com/mbayed/filevault/internal/server/config"
	"github.com/mbayed/filevault/internal/server/models"
	"github.com/mbayed/filevault/internal/server/repositories/repomanager"
)

// AuthService handles account creation, credential verification, and token
// issuance. Password recovery is delegated to RecoveryService.
type AuthService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	recovery              *RecoveryService
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server
// config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, recovery *RecoveryService, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                    db,
		repomanager:           m,
		recovery:              recovery,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// SignUp creates a new account with a bcrypt digest of password. A taken
// email yields ErrEmailConflict.
func (s *AuthService) SignUp(ctx context.Context, email string, password string) (*models.User, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{
		Email:          email,
		PasswordDigest: string(digest),
		Role:           models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// SignIn verifies the credentials and mints a bearer token carrying the
// email. An unknown email and a wrong password are indistinguishable to the
// caller; both are ErrUnauthorized.
func (s *AuthService) SignIn(ctx context.Context, email string, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", common.ErrInternal
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordDigest), []byte(password)) != nil {
		return "", common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.Email, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}

// ResolveToken verifies a bearer token and loads the account it names.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	email, err := auth.GetEmailFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// RequestPasswordRecovery issues a recovery code for email.
func (s *AuthService) RequestPasswordRecovery(ctx context.Context, email string) error {
	return s.recovery.RequestCode(ctx, email)
}

// UpdatePassword validates a recovery code and sets the new password.
func (s *AuthService) UpdatePassword(ctx context.Context, email string, code string, newPassword string) error {
	return s.recovery.ValidateAndConsume(ctx, email, code, newPassword)
}
