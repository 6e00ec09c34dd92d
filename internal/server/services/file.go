// Package services contains server-side business logic. This file implements
// FileService: uploads into the blob store plus the catalog, downloads, and
// the ownership checks guarding every per-file operation.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mbayed/filevault/internal/common"
	"github.com/mbayed/filevault/internal/logging"
	"github.com/mbayed/filevault/internal/server/config"
	"github.com/mbayed/filevault/internal/server/models"
	"github.com/mbayed/filevault/internal/server/payload"
	"github.com/mbayed/filevault/internal/server/repositories/repomanager"
	"github.com/mbayed/filevault/internal/server/storage"
)

// FileService coordinates the blob store and the file catalog. Every
// operation on an existing file authorizes the acting user first: owners
// and admins pass, everyone else gets ErrForbidden.
type FileService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	store        storage.BlobStore
	uploadFolder string
	logger       logging.Logger
}

// NewFileService constructs a FileService over the given store and catalog.
func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store storage.BlobStore, cfg *config.Config, logger logging.Logger) *FileService {
	return &FileService{
		db:           db,
		repomanager:  m,
		store:        store,
		uploadFolder: cfg.S3UploadFolder,
		logger:       logger,
	}
}

// authorize is the single access check for per-file operations.
func (s *FileService) authorize(file *models.File, user *models.User) error {
	if file.OwnerID != user.ID && !user.Role.IsAdmin() {
		return common.ErrForbidden
	}
	return nil
}

// Upload decodes the data-URI content, stores the bytes under a fresh key
// derived from the media subtype, and records the catalog row.
func (s *FileService) Upload(ctx context.Context, name string, content string, owner *models.User) (*models.File, error) {
	p, err := payload.Decode(content)
	if err != nil {
		return nil, err
	}

	key := storage.GenerateKey(s.uploadFolder, p.Extension())

	res, err := s.store.Put(ctx, key, p.Reader(), p.MediaType, p.Size())
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Files(s.db)
	file := &models.File{
		Name:      name,
		Locator:   res.Key,
		MediaType: p.MediaType,
		PublicURL: res.Location,
		OwnerID:   owner.ID,
	}
	created, err := repo.Create(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("error creating catalog entry: %w", err)
	}
	return created, nil
}

// List returns the files visible to user: their own, or every file for
// admins.
func (s *FileService) List(ctx context.Context, user *models.User) ([]*models.File, error) {
	repo := s.repomanager.Files(s.db)
	return repo.ListFor(ctx, user)
}

// GetByID returns one catalog row after the ownership check.
func (s *FileService) GetByID(ctx context.Context, id string, user *models.User) (*models.File, error) {
	repo := s.repomanager.Files(s.db)
	file, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(file, user); err != nil {
		return nil, err
	}
	return file, nil
}

// Download fetches the blob behind a catalog row. The catalog row and the
// ownership check come first; only then is the store consulted.
func (s *FileService) Download(ctx context.Context, id string, user *models.User) (*models.File, *storage.Object, error) {
	file, err := s.GetByID(ctx, id, user)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.store.Get(ctx, file.Locator)
	if err != nil {
		return nil, nil, err
	}
	return file, obj, nil
}

// Rename updates the logical name. The locator never changes.
func (s *FileService) Rename(ctx context.Context, id string, name string, user *models.User) (*models.File, error) {
	file, err := s.GetByID(ctx, id, user)
	if err != nil {
		return nil, err
	}
	repo := s.repomanager.Files(s.db)
	if err := repo.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	file.Name = name
	return file, nil
}

// Delete removes the catalog row, then the blob. A failed blob delete is
// logged and ignored: the row is already gone and the operation succeeded
// from the caller's point of view.
func (s *FileService) Delete(ctx context.Context, id string, user *models.User) error {
	file, err := s.GetByID(ctx, id, user)
	if err != nil {
		return err
	}
	repo := s.repomanager.Files(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, file.Locator); err != nil {
		s.logger.Error(ctx, "error deleting blob", "locator", file.Locator, "error", err)
	}
	return nil
}
