package services

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mbayed/filevault/internal/common"
	"github.com/mbayed/filevault/internal/dbx"
	"github.com/mbayed/filevault/internal/logging"
	"github.com/mbayed/filevault/internal/server/models"
	filesrepo "github.com/mbayed/filevault/internal/server/repositories/files"
	recoveriesrepo "github.com/mbayed/filevault/internal/server/repositories/recoveries"
	usersrepo "github.com/mbayed/filevault/internal/server/repositories/users"
	"github.com/mbayed/filevault/internal/server/storage"
)

// --- helpers shared by the service tests ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	updatedID     string
	updatedDigest string
	updateErr     error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, digest string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedID = id
	f.updatedDigest = digest
	return nil
}

type fakeFilesRepo struct {
	createOut *models.File
	createErr error

	getOut *models.File
	getErr error

	listOut []*models.File
	listErr error

	renamedID   string
	renamedName string
	renameErr   error

	deletedID string
	deleteErr error
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	out := *file
	out.ID = "f-1"
	return &out, nil
}

func (f *fakeFilesRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeFilesRepo) ListFor(ctx context.Context, user *models.User) ([]*models.File, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeFilesRepo) UpdateName(ctx context.Context, id string, name string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	f.renamedID = id
	f.renamedName = name
	return nil
}

func (f *fakeFilesRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

// fakeRecoveriesRepo is stateful: Consume flips the stored request so a
// second FindActiveForUpdate misses, like the real single-use row would.
type fakeRecoveriesRepo struct {
	stored *models.RecoveryRequest

	upsertErr  error
	findErr    error
	consumeErr error
}

func (f *fakeRecoveriesRepo) Upsert(ctx context.Context, req *models.RecoveryRequest) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	r := *req
	r.ID = "r-1"
	f.stored = &r
	return nil
}

func (f *fakeRecoveriesRepo) FindActiveForUpdate(ctx context.Context, email string, code string) (*models.RecoveryRequest, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.stored == nil || !f.stored.Valid || f.stored.Email != email || f.stored.Code != code {
		return nil, common.ErrNotFound
	}
	r := *f.stored
	return &r, nil
}

func (f *fakeRecoveriesRepo) Consume(ctx context.Context, id string) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	if f.stored != nil && f.stored.ID == id {
		f.stored.Valid = false
	}
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	f *fakeFilesRepo
	r *fakeRecoveriesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error     { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository           { return m.u }
func (m *fakeRepoManager) Files(db dbx.DBTX) filesrepo.Repository           { return m.f }
func (m *fakeRepoManager) Recoveries(db dbx.DBTX) recoveriesrepo.Repository { return m.r }

type fakeBlobStore struct {
	putResult *storage.PutResult
	putErr    error
	putKey    string
	putType   string
	putSize   int64

	getOut *storage.Object
	getErr error

	deletedKey string
	deleteErr  error
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*storage.PutResult, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putKey = key
	f.putType = contentType
	f.putSize = size
	if f.putResult != nil {
		return f.putResult, nil
	}
	return &storage.PutResult{Key: key, Location: "http://127.0.0.1:9000/files/" + key}, nil
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) (*storage.Object, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedKey = key
	return nil
}

type fakeMailer struct {
	to      string
	subject string
	body    string
	err     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.to = to
	f.subject = subject
	f.body = body
	return f.err
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }
