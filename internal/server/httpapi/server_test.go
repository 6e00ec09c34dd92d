package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mbayed/filevault/internal/common"
	"github.com/mbayed/filevault/internal/logging"
	"github.com/mbayed/filevault/internal/server/models"
	"github.com/mbayed/filevault/internal/server/storage"
)

type fakeAuth struct {
	signUpOut *models.User
	signUpErr error

	signInOut string
	signInErr error

	resolveOut *models.User
	resolveErr error

	recoverErr error
	updateErr  error
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpOut, nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (string, error) {
	if f.signInErr != nil {
		return "", f.signInErr
	}
	return f.signInOut, nil
}

func (f *fakeAuth) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.resolveOut, nil
}

func (f *fakeAuth) RequestPasswordRecovery(ctx context.Context, email string) error {
	return f.recoverErr
}

func (f *fakeAuth) UpdatePassword(ctx context.Context, email, code, newPassword string) error {
	return f.updateErr
}

type fakeFiles struct {
	uploadOut *models.File
	uploadErr error

	listOut []*models.File
	listErr error

	getOut *models.File
	getErr error

	downloadObj *storage.Object
	downloadErr error

	renameOut *models.File
	renameErr error

	deleteErr error
}

func (f *fakeFiles) Upload(ctx context.Context, name, content string, owner *models.User) (*models.File, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadOut, nil
}

func (f *fakeFiles) List(ctx context.Context, user *models.User) ([]*models.File, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeFiles) GetByID(ctx context.Context, id string, user *models.User) (*models.File, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeFiles) Download(ctx context.Context, id string, user *models.User) (*models.File, *storage.Object, error) {
	if f.downloadErr != nil {
		return nil, nil, f.downloadErr
	}
	return f.getOut, f.downloadObj, nil
}

func (f *fakeFiles) Rename(ctx context.Context, id, name string, user *models.User) (*models.File, error) {
	if f.renameErr != nil {
		return nil, f.renameErr
	}
	return f.renameOut, nil
}

func (f *fakeFiles) Delete(ctx context.Context, id string, user *models.User) error {
	return f.deleteErr
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

func newTestServer(auth *fakeAuth, files *fakeFiles) *httptest.Server {
	s := &HTTPServer{auth: auth, files: files, logger: nopLogger{}}
	return httptest.NewServer(s.Router())
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name       string
		auth       *fakeAuth
		wantStatus int
	}{
		{"created", &fakeAuth{signUpOut: &models.User{ID: "u-1", Email: "a@x.com", Role: models.RoleUser}}, http.StatusCreated},
		{"duplicate", &fakeAuth{signUpErr: common.ErrEmailConflict}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.auth, &fakeFiles{})
			defer srv.Close()

			resp := doJSON(t, http.MethodPost, srv.URL+"/auth/signup", "",
				map[string]string{"email": "a@x.com", "password": "p"})
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	srv := newTestServer(&fakeAuth{signInOut: "tok-123"}, &fakeFiles{})
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/signin", "",
		map[string]string{"email": "a@x.com", "password": "p"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.AccessToken != "tok-123" {
		t.Errorf("token = %q", out.AccessToken)
	}
}

func TestSignIn_BadCredentials(t *testing.T) {
	srv := newTestServer(&fakeAuth{signInErr: common.ErrUnauthorized}, &fakeFiles{})
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/signin", "",
		map[string]string{"email": "a@x.com", "password": "wrong"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRecoverPassword(t *testing.T) {
	tests := []struct {
		name       string
		auth       *fakeAuth
		wantStatus int
	}{
		{"accepted", &fakeAuth{}, http.StatusNoContent},
		{"unknown email", &fakeAuth{recoverErr: common.ErrNotFound}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.auth, &fakeFiles{})
			defer srv.Close()

			resp := doJSON(t, http.MethodPost, srv.URL+"/auth/recover-password", "",
				map[string]string{"email": "a@x.com"})
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestUpdatePassword(t *testing.T) {
	tests := []struct {
		name       string
		auth       *fakeAuth
		wantStatus int
	}{
		{"updated", &fakeAuth{}, http.StatusNoContent},
		{"invalid code", &fakeAuth{updateErr: common.ErrInvalidCode}, http.StatusBadRequest},
		{"expired code", &fakeAuth{updateErr: common.ErrCodeExpired}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.auth, &fakeFiles{})
			defer srv.Close()

			resp := doJSON(t, http.MethodPost, srv.URL+"/auth/update-password", "",
				map[string]string{"email": "a@x.com", "code": "123456", "password": "new"})
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestFiles_RequireToken(t *testing.T) {
	srv := newTestServer(&fakeAuth{resolveErr: common.ErrUnauthorized}, &fakeFiles{})
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/files", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.StatusCode)
	}

	resp2 := doJSON(t, http.MethodGet, srv.URL+"/files", "garbage", nil)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", resp2.StatusCode)
	}
}

func TestListFiles(t *testing.T) {
	user := &models.User{ID: "u-1", Email: "a@x.com", Role: models.RoleUser}
	files := []*models.File{{ID: "f-1", Name: "doc"}, {ID: "f-2", Name: "pic"}}
	srv := newTestServer(&fakeAuth{resolveOut: user}, &fakeFiles{listOut: files})
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/files", "tok", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out []*models.File
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %d files", len(out))
	}
}

func TestCreateFile(t *testing.T) {
	user := &models.User{ID: "u-1", Role: models.RoleUser}
	created := &models.File{ID: "f-1", Name: "logo", MediaType: "image/png", PublicURL: "http://s3/x.png"}
	srv := newTestServer(&fakeAuth{resolveOut: user}, &fakeFiles{uploadOut: created})
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/files", "tok",
		map[string]string{"name": "logo", "content": "data:image/png;base64,AAAA"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out models.File
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != "f-1" || out.PublicURL != "http://s3/x.png" {
		t.Errorf("created %+v", out)
	}
}

func TestCreateFile_MalformedContent(t *testing.T) {
	user := &models.User{ID: "u-1", Role: models.RoleUser}
	srv := newTestServer(&fakeAuth{resolveOut: user}, &fakeFiles{uploadErr: common.ErrMalformedPayload})
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/files", "tok",
		map[string]string{"name": "x", "content": "junk"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetFile_Errors(t *testing.T) {
	user := &models.User{ID: "u-1", Role: models.RoleUser}
	tests := []struct {
		name       string
		files      *fakeFiles
		wantStatus int
	}{
		{"not found", &fakeFiles{getErr: common.ErrNotFound}, http.StatusNotFound},
		{"forbidden", &fakeFiles{getErr: common.ErrForbidden}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeAuth{resolveOut: user}, tt.files)
			defer srv.Close()

			resp := doJSON(t, http.MethodGet, srv.URL+"/files/f-1", "tok", nil)
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestDownloadFile(t *testing.T) {
	user := &models.User{ID: "u-1", Role: models.RoleUser}
	obj := &storage.Object{Data: []byte{1, 2, 3}, ContentType: "image/png", Length: 3}
	files := &fakeFiles{getOut: &models.File{ID: "f-1"}, downloadObj: obj}
	srv := newTestServer(&fakeAuth{resolveOut: user}, files)
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/files/download/f-1", "tok", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cl := resp.Header.Get("Content-Length"); cl != "3" {
		t.Errorf("Content-Length = %q", cl)
	}
}

func TestDownloadFile_ObjectMissing(t *testing.T) {
	user := &models.User{ID: "u-1", Role: models.RoleUser}
	srv := newTestServer(&fakeAuth{resolveOut: user}, &fakeFiles{downloadErr: common.ErrObjectNotFound})
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/files/download/f-1", "tok", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRenameFile(t *testing.T) {
	user := &models.User{ID: "u-1", Role: models.RoleUser}
	renamed := &models.File{ID: "f-1", Name: "new"}
	srv := newTestServer(&fakeAuth{resolveOut: user}, &fakeFiles{renameOut: renamed})
	defer srv.Close()

	resp := doJSON(t, http.MethodPatch, srv.URL+"/files/f-1", "tok",
		map[string]string{"name": "new"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out models.File
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Name != "new" {
		t.Errorf("name = %q", out.Name)
	}
}

func TestDeleteFile(t *testing.T) {
	user := &models.User{ID: "u-1", Role: models.RoleUser}
	srv := newTestServer(&fakeAuth{resolveOut: user}, &fakeFiles{})
	defer srv.Close()

	resp := doJSON(t, http.MethodDelete, srv.URL+"/files/f-1", "tok", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
