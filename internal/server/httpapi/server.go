// Package httpapi exposes the REST surface: credential endpoints under
// /auth and the file catalog under /files, behind bearer-token auth.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mbayed/filevault/internal/logging"
	"github.com/mbayed/filevault/internal/server/models"
	"github.com/mbayed/filevault/internal/server/services"
	"github.com/mbayed/filevault/internal/server/storage"
)

// authService is the slice of AuthService the HTTP layer uses.
type authService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	ResolveToken(ctx context.Context, token string) (*models.User, error)
	RequestPasswordRecovery(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, code, newPassword string) error
}

// fileService is the slice of FileService the HTTP layer uses.
type fileService interface {
	Upload(ctx context.Context, name, content string, owner *models.User) (*models.File, error)
	List(ctx context.Context, user *models.User) ([]*models.File, error)
	GetByID(ctx context.Context, id string, user *models.User) (*models.File, error)
	Download(ctx context.Context, id string, user *models.User) (*models.File, *storage.Object, error)
	Rename(ctx context.Context, id, name string, user *models.User) (*models.File, error)
	Delete(ctx context.Context, id string, user *models.User) error
}

type HTTPServer struct {
	address string
	auth    authService
	files   fileService
	logger  logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, as *services.AuthService, fs *services.FileService) *HTTPServer {
	return &HTTPServer{
		address: address,
		auth:    as,
		files:   fs,
		logger:  l.With("module", "http_server"),
	}
}

// Router builds the route tree. The /files subtree requires a bearer token;
// /auth is open.
func (s *HTTPServer) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignUp)
		r.Post("/signin", s.handleSignIn)
		r.Post("/recover-password", s.handleRecoverPassword)
		r.Post("/update-password", s.handleUpdatePassword)
	})

	r.Route("/files", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/", s.handleListFiles)
		r.Post("/", s.handleCreateFile)
		r.Get("/download/{id}", s.handleDownloadFile)
		r.Get("/{id}", s.handleGetFile)
		r.Patch("/{id}", s.handleRenameFile)
		r.Delete("/{id}", s.handleDeleteFile)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
