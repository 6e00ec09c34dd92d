package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mbayed/filevault/internal/common"
)

type createFileRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type updateFileRequest struct {
	Name string `json:"name"`
}

func (s *HTTPServer) handleListFiles(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	files, err := s.files.List(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *HTTPServer) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	var req createFileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	file, err := s.files.Upload(r.Context(), req.Name, req.Content, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func (s *HTTPServer) handleGetFile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	file, err := s.files.GetByID(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (s *HTTPServer) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	_, obj, err := s.files.Download(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Length, 10))
	_, _ = w.Write(obj.Data)
}

func (s *HTTPServer) handleRenameFile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	var req updateFileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	file, err := s.files.Rename(r.Context(), chi.URLParam(r, "id"), req.Name, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (s *HTTPServer) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	if err := s.files.Delete(r.Context(), chi.URLParam(r, "id"), user); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
