package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// multipartOverhead allows for boundaries and part headers on top of the
// file itself.
const multipartOverhead = 1 << 20

// UploadHandler handles cover image uploads
type UploadHandler struct {
	uploads *catalog.Uploads
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads *catalog.Uploads) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Routes returns the routes mounted at /api/uploads
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	r.Get("/", h.ListUploads)
	r.Get("/{fileName}", h.GetImage)
	r.Delete("/{fileName}", h.DeleteImage)
	return r
}

// Upload stores the multipart field "image" under its content-addressed name
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxSize()+multipartOverhead)

	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, fmt.Errorf("%w: limit is %d bytes", catalog.ErrTooLarge, h.uploads.MaxSize()))
			return
		}
		writeError(w, r, fmt.Errorf("%w: image file is required: %v", catalog.ErrInvalidInput, err))
		return
	}
	defer file.Close()

	name, err := h.uploads.Store(r.Context(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Image uploaded", "file_name", name, "original_name", header.Filename, "size", header.Size)
	created(w, r, location("/api/uploads", name), UploadResponse{IsSuccess: true, FileName: name})
}

// ListUploads returns the recorded uploads, newest first
func (h *UploadHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	photos, err := h.uploads.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, photos)
}

// GetImage streams a stored upload with the content type implied by its
// extension
func (h *UploadHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")
	rc, contentType, err := h.uploads.Retrieve(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	// names are content hashes, so the bytes behind one never change
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if meta, err := h.uploads.Stat(r.Context(), name); err == nil && meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Failed to stream image", "file_name", name, "error", err)
	}
}

// DeleteImage removes a stored upload and its registry entry
func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")
	if err := h.uploads.Remove(r.Context(), name); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Image deleted", "file_name", name)
	w.WriteHeader(http.StatusNoContent)
}
