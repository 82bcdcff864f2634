package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edustack/teachstore/pkg/teachstore"
)

// BlobHandler handles file upload, preview and deletion.
type BlobHandler struct {
	service   teachstore.Service
	maxUpload int64
}

// NewBlobHandler creates a blob handler. maxUpload caps the request body of
// an upload.
func NewBlobHandler(service teachstore.Service, maxUpload int64) *BlobHandler {
	return &BlobHandler{service: service, maxUpload: maxUpload}
}

// UploadResponse is the response body for an upload.
type UploadResponse struct {
	Blob  *teachstore.Blob `json:"blob"`
	IsNew bool             `json:"is_new"`
}

// Upload stores a multipart file field named "file" through the content
// store. Identical content deduplicates to the existing blob.
func (h *BlobHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, "file field is required and must fit the upload limit")
		return
	}
	defer file.Close()

	blob, isNew, err := h.service.StoreBlob(r.Context(), actorFrom(r), teachstore.StoreBlobRequest{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     file,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	respond(w, r, status, UploadResponse{Blob: blob, IsNew: isNew})
}

// Preview streams the stored bytes with the recorded mime type.
func (h *BlobHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid blob id")
		return
	}

	rc, blob, err := h.service.OpenBlob(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", blob.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", blob.FileName))
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; nothing to do beyond logging.
		slog.Error("blob stream interrupted", "blob_id", id, "err", err)
	}
}

// Delete removes the blob and its stored file.
func (h *BlobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid blob id")
		return
	}

	if err := h.service.DeleteBlob(r.Context(), actorFrom(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "blob deleted")
}
