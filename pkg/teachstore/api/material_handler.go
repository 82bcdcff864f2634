package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edustack/teachstore/pkg/teachstore"
)

// MaterialHandler handles the material catalog.
type MaterialHandler struct {
	service   teachstore.Service
	maxUpload int64
}

// NewMaterialHandler creates a material handler. maxUpload caps multipart
// request bodies in bytes.
func NewMaterialHandler(service teachstore.Service, maxUpload int64) *MaterialHandler {
	return &MaterialHandler{service: service, maxUpload: maxUpload}
}

// UpdateMaterialRequest is the request body for updating a material.
type UpdateMaterialRequest struct {
	DisplayName *string  `json:"display_name"`
	CategoryIDs []string `json:"category_ids"`
	Description *string  `json:"description"`
	Cover       *string  `json:"cover"`
}

// PublishRequest toggles a material's visibility.
type PublishRequest struct {
	IsPublish bool `json:"is_publish"`
}

// ContentRequest carries the inline text of an authored material.
type ContentRequest struct {
	Content string `json:"content"`
}

// ContentResponse returns material text.
type ContentResponse struct {
	Content string `json:"content"`
}

// List returns a filtered page of materials.
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := teachstore.ListMaterialsRequest{
		DisplayName: q.Get("display_name"),
		Description: q.Get("description"),
		Type:        teachstore.MaterialType(q.Get("type")),
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondMessage(w, r, http.StatusBadRequest, "invalid page")
			return
		}
		req.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondMessage(w, r, http.StatusBadRequest, "invalid page_size")
			return
		}
		req.PageSize = n
	}
	if v := q.Get("category_ids"); v != "" {
		ids, err := parseIDList(v)
		if err != nil {
			respondMessage(w, r, http.StatusBadRequest, "invalid category_ids")
			return
		}
		req.CategoryIDs = ids
	}

	page, err := h.service.ListMaterials(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, page)
}

// Get returns one material.
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}
	material, err := h.service.GetMaterial(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, material)
}

// Create accepts a multipart form: display_name, category_ids (comma
// separated), type, description, cover, and — for uploaded materials — a
// "file" part, or — for authored ones — a "content" field.
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := teachstore.CreateMaterialRequest{
		DisplayName: r.FormValue("display_name"),
		Type:        teachstore.MaterialType(r.FormValue("type")),
		Description: r.FormValue("description"),
		Cover:       r.FormValue("cover"),
		Content:     r.FormValue("content"),
	}
	if v := r.FormValue("category_ids"); v != "" {
		ids, err := parseIDList(v)
		if err != nil {
			respondMessage(w, r, http.StatusBadRequest, "invalid category_ids")
			return
		}
		req.CategoryIDs = ids
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		req.File = &teachstore.StoreBlobRequest{
			FileName: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     file,
		}
	} else if err != http.ErrMissingFile {
		respondMessage(w, r, http.StatusBadRequest, "invalid file part")
		return
	}

	material, err := h.service.CreateMaterial(r.Context(), actorFrom(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, material)
}

// Update merges the provided fields into a material.
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}

	var req UpdateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	update := teachstore.UpdateMaterialRequest{
		DisplayName: req.DisplayName,
		Description: req.Description,
		Cover:       req.Cover,
	}
	if req.CategoryIDs != nil {
		ids := make([]uuid.UUID, 0, len(req.CategoryIDs))
		for _, raw := range req.CategoryIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				respondMessage(w, r, http.StatusBadRequest, "invalid category_ids")
				return
			}
			ids = append(ids, id)
		}
		update.CategoryIDs = ids
	}

	material, err := h.service.UpdateMaterial(r.Context(), actorFrom(r), id, update)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, material)
}

// Delete removes a material. The referenced blob, if any, is kept.
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteMaterial(r.Context(), actorFrom(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "material deleted")
}

// Publish flips a material between private and public.
func (h *MaterialHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	material, err := h.service.SetMaterialPublish(r.Context(), actorFrom(r), id, req.IsPublish)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, material)
}

// GetContent returns the material text: inline for authored materials, the
// decoded blob bytes for uploaded ones.
func (h *MaterialHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}
	content, err := h.service.GetMaterialContent(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, ContentResponse{Content: content})
}

// SaveContent replaces the inline text of an authored material.
func (h *MaterialHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}

	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	material, err := h.service.SaveMaterialContent(r.Context(), actorFrom(r), id, req.Content)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, material)
}

func materialID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid material id")
		return uuid.Nil, false
	}
	return id, true
}

func parseIDList(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
