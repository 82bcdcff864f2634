package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edustack/teachstore/pkg/teachstore"
)

// CategoryHandler handles the category hierarchy.
type CategoryHandler struct {
	service teachstore.Service
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(service teachstore.Service) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// optionalID distinguishes an absent JSON field from an explicit null so a
// category can be reparented to the root level.
type optionalID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	DisplayName string  `json:"display_name"`
	ParentID    *string `json:"parent_id,omitempty"`
}

// UpdateCategoryRequest is the request body for updating a category.
type UpdateCategoryRequest struct {
	DisplayName *string    `json:"display_name"`
	ParentID    optionalID `json:"parent_id"`
}

// List returns all categories in natural order.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if categories == nil {
		categories = []*teachstore.Category{}
	}
	respond(w, r, http.StatusOK, categories)
}

// Tree returns the materialized forest.
func (h *CategoryHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.GetCategoryTree(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if tree == nil {
		tree = []*teachstore.CategoryNode{}
	}
	respond(w, r, http.StatusOK, tree)
}

// Get returns one category.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}
	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, category)
}

// Children returns the direct children of a category.
func (h *CategoryHandler) Children(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}
	children, err := h.service.GetCategoryChildren(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if children == nil {
		children = []*teachstore.Category{}
	}
	respond(w, r, http.StatusOK, children)
}

// Descendants returns every strict descendant, breadth first.
func (h *CategoryHandler) Descendants(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}
	descendants, err := h.service.GetCategoryDescendants(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if descendants == nil {
		descendants = []*teachstore.Category{}
	}
	respond(w, r, http.StatusOK, descendants)
}

// Create creates a root or child category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			respondMessage(w, r, http.StatusBadRequest, "invalid parent_id")
			return
		}
		parentID = &id
	}

	category, err := h.service.CreateCategory(r.Context(), actorFrom(r), teachstore.CreateCategoryRequest{
		DisplayName: req.DisplayName,
		ParentID:    parentID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, category)
}

// Update renames and/or reparents a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), actorFrom(r), id, teachstore.UpdateCategoryRequest{
		DisplayName: req.DisplayName,
		SetParent:   req.ParentID.Set,
		ParentID:    req.ParentID.Value,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, category)
}

// Delete removes a category; `?recursive=true` removes its whole subtree.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}
	recursive := r.URL.Query().Get("recursive") == "true"

	if err := h.service.DeleteCategory(r.Context(), actorFrom(r), id, recursive); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "category deleted")
}

func categoryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, "invalid category id")
		return uuid.Nil, false
	}
	return id, true
}
