package teachstore

import (
	"context"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListMaterials returns one page of materials matching the request filters.
func (s *service) ListMaterials(ctx context.Context, req ListMaterialsRequest) (*MaterialPage, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := MaterialFilter{
		DisplayName: req.DisplayName,
		Description: req.Description,
		CategoryIDs: req.CategoryIDs,
		Type:        req.Type,
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	}

	items, total, err := s.repo.ListMaterials(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize

	// A page past the end is clamped to the last page rather than returned
	// empty.
	if len(items) == 0 && total > 0 && page > totalPages {
		page = totalPages
		filter.Offset = (page - 1) * pageSize
		items, total, err = s.repo.ListMaterials(ctx, filter)
		if err != nil {
			return nil, err
		}
	}

	if items == nil {
		items = []*Material{}
	}

	return &MaterialPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}, nil
}

// CreateMaterial creates an uploaded or authored material. Uploaded
// materials store their file through the content store, sharing its
// deduplication; authored materials may seed inline content.
func (s *service) CreateMaterial(ctx context.Context, actor Actor, req CreateMaterialRequest) (*Material, error) {
	if req.DisplayName == "" {
		return nil, invalidInput("display_name is required")
	}
	if len(req.CategoryIDs) == 0 {
		return nil, invalidInput("category_ids is required")
	}
	if !req.Type.Valid() {
		return nil, invalidInput("type must be %q or %q", MaterialUploaded, MaterialAuthored)
	}

	var blobID *uuid.UUID
	if req.Type == MaterialUploaded {
		if req.File == nil {
			return nil, invalidInput("file is required for uploaded materials")
		}
		blob, _, err := s.StoreBlob(ctx, actor, *req.File)
		if err != nil {
			return nil, err
		}
		blobID = &blob.ID
	}

	now := time.Now().UTC()
	material := &Material{
		ID:            uuid.New(),
		DisplayName:   req.DisplayName,
		CategoryIDs:   req.CategoryIDs,
		Type:          req.Type,
		BlobID:        blobID,
		PublishStatus: PublishPrivate,
		Description:   req.Description,
		Cover:         req.Cover,
		CreatedBy:     actor.UserID,
		UpdatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Type == MaterialAuthored {
		material.Content = req.Content
	}

	if err := s.repo.CreateMaterial(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}

// GetMaterial returns one material by id.
func (s *service) GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error) {
	return s.repo.GetMaterial(ctx, id)
}

// UpdateMaterial updates the mutable fields of a material. The type is
// immutable after creation.
func (s *service) UpdateMaterial(ctx context.Context, actor Actor, id uuid.UUID, req UpdateMaterialRequest) (*Material, error) {
	material, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			return nil, invalidInput("display_name must not be empty")
		}
		material.DisplayName = *req.DisplayName
	}
	if req.CategoryIDs != nil {
		material.CategoryIDs = req.CategoryIDs
	}
	if req.Description != nil {
		material.Description = *req.Description
	}
	if req.Cover != nil {
		material.Cover = *req.Cover
	}

	material.UpdatedBy = actor.UserID
	material.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateMaterial(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}

// DeleteMaterial removes the material record only. Its blob, if any, stays
// in the content store: other materials may share it by deduplication.
func (s *service) DeleteMaterial(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.repo.GetMaterial(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteMaterial(ctx, id)
}

// SetMaterialPublish toggles visibility between private and public.
func (s *service) SetMaterialPublish(ctx context.Context, actor Actor, id uuid.UUID, public bool) (*Material, error) {
	material, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}

	material.PublishStatus = PublishPrivate
	if public {
		material.PublishStatus = PublishPublic
	}
	material.UpdatedBy = actor.UserID
	material.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateMaterial(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}

// GetMaterialContent returns the text of a material: the inline content of
// an authored material, or the decoded bytes of an uploaded one. Bytes that
// are not valid UTF-8 are an error, never silently replaced.
func (s *service) GetMaterialContent(ctx context.Context, id uuid.UUID) (string, error) {
	material, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return "", err
	}

	if material.Type == MaterialAuthored {
		return material.Content, nil
	}

	if material.BlobID == nil {
		return "", ErrBlobNotFound
	}
	rc, _, err := s.OpenBlob(ctx, *material.BlobID)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrNotUTF8
	}
	return string(data), nil
}

// SaveMaterialContent replaces the inline content of an authored material.
func (s *service) SaveMaterialContent(ctx context.Context, actor Actor, id uuid.UUID, content string) (*Material, error) {
	material, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if material.Type != MaterialAuthored {
		return nil, ErrNotAuthored
	}

	material.Content = content
	material.UpdatedBy = actor.UserID
	material.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateMaterial(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}
