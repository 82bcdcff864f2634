// Package memory provides an in-memory teachstore.Repository used by tests
// and the zero-configuration development mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/edustack/teachstore/pkg/teachstore"
)

// Repository implements teachstore.Repository with RWMutex-guarded maps.
// Values are copied on the way in and out so callers can never mutate stored
// state through a returned pointer.
type Repository struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*teachstore.User
	blobs      map[uuid.UUID]*teachstore.Blob
	blobsBySum map[string]uuid.UUID
	categories map[uuid.UUID]*teachstore.Category
	materials  map[uuid.UUID]*teachstore.Material
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{
		users:      make(map[uuid.UUID]*teachstore.User),
		blobs:      make(map[uuid.UUID]*teachstore.Blob),
		blobsBySum: make(map[string]uuid.UUID),
		categories: make(map[uuid.UUID]*teachstore.Category),
		materials:  make(map[uuid.UUID]*teachstore.Material),
	}
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *teachstore.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return teachstore.ErrUsernameTaken
		}
	}

	userCopy := *user
	r.users[user.ID] = &userCopy
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*teachstore.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, teachstore.ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*teachstore.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, teachstore.ErrUserNotFound
}

func (r *Repository) ListUsers(ctx context.Context) ([]*teachstore.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*teachstore.User, 0, len(r.users))
	for _, user := range r.users {
		userCopy := *user
		result = append(result, &userCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return teachstore.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *Repository) ListRoles(ctx context.Context) ([]*teachstore.RoleInfo, error) {
	return []*teachstore.RoleInfo{
		{ID: teachstore.RoleAdmin, DisplayName: "admin"},
		{ID: teachstore.RoleTeacher, DisplayName: "teacher"},
		{ID: teachstore.RoleStudent, DisplayName: "student"},
	}, nil
}

// Blob operations

func (r *Repository) CreateBlob(ctx context.Context, blob *teachstore.Blob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blobsBySum[blob.SHA256]; ok {
		return teachstore.ErrBlobExists
	}

	blobCopy := *blob
	r.blobs[blob.ID] = &blobCopy
	r.blobsBySum[blob.SHA256] = blob.ID
	return nil
}

func (r *Repository) GetBlob(ctx context.Context, id uuid.UUID) (*teachstore.Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blob, ok := r.blobs[id]
	if !ok {
		return nil, teachstore.ErrBlobNotFound
	}
	blobCopy := *blob
	return &blobCopy, nil
}

func (r *Repository) GetBlobBySHA256(ctx context.Context, sum string) (*teachstore.Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.blobsBySum[sum]
	if !ok {
		return nil, teachstore.ErrBlobNotFound
	}
	blobCopy := *r.blobs[id]
	return &blobCopy, nil
}

func (r *Repository) DeleteBlob(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	blob, ok := r.blobs[id]
	if !ok {
		return teachstore.ErrBlobNotFound
	}
	delete(r.blobsBySum, blob.SHA256)
	delete(r.blobs, id)
	return nil
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *teachstore.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	categoryCopy := copyCategory(category)
	r.categories[category.ID] = categoryCopy
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*teachstore.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, teachstore.ErrCategoryNotFound
	}
	return copyCategory(category), nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*teachstore.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*teachstore.Category, 0, len(r.categories))
	for _, category := range r.categories {
		result = append(result, copyCategory(category))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, category *teachstore.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[category.ID]; !ok {
		return teachstore.ErrCategoryNotFound
	}
	r.categories[category.ID] = copyCategory(category)
	return nil
}

func (r *Repository) DeleteCategories(ctx context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.categories[id]; !ok {
			return teachstore.ErrCategoryNotFound
		}
	}
	for _, id := range ids {
		delete(r.categories, id)
	}
	return nil
}

// Material operations

func (r *Repository) CreateMaterial(ctx context.Context, material *teachstore.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.materials[material.ID] = copyMaterial(material)
	return nil
}

func (r *Repository) GetMaterial(ctx context.Context, id uuid.UUID) (*teachstore.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	material, ok := r.materials[id]
	if !ok {
		return nil, teachstore.ErrMaterialNotFound
	}
	return copyMaterial(material), nil
}

func (r *Repository) UpdateMaterial(ctx context.Context, material *teachstore.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.materials[material.ID]; !ok {
		return teachstore.ErrMaterialNotFound
	}
	r.materials[material.ID] = copyMaterial(material)
	return nil
}

func (r *Repository) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.materials[id]; !ok {
		return teachstore.ErrMaterialNotFound
	}
	delete(r.materials, id)
	return nil
}

func (r *Repository) ListMaterials(ctx context.Context, filter teachstore.MaterialFilter) ([]*teachstore.Material, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*teachstore.Material
	for _, material := range r.materials {
		if !materialMatches(material, filter) {
			continue
		}
		matched = append(matched, copyMaterial(material))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return nil, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

// containsFold is a case-insensitive substring match, like SQL ILIKE.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func materialMatches(m *teachstore.Material, filter teachstore.MaterialFilter) bool {
	if filter.DisplayName != "" && !containsFold(m.DisplayName, filter.DisplayName) {
		return false
	}
	if filter.Description != "" && !containsFold(m.Description, filter.Description) {
		return false
	}
	if filter.Type != "" && m.Type != filter.Type {
		return false
	}
	if len(filter.CategoryIDs) > 0 {
		found := false
	outer:
		for _, want := range filter.CategoryIDs {
			for _, have := range m.CategoryIDs {
				if want == have {
					found = true
					break outer
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func copyCategory(c *teachstore.Category) *teachstore.Category {
	categoryCopy := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		categoryCopy.ParentID = &parent
	}
	return &categoryCopy
}

func copyMaterial(m *teachstore.Material) *teachstore.Material {
	materialCopy := *m
	if m.BlobID != nil {
		blobID := *m.BlobID
		materialCopy.BlobID = &blobID
	}
	materialCopy.CategoryIDs = append([]uuid.UUID(nil), m.CategoryIDs...)
	return &materialCopy
}
