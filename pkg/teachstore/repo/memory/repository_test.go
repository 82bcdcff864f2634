package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/teachstore/pkg/teachstore"
	"github.com/edustack/teachstore/pkg/teachstore/repo/memory"
)

func newUser(username string, role teachstore.Role) *teachstore.User {
	now := time.Now().UTC()
	return &teachstore.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		RoleID:       role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newBlob(sum string) *teachstore.Blob {
	now := time.Now().UTC()
	return &teachstore.Blob{
		ID:        uuid.New(),
		FileName:  "file.txt",
		Path:      sum[:2] + "/" + sum + "_file.txt",
		MimeType:  "text/plain",
		SizeBytes: 4,
		SHA256:    sum,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newCategory(name string, parent *uuid.UUID, createdAt time.Time) *teachstore.Category {
	return &teachstore.Category{
		ID:          uuid.New(),
		DisplayName: name,
		ParentID:    parent,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func newMaterial(name string, createdAt time.Time, categories ...uuid.UUID) *teachstore.Material {
	return &teachstore.Material{
		ID:            uuid.New(),
		DisplayName:   name,
		CategoryIDs:   categories,
		Type:          teachstore.MaterialAuthored,
		PublishStatus: teachstore.PublishPrivate,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestUserCRUD(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	user := newUser("alice", teachstore.RoleTeacher)
	require.NoError(t, repo.CreateUser(ctx, user))

	got, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	dup := newUser("alice", teachstore.RoleStudent)
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), teachstore.ErrUsernameTaken)

	require.NoError(t, repo.DeleteUser(ctx, user.ID))
	_, err = repo.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, teachstore.ErrUserNotFound)
	assert.ErrorIs(t, repo.DeleteUser(ctx, user.ID), teachstore.ErrUserNotFound)
}

func TestBlobUniqueBySHA256(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	sum := "aa11bb22cc33dd44ee55ff66aa77bb88cc99dd00ee11ff22aa33bb44cc55dd66"
	blob := newBlob(sum)
	require.NoError(t, repo.CreateBlob(ctx, blob))

	// A second record with the same digest loses the insert.
	rival := newBlob(sum)
	assert.ErrorIs(t, repo.CreateBlob(ctx, rival), teachstore.ErrBlobExists)

	bySum, err := repo.GetBlobBySHA256(ctx, sum)
	require.NoError(t, err)
	assert.Equal(t, blob.ID, bySum.ID)

	require.NoError(t, repo.DeleteBlob(ctx, blob.ID))
	_, err = repo.GetBlobBySHA256(ctx, sum)
	assert.ErrorIs(t, err, teachstore.ErrBlobNotFound)

	// The digest is free again after deletion.
	require.NoError(t, repo.CreateBlob(ctx, rival))
}

func TestCategoryOrderingAndBatchDelete(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	base := time.Now().UTC()
	first := newCategory("first", nil, base)
	second := newCategory("second", nil, base.Add(time.Second))
	third := newCategory("third", &second.ID, base.Add(2*time.Second))

	for _, c := range []*teachstore.Category{third, first, second} {
		require.NoError(t, repo.CreateCategory(ctx, c))
	}

	list, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].DisplayName)
	assert.Equal(t, "second", list[1].DisplayName)
	assert.Equal(t, "third", list[2].DisplayName)

	// Batch delete is all-or-nothing: one unknown id fails the whole call.
	err = repo.DeleteCategories(ctx, []uuid.UUID{third.ID, uuid.New()})
	assert.ErrorIs(t, err, teachstore.ErrCategoryNotFound)
	_, err = repo.GetCategory(ctx, third.ID)
	assert.NoError(t, err)

	require.NoError(t, repo.DeleteCategories(ctx, []uuid.UUID{third.ID, second.ID}))
	_, err = repo.GetCategory(ctx, second.ID)
	assert.ErrorIs(t, err, teachstore.ErrCategoryNotFound)
}

func TestCategoryCopySemantics(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	category := newCategory("immutable", nil, time.Now().UTC())
	require.NoError(t, repo.CreateCategory(ctx, category))

	got, err := repo.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	got.DisplayName = "mutated"

	again, err := repo.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "immutable", again.DisplayName)
}

func TestListMaterialsFiltering(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	mathID := uuid.New()
	artID := uuid.New()
	base := time.Now().UTC()

	older := newMaterial("algebra notes", base, mathID)
	older.Description = "polynomials"
	newer := newMaterial("art history", base.Add(time.Second), artID)
	both := newMaterial("algebra posters", base.Add(2*time.Second), mathID, artID)

	for _, m := range []*teachstore.Material{older, newer, both} {
		require.NoError(t, repo.CreateMaterial(ctx, m))
	}

	// Newest first.
	items, total, err := repo.ListMaterials(ctx, teachstore.MaterialFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, both.ID, items[0].ID)
	assert.Equal(t, older.ID, items[2].ID)

	items, total, err = repo.ListMaterials(ctx, teachstore.MaterialFilter{DisplayName: "algebra"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	items, total, err = repo.ListMaterials(ctx, teachstore.MaterialFilter{Description: "poly"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, older.ID, items[0].ID)

	// Substring matching ignores case.
	items, total, err = repo.ListMaterials(ctx, teachstore.MaterialFilter{DisplayName: "ALGEBRA"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	items, total, err = repo.ListMaterials(ctx, teachstore.MaterialFilter{Description: "Polynomials"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, older.ID, items[0].ID)

	// Any-of semantics over the category set.
	items, total, err = repo.ListMaterials(ctx, teachstore.MaterialFilter{CategoryIDs: []uuid.UUID{artID}})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// Offset and limit slice the matched set; total stays the full count.
	items, total, err = repo.ListMaterials(ctx, teachstore.MaterialFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, newer.ID, items[0].ID)

	items, total, err = repo.ListMaterials(ctx, teachstore.MaterialFilter{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, items)
}

func TestMaterialUpdateMissing(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	phantom := newMaterial("ghost", time.Now().UTC(), uuid.New())
	assert.ErrorIs(t, repo.UpdateMaterial(ctx, phantom), teachstore.ErrMaterialNotFound)
	assert.ErrorIs(t, repo.DeleteMaterial(ctx, phantom.ID), teachstore.ErrMaterialNotFound)
}

func TestListRoles(t *testing.T) {
	repo := memory.New()

	roles, err := repo.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, teachstore.RoleAdmin, roles[0].ID)
	assert.Equal(t, teachstore.RoleStudent, roles[2].ID)
}
