package teachstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/teachstore/pkg/teachstore"
)

func createCategory(t *testing.T, svc teachstore.Service, actor teachstore.Actor, name string, parent *uuid.UUID) *teachstore.Category {
	t.Helper()
	category, err := svc.CreateCategory(context.Background(), actor, teachstore.CreateCategoryRequest{
		DisplayName: name,
		ParentID:    parent,
	})
	require.NoError(t, err)
	return category
}

// buildChain creates A -> B -> C and returns them in order.
func buildChain(t *testing.T, svc teachstore.Service, actor teachstore.Actor) (*teachstore.Category, *teachstore.Category, *teachstore.Category) {
	t.Helper()
	a := createCategory(t, svc, actor, "mathematics", nil)
	b := createCategory(t, svc, actor, "algebra", &a.ID)
	c := createCategory(t, svc, actor, "linear equations", &b.ID)
	return a, b, c
}

func TestCreateCategory(t *testing.T) {
	svc := setupTestService(t)
	actor := teacherActor()

	root := createCategory(t, svc, actor, "sciences", nil)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, actor.UserID, root.CreatedBy)

	child := createCategory(t, svc, actor, "physics", &root.ID)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)
}

func TestCreateCategoryValidation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	actor := teacherActor()

	_, err := svc.CreateCategory(ctx, actor, teachstore.CreateCategoryRequest{})
	assert.ErrorIs(t, err, teachstore.ErrInvalidInput)

	missing := uuid.New()
	_, err = svc.CreateCategory(ctx, actor, teachstore.CreateCategoryRequest{
		DisplayName: "orphan",
		ParentID:    &missing,
	})
	assert.ErrorIs(t, err, teachstore.ErrCategoryNotFound)
}

func TestGetCategoryTree(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	actor := teacherActor()

	a, b, c := buildChain(t, svc, actor)
	other := createCategory(t, svc, actor, "history", nil)

	tree, err := svc.GetCategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)

	assert.Equal(t, a.ID, tree[0].ID)
	assert.Equal(t, other.ID, tree[1].ID)

	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, b.ID, tree[0].Children[0].ID)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, c.ID, tree[0].Children[0].Children[0].ID)
	assert.Empty(t, tree[1].Children)
}

func TestGetCategoryChildrenAndDescendants(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	actor := teacherActor()

	a, b, c := buildChain(t, svc, actor)
	b2 := createCategory(t, svc, actor, "geometry", &a.ID)

	children, err := svc.GetCategoryChildren(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, b.ID, children[0].ID)
	assert.Equal(t, b2.ID, children[1].ID)

	// Breadth first: both children before the grandchild.
	descendants, err := svc.GetCategoryDescendants(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, descendants, 3)
	assert.Equal(t, b.ID, descendants[0].ID)
	assert.Equal(t, b2.ID, descendants[1].ID)
	assert.Equal(t, c.ID, descendants[2].ID)

	leaf, err := svc.GetCategoryDescendants(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, leaf)

	_, err = svc.GetCategoryChildren(ctx, uuid.New())
	assert.ErrorIs(t, err, teachstore.ErrCategoryNotFound)
}

func TestUpdateCategoryRename(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	actor := teacherActor()

	category := createCategory(t, svc, actor, "draft name", nil)

	name := "final name"
	updated, err := svc.UpdateCategory(ctx, actor, category.ID, teachstore.UpdateCategoryRequest{
		DisplayName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "final name", updated.DisplayName)
	assert.Nil(t, updated.ParentID)
}

func TestUpdateCategoryReparent(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	actor := teacherActor()

	a, b, c := buildChain(t, svc, actor)

	// Self-parent closes a trivial cycle.
	_, err := svc.UpdateCategory(ctx, actor, c.ID, teachstore.UpdateCategoryRequest{
		SetParent: true,
		ParentID:  &c.ID,
	})
	assert.ErrorIs(t, err, teachstore.ErrCategoryCycle)

	// Reparenting under one's own descendant closes a longer cycle.
	_, err = svc.UpdateCategory(ctx, actor, a.ID, teachstore.UpdateCategoryRequest{
		SetParent: true,
		ParentID:  &c.ID,
	})
	assert.ErrorIs(t, err, teachstore.ErrCategoryCycle)

	missing := uuid.New()
	_, err = svc.UpdateCategory(ctx, actor, c.ID, teachstore.UpdateCategoryRequest{
		SetParent: true,
		ParentID:  &missing,
	})
	assert.ErrorIs(t, err, teachstore.ErrCategoryNotFound)

	// A valid reparent moves the subtree.
	updated, err := svc.UpdateCategory(ctx, actor, c.ID, teachstore.UpdateCategoryRequest{
		SetParent: true,
		ParentID:  &a.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, a.ID, *updated.ParentID)

	// And promoting to a root clears the parent.
	updated, err = svc.UpdateCategory(ctx, actor, b.ID, teachstore.UpdateCategoryRequest{
		SetParent: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ParentID)
}

func TestDeleteCategoryGuardsChildren(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	actor := teacherActor()

	a, b, _ := buildChain(t, svc, actor)

	err := svc.DeleteCategory(ctx, actor, a.ID, false)
	assert.ErrorIs(t, err, teachstore.ErrCategoryHasChildren)

	// The subtree is untouched after the refusal.
	_, err = svc.GetCategory(ctx, b.ID)
	assert.NoError(t, err)
}

func TestDeleteCategoryRecursive(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	actor := teacherActor()

	a, b, c := buildChain(t, svc, actor)
	other := createCategory(t, svc, actor, "unrelated", nil)

	require.NoError(t, svc.DeleteCategory(ctx, actor, a.ID, true))

	for _, id := range []uuid.UUID{a.ID, b.ID, c.ID} {
		_, err := svc.GetCategory(ctx, id)
		assert.ErrorIs(t, err, teachstore.ErrCategoryNotFound)
	}

	_, err := svc.GetCategory(ctx, other.ID)
	assert.NoError(t, err)
}

func TestDeleteCategoryLeaf(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	actor := teacherActor()

	_, _, c := buildChain(t, svc, actor)

	require.NoError(t, svc.DeleteCategory(ctx, actor, c.ID, false))

	_, err := svc.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, teachstore.ErrCategoryNotFound)
}
