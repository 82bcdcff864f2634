package teachstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ListCategories returns all categories in natural order.
func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

// GetCategory returns one category by id.
func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// GetCategoryTree materializes the forest from a single scan. Nodes whose
// declared parent no longer exists are promoted to roots rather than dropped.
func (s *service) GetCategoryTree(ctx context.Context) ([]*CategoryNode, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &CategoryNode{Category: *c}
	}

	var roots []*CategoryNode
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok {
			// Dangling parent reference: surface the node at top level.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots, nil
}

// GetCategoryChildren returns the direct children of id in natural order.
func (s *service) GetCategoryChildren(ctx context.Context, id uuid.UUID) ([]*Category, error) {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return nil, err
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	var children []*Category
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID == id {
			children = append(children, c)
		}
	}
	return children, nil
}

// GetCategoryDescendants returns every strict descendant of id, breadth
// first: children before grandchildren, natural order within each level.
func (s *service) GetCategoryDescendants(ctx context.Context, id uuid.UUID) ([]*Category, error) {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return nil, err
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return descendantsOf(categories, id), nil
}

// descendantsOf walks an adjacency map built from one node scan instead of
// re-querying per level.
func descendantsOf(categories []*Category, root uuid.UUID) []*Category {
	children := make(map[uuid.UUID][]*Category)
	for _, c := range categories {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	var result []*Category
	queue := []uuid.UUID{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			result = append(result, child)
			queue = append(queue, child.ID)
		}
	}
	return result
}

// CreateCategory creates a root (nil parent) or a child of an existing node.
func (s *service) CreateCategory(ctx context.Context, actor Actor, req CreateCategoryRequest) (*Category, error) {
	if req.DisplayName == "" {
		return nil, invalidInput("display_name is required")
	}
	if req.ParentID != nil {
		if _, err := s.repo.GetCategory(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	category := &Category{
		ID:          uuid.New(),
		DisplayName: req.DisplayName,
		ParentID:    req.ParentID,
		CreatedBy:   actor.UserID,
		UpdatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames and/or reparents a node. Reparenting validates the
// acyclic invariant before the write, under the tree mutation lock so two
// concurrent reparents cannot each pass the check and jointly close a cycle.
func (s *service) UpdateCategory(ctx context.Context, actor Actor, id uuid.UUID, req UpdateCategoryRequest) (*Category, error) {
	s.treeMu.Lock()
	defer s.treeMu.Unlock()

	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			return nil, invalidInput("display_name must not be empty")
		}
		category.DisplayName = *req.DisplayName
	}

	if req.SetParent {
		if req.ParentID != nil {
			if *req.ParentID == id {
				return nil, ErrCategoryCycle
			}
			if _, err := s.repo.GetCategory(ctx, *req.ParentID); err != nil {
				return nil, err
			}

			categories, err := s.repo.ListCategories(ctx)
			if err != nil {
				return nil, err
			}
			for _, desc := range descendantsOf(categories, id) {
				if desc.ID == *req.ParentID {
					return nil, ErrCategoryCycle
				}
			}
		}
		category.ParentID = req.ParentID
	}

	category.UpdatedBy = actor.UserID
	category.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a node. A node with children is only deleted when
// recursive is set, in which case the whole subtree goes bottom-up so no
// delete ever targets a node that still has a surviving child.
func (s *service) DeleteCategory(ctx context.Context, actor Actor, id uuid.UUID, recursive bool) error {
	s.treeMu.Lock()
	defer s.treeMu.Unlock()

	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return err
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return err
	}
	descendants := descendantsOf(categories, id)

	if len(descendants) > 0 && !recursive {
		return ErrCategoryHasChildren
	}

	// Deepest first, then the node itself.
	ids := make([]uuid.UUID, 0, len(descendants)+1)
	for i := len(descendants) - 1; i >= 0; i-- {
		ids = append(ids, descendants[i].ID)
	}
	ids = append(ids, id)

	err = s.repo.DeleteCategories(ctx, ids)
	if err != nil && errors.Is(err, ErrCategoryNotFound) {
		// Raced with another delete of part of the subtree; the end state
		// is what was asked for.
		return nil
	}
	return err
}
