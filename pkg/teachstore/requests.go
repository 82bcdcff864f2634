package teachstore

import (
	"io"

	"github.com/google/uuid"
)

// Request DTOs

// StoreBlobRequest carries one upload into the content store.
type StoreBlobRequest struct {
	FileName string
	MimeType string
	Data     io.Reader
}

// CreateUserRequest contains parameters for creating a user.
type CreateUserRequest struct {
	Username string
	Password string
	RoleID   Role
	Avatar   string
}

// CreateCategoryRequest contains parameters for creating a category. A nil
// ParentID creates a root node.
type CreateCategoryRequest struct {
	DisplayName string
	ParentID    *uuid.UUID
}

// UpdateCategoryRequest contains parameters for updating a category. Nil
// pointer fields are left unchanged. SetParent distinguishes "reparent to
// ParentID" (possibly nil, promoting the node to a root) from "leave the
// parent alone".
type UpdateCategoryRequest struct {
	DisplayName *string
	SetParent   bool
	ParentID    *uuid.UUID
}

// CreateMaterialRequest contains parameters for creating a material. File is
// required for MaterialUploaded and ignored otherwise; Content seeds the
// inline text of a MaterialAuthored.
type CreateMaterialRequest struct {
	DisplayName string
	CategoryIDs []uuid.UUID
	Type        MaterialType
	Description string
	Cover       string
	File        *StoreBlobRequest
	Content     string
}

// UpdateMaterialRequest contains parameters for updating a material. Nil
// pointer fields are left unchanged; a non-nil CategoryIDs replaces the set.
type UpdateMaterialRequest struct {
	DisplayName *string
	CategoryIDs []uuid.UUID
	Description *string
	Cover       *string
}

// ListMaterialsRequest pages and filters a material listing. Page starts
// at 1.
type ListMaterialsRequest struct {
	Page        int
	PageSize    int
	DisplayName string
	Description string
	CategoryIDs []uuid.UUID
	Type        MaterialType
}
