package teachstore

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the integer role enum carried in JWT claims and on users.
type Role int

// Role constants. The values are stable: they are persisted and embedded in
// issued tokens.
const (
	RoleAdmin   Role = 1
	RoleTeacher Role = 2
	RoleStudent Role = 3
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher || r == RoleStudent
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTeacher:
		return "teacher"
	case RoleStudent:
		return "student"
	default:
		return "unknown"
	}
}

// RoleInfo is a listable role record.
type RoleInfo struct {
	ID          Role   `json:"id"`
	DisplayName string `json:"display_name"`
}

// Actor identifies the authenticated caller of an operation. Every mutating
// operation takes an Actor explicitly; nothing is read from ambient state.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// User is an account that can authenticate and act on the catalog.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	RoleID       Role      `json:"role_id"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Blob is a stored, content-addressed file. SHA256 is the hex digest of the
// full byte content and is unique across all blobs: identical uploads resolve
// to one record and one file on disk.
type Blob struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	Path      string    `json:"path"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	SHA256    string    `json:"sha256"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category is a node in the subject hierarchy. A nil ParentID marks a root.
// The parent chain is acyclic at all times between operations.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	DisplayName string     `json:"display_name"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	UpdatedBy   uuid.UUID  `json:"updated_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CategoryNode is a category with its children attached, as returned by
// GetCategoryTree.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children,omitempty"`
}

// MaterialType distinguishes uploaded-file materials from authored ones.
// The type is immutable after creation.
type MaterialType string

const (
	MaterialUploaded MaterialType = "uploaded"
	MaterialAuthored MaterialType = "authored"
)

// Valid reports whether t is a known material type.
func (t MaterialType) Valid() bool {
	return t == MaterialUploaded || t == MaterialAuthored
}

// PublishStatus is the visibility flag on a material.
type PublishStatus string

const (
	PublishPrivate PublishStatus = "private"
	PublishPublic  PublishStatus = "public"
)

// Material is one piece of teaching content. Uploaded materials reference a
// Blob; authored materials carry inline text content, reachable through the
// content operations only.
type Material struct {
	ID            uuid.UUID     `json:"id"`
	DisplayName   string        `json:"display_name"`
	CategoryIDs   []uuid.UUID   `json:"category_ids"`
	Type          MaterialType  `json:"type"`
	BlobID        *uuid.UUID    `json:"blob_id,omitempty"`
	Content       string        `json:"-"`
	PublishStatus PublishStatus `json:"publish_status"`
	Description   string        `json:"description,omitempty"`
	Cover         string        `json:"cover,omitempty"`
	CreatedBy     uuid.UUID     `json:"created_by"`
	UpdatedBy     uuid.UUID     `json:"updated_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// JoinCategoryIDs renders a category-id set as the comma-delimited scalar it
// is persisted as.
func JoinCategoryIDs(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ",")
}

// SplitCategoryIDs parses a comma-delimited category-id scalar. Empty
// segments are skipped.
func SplitCategoryIDs(s string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MaterialPage is one page of a material listing.
type MaterialPage struct {
	Items      []*Material `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
}
