package teachstore

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Repository is the persistence port for users, roles, blobs, categories and
// materials. Implementations return the package sentinel errors for missing
// rows and unique-constraint violations.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListRoles(ctx context.Context) ([]*RoleInfo, error)

	// Blob catalog operations. CreateBlob returns ErrBlobExists when a blob
	// with the same SHA256 is already recorded.
	CreateBlob(ctx context.Context, blob *Blob) error
	GetBlob(ctx context.Context, id uuid.UUID) (*Blob, error)
	GetBlobBySHA256(ctx context.Context, sum string) (*Blob, error)
	DeleteBlob(ctx context.Context, id uuid.UUID) error

	// Category operations. ListCategories returns all nodes in natural
	// order: creation time, then id as tiebreak.
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	// DeleteCategories removes the given nodes in the given order, in one
	// transaction where the backend supports it.
	DeleteCategories(ctx context.Context, ids []uuid.UUID) error

	// Material operations
	CreateMaterial(ctx context.Context, material *Material) error
	GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error)
	UpdateMaterial(ctx context.Context, material *Material) error
	DeleteMaterial(ctx context.Context, id uuid.UUID) error
	ListMaterials(ctx context.Context, filter MaterialFilter) ([]*Material, int, error)
}

// MaterialFilter narrows and pages a material listing. Zero values mean "no
// filter". CategoryIDs matches materials whose category set contains any of
// the given ids.
type MaterialFilter struct {
	DisplayName string
	Description string
	CategoryIDs []uuid.UUID
	Type        MaterialType
	Limit       int
	Offset      int
}

// FileStore is the storage port for blob bytes, keyed by the hash-derived
// relative path.
type FileStore interface {
	// Save writes the full content under key, creating parent directories
	// as needed. A failed Save leaves nothing behind at key.
	Save(ctx context.Context, key string, r io.Reader) error

	// Open returns a reader over the content at key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content at key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether content is present at key.
	Exists(ctx context.Context, key string) (bool, error)
}
