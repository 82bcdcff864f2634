package teachstore

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Service is the application surface of the backend. All mutating operations
// take the acting user explicitly; role policy beyond the transport-level
// route guards (the user-management ownership rules) is re-validated here.
type Service interface {
	// Users and roles
	Authenticate(ctx context.Context, username, password string) (*User, error)
	CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error
	ListUsers(ctx context.Context) ([]*User, error)
	ListRoles(ctx context.Context) ([]*RoleInfo, error)

	// Content store and blob catalog
	StoreBlob(ctx context.Context, actor Actor, req StoreBlobRequest) (*Blob, bool, error)
	GetBlob(ctx context.Context, id uuid.UUID) (*Blob, error)
	OpenBlob(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Blob, error)
	DeleteBlob(ctx context.Context, actor Actor, id uuid.UUID) error

	// Category tree
	ListCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryTree(ctx context.Context) ([]*CategoryNode, error)
	GetCategoryChildren(ctx context.Context, id uuid.UUID) ([]*Category, error)
	GetCategoryDescendants(ctx context.Context, id uuid.UUID) ([]*Category, error)
	CreateCategory(ctx context.Context, actor Actor, req CreateCategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, actor Actor, id uuid.UUID, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, actor Actor, id uuid.UUID, recursive bool) error

	// Material catalog
	ListMaterials(ctx context.Context, req ListMaterialsRequest) (*MaterialPage, error)
	CreateMaterial(ctx context.Context, actor Actor, req CreateMaterialRequest) (*Material, error)
	GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error)
	UpdateMaterial(ctx context.Context, actor Actor, id uuid.UUID, req UpdateMaterialRequest) (*Material, error)
	DeleteMaterial(ctx context.Context, actor Actor, id uuid.UUID) error
	SetMaterialPublish(ctx context.Context, actor Actor, id uuid.UUID, public bool) (*Material, error)
	GetMaterialContent(ctx context.Context, id uuid.UUID) (string, error)
	SaveMaterialContent(ctx context.Context, actor Actor, id uuid.UUID, content string) (*Material, error)
}

type service struct {
	repo  Repository
	files FileStore

	// treeMu serializes category-tree mutations so the cycle check and the
	// write it guards cannot interleave with a concurrent reparent.
	treeMu sync.Mutex
}

// Option configures the service.
type Option func(*service)

// WithRepository sets the metadata repository.
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithFileStore sets the file storage backend.
func WithFileStore(files FileStore) Option {
	return func(s *service) {
		s.files = files
	}
}

// New creates a Service. A repository and a file store are both required.
func New(opts ...Option) (Service, error) {
	s := &service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.repo == nil {
		return nil, errors.New("repository is required")
	}
	if s.files == nil {
		return nil, errors.New("file store is required")
	}
	return s, nil
}
