package teachstore

import (
	"errors"
	"fmt"
)

// Sentinel errors. The API layer maps these to stable HTTP statuses; callers
// test them with errors.Is.
var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrBlobNotFound indicates the blob record is absent, or its stored
	// file is missing on disk.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrCategoryNotFound indicates the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrMaterialNotFound indicates the referenced material does not exist.
	ErrMaterialNotFound = errors.New("material not found")

	// ErrUsernameTaken indicates a unique-constraint violation on username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrBlobExists indicates a unique-constraint violation on the content
	// hash. The blob service resolves it internally by re-reading the
	// winning record; it never reaches API callers.
	ErrBlobExists = errors.New("blob with identical content already exists")

	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrPermissionDenied indicates the actor's role does not permit the
	// operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrCategoryHasChildren indicates a non-recursive delete of a
	// non-childless category.
	ErrCategoryHasChildren = errors.New("category has children")

	// ErrCategoryCycle indicates a reparent that would make a node its own
	// ancestor.
	ErrCategoryCycle = errors.New("reparent would create a cycle")

	// ErrNotAuthored indicates a content-save on a material whose type is
	// not "authored".
	ErrNotAuthored = errors.New("material content is not editable for this type")

	// ErrNotUTF8 indicates stored blob bytes that are not valid text.
	ErrNotUTF8 = errors.New("blob content is not valid UTF-8 text")

	// ErrInvalidInput indicates malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")
)

// StorageError wraps a failed file-store operation with its key and op for
// log context.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
