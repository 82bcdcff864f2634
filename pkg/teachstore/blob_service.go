package teachstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"mime"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// blobKey derives the storage key for a content hash: the first two hex
// characters shard the upload root so no single directory accumulates every
// file, and the sanitized original name is kept as a suffix for operators
// browsing the tree.
func blobKey(sum, fileName string) string {
	return path.Join(sum[:2], sum+"_"+fileName)
}

// StoreBlob deduplicates the upload by content hash. The boolean result is
// true when a new blob record (and file) was created, false when the bytes
// were already stored.
func (s *service) StoreBlob(ctx context.Context, actor Actor, req StoreBlobRequest) (*Blob, bool, error) {
	if req.Data == nil {
		return nil, false, invalidInput("file data is required")
	}

	data, err := io.ReadAll(req.Data)
	if err != nil {
		return nil, false, err
	}

	sum := sha256.Sum256(data)
	hexSum := hex.EncodeToString(sum[:])

	existing, err := s.repo.GetBlobBySHA256(ctx, hexSum)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrBlobNotFound) {
		return nil, false, err
	}

	fileName := SanitizeFileName(req.FileName)
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(fileName))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	key := blobKey(hexSum, fileName)
	if err := s.files.Save(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, false, &StorageError{Op: "save", Key: key, Err: err}
	}

	now := time.Now().UTC()
	blob := &Blob{
		ID:        uuid.New(),
		FileName:  fileName,
		Path:      key,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		SHA256:    hexSum,
		CreatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateBlob(ctx, blob); err != nil {
		if errors.Is(err, ErrBlobExists) {
			// A concurrent identical upload won the insert. Re-read the
			// winning record and drop our copy unless both landed on the
			// same key.
			winner, lookupErr := s.repo.GetBlobBySHA256(ctx, hexSum)
			if lookupErr == nil {
				if winner.Path != key {
					_ = s.files.Delete(ctx, key)
				}
				return winner, false, nil
			}
			err = lookupErr
		}
		// The catalog insert failed after the file was written; remove the
		// file so nothing orphaned is left behind.
		_ = s.files.Delete(ctx, key)
		return nil, false, err
	}

	return blob, true, nil
}

// GetBlob returns the catalog record for id.
func (s *service) GetBlob(ctx context.Context, id uuid.UUID) (*Blob, error) {
	return s.repo.GetBlob(ctx, id)
}

// OpenBlob returns a reader over the stored bytes together with the catalog
// record. A catalog row whose file is missing on disk reads as not-found:
// the inconsistency is recoverable, not fatal.
func (s *service) OpenBlob(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Blob, error) {
	blob, err := s.repo.GetBlob(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.files.Exists(ctx, blob.Path)
	if err != nil {
		return nil, nil, &StorageError{Op: "stat", Key: blob.Path, Err: err}
	}
	if !ok {
		return nil, nil, ErrBlobNotFound
	}

	rc, err := s.files.Open(ctx, blob.Path)
	if err != nil {
		return nil, nil, &StorageError{Op: "open", Key: blob.Path, Err: err}
	}
	return rc, blob, nil
}

// DeleteBlob removes the stored file, then the catalog record. An already
// absent file is tolerated. Materials referencing the blob are not touched;
// keeping those references valid is the caller's responsibility.
func (s *service) DeleteBlob(ctx context.Context, actor Actor, id uuid.UUID) error {
	blob, err := s.repo.GetBlob(ctx, id)
	if err != nil {
		return err
	}

	if err := s.files.Delete(ctx, blob.Path); err != nil {
		return &StorageError{Op: "delete", Key: blob.Path, Err: err}
	}

	return s.repo.DeleteBlob(ctx, id)
}
