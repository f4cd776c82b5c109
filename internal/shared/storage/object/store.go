package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open and Delete when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	// Save stores r under a fresh key in the user's namespace and reports the detected MIME type.
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	// SaveWithKey stores r at a caller-chosen key, replacing any existing object.
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// SniffLen is how many leading bytes stores read for MIME detection.
const SniffLen = 3072
