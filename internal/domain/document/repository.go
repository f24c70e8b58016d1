package document

import (
	"context"
	"io"
)

type Repository interface {
	Save(ctx context.Context, d *Document) (*Document, error)

	FindByID(ctx context.Context, id string) (*Document, error)

	FindByApplicationID(ctx context.Context, applicationID string) ([]*Document, error)

	Update(ctx context.Context, d *Document) (*Document, error)

	Delete(ctx context.Context, id string) error
}

// BlobStore is the file-storage collaborator. Paths returned by Save are
// opaque to the domain; they are only ever handed back to the same store.
type BlobStore interface {
	Save(ctx context.Context, subdir, filename string, contents io.Reader) (path string, size int64, err error)

	Delete(ctx context.Context, path string) error
}
