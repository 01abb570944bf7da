// Package blob abstracts the externally-owned byte storage backing file
// shares. Bytes live under a prefix equal to the owning object's id, so
// deleting the prefix is the cascading-delete contract for every termination
// path (explicit remove, lazy expiration, periodic sweep).
package blob

import (
	"context"
	"io"
)

// Store is the byte-blob collaborator for fileshare objects.
type Store interface {
	// Upload streams one file's bytes to <objectID>/<storedName>.
	Upload(ctx context.Context, objectID, storedName string, body io.Reader) error

	// PresignGet returns a short-lived download URL for one stored file.
	PresignGet(ctx context.Context, objectID, storedName string) (string, error)

	// RemoveAll deletes every blob under the object's prefix. It is
	// idempotent: removing an absent prefix is not an error.
	RemoveAll(ctx context.Context, objectID string) error
}
