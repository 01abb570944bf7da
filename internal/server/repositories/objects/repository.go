package objects

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/server/models"
)

// Repository is the canonical access path to stored objects. Get performs
// lazy expiration, so no caller may observe an expired row by going through
// this interface.
type Repository interface {
	// Create mints a fresh unguessable id and persists the object. A nil ttl
	// means the object never expires.
	Create(ctx context.Context, typ models.ObjectType, data json.RawMessage, ttl *time.Duration) (*models.StoredObject, error)

	// CreateWithID persists an object under a caller-supplied id, used when
	// external resources are populated under that id before the row exists.
	// Returns common.ErrConflict if the id is already taken.
	CreateWithID(ctx context.Context, id string, typ models.ObjectType, data json.RawMessage, expiresAt *time.Time) (*models.StoredObject, error)

	// Get returns the object or common.ErrNotFound. A row past its expiry is
	// deleted as a side effect of the read and reported as common.ErrExpired
	// (which wraps ErrNotFound). A lazily deleted row never reaches
	// PurgeExpired, so callers owning external resources under the id must
	// cascade on ErrExpired themselves.
	Get(ctx context.Context, id string) (*models.StoredObject, error)

	// Update replaces the data payload of a live row. Id, type and both
	// timestamps are never touched. Returns common.ErrNotFound if the row is
	// absent or expired.
	Update(ctx context.Context, id string, data json.RawMessage) (*models.StoredObject, error)

	// UpdateFn runs a serialized read-modify-write: the row is locked for the
	// duration of fn, so concurrent callers cannot act on stale payloads.
	// fn receives the current object and returns the replacement data.
	UpdateFn(ctx context.Context, id string, fn func(obj *models.StoredObject) (json.RawMessage, error)) (*models.StoredObject, error)

	// TakeOnce atomically deletes a live row of the given type and returns
	// it. At most one of any set of concurrent callers gets the object; the
	// rest get common.ErrNotFound.
	TakeOnce(ctx context.Context, id string, typ models.ObjectType) (*models.StoredObject, error)

	// Remove deletes unconditionally and reports whether a row existed.
	Remove(ctx context.Context, id string) (bool, error)

	// PurgeExpired deletes every row whose expiry is at or before now and
	// returns identifying pairs for cascading external cleanup. Calling it
	// again immediately yields an empty result.
	PurgeExpired(ctx context.Context, now time.Time) ([]models.PurgedObject, error)
}
