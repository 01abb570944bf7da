// Package models defines the persisted object envelope and the per-tool
// payload shapes stored inside it. The store layer treats Data as opaque
// bytes; all payload validation lives in the services that own each type.
package models

import (
	"encoding/json"
	"time"
)

// ObjectType tags which tool owns a stored object. The store never interprets
// it; services check it before unmarshalling Data.
type ObjectType string

const (
	TypeNote      ObjectType = "note"
	TypeSecret    ObjectType = "secret"
	TypePoll      ObjectType = "poll"
	TypeExpense   ObjectType = "expense"
	TypeFileShare ObjectType = "fileshare"
	TypeBringList ObjectType = "bringlist"
)

// StoredObject is the only persisted entity. ID is an unguessable URL-safe
// identifier, immutable once assigned and never reused after deletion.
// ExpiresAt nil means the object never expires; once set it is immutable.
type StoredObject struct {
	ID        string
	Type      ObjectType
	Data      json.RawMessage
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the object is past its expiry at the given instant.
func (o *StoredObject) Expired(now time.Time) bool {
	return o.ExpiresAt != nil && !o.ExpiresAt.After(now)
}

// PurgedObject identifies a row removed by the expiration sweep so callers
// can cascade-delete external resources owned by that object.
type PurgedObject struct {
	ID   string
	Type ObjectType
}
