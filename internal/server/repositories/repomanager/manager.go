// Package repomanager wires repository constructors to a concrete database
// backend and owns schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sharebin/internal/server/repositories/objects"
)

// RepositoryManager vends repository implementations and exposes a schema
// migration hook.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Objects(db *sql.DB) objects.Repository
}
