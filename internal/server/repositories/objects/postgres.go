// Package objects provides the PostgreSQL-backed store for sharebin's single
// persisted entity: the typed, schemaless object row. All expiration and
// serialization guarantees of the store live here.
package objects

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/dbx"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// timeNow is a seam for tests that simulate expiry.
var timeNow = time.Now

const (
	queryInsert = `INSERT INTO objects (id, type, data, created_at, expires_at) VALUES ($1, $2, $3, $4, $5);`

	querySelect = `SELECT id, type, data, created_at, expires_at FROM objects WHERE id = $1;`

	// Row lock held until the surrounding transaction commits; serializes
	// every read-modify-write against the same object.
	querySelectForUpdate = `SELECT id, type, data, created_at, expires_at FROM objects WHERE id = $1 FOR UPDATE;`

	queryUpdateData = `UPDATE objects SET data = $2 WHERE id = $1 AND (expires_at IS NULL OR expires_at > $3);`

	queryDelete = `DELETE FROM objects WHERE id = $1;`

	queryDeleteIfExpired = `DELETE FROM objects WHERE id = $1 AND expires_at IS NOT NULL AND expires_at <= $2;`

	queryTakeOnce = `DELETE FROM objects WHERE id = $1 AND type = $2 AND (expires_at IS NULL OR expires_at > $3) RETURNING id, type, data, created_at, expires_at;`

	queryPurgeExpired = `DELETE FROM objects WHERE expires_at IS NOT NULL AND expires_at <= $1 RETURNING id, type;`
)

// PostgresRepository implements Repository over *sql.DB. It holds the full
// handle rather than a dbx.DBTX because UpdateFn opens its own transactions.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository bound to the given database.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanObject(row *sql.Row) (*models.StoredObject, error) {
	var obj models.StoredObject
	var expiresAt sql.NullTime
	if err := row.Scan(&obj.ID, &obj.Type, &obj.Data, &obj.CreatedAt, &expiresAt); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		obj.ExpiresAt = &t
	}
	return &obj, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// Create mints a fresh unguessable id, timestamps the object and persists it.
func (r *PostgresRepository) Create(ctx context.Context, typ models.ObjectType, data json.RawMessage, ttl *time.Duration) (*models.StoredObject, error) {
	id, err := shared.MakeRandString(common.IDBytes)
	if err != nil {
		return nil, fmt.Errorf("id generation error: %w", err)
	}

	now := timeNow().UTC()
	var expiresAt *time.Time
	if ttl != nil {
		t := now.Add(*ttl)
		expiresAt = &t
	}

	return r.insert(ctx, id, typ, data, now, expiresAt)
}

// CreateWithID persists an object under a caller-supplied id. A duplicate id
// surfaces as common.ErrConflict and leaves the existing row unmodified.
func (r *PostgresRepository) CreateWithID(ctx context.Context, id string, typ models.ObjectType, data json.RawMessage, expiresAt *time.Time) (*models.StoredObject, error) {
	if _, err := base64.RawURLEncoding.DecodeString(id); err != nil || id == "" {
		return nil, fmt.Errorf("%w: malformed id", common.ErrInvalidInput)
	}
	return r.insert(ctx, id, typ, data, timeNow().UTC(), expiresAt)
}

func (r *PostgresRepository) insert(ctx context.Context, id string, typ models.ObjectType, data json.RawMessage, createdAt time.Time, expiresAt *time.Time) (*models.StoredObject, error) {
	_, err := r.db.ExecContext(ctx, queryInsert, id, typ, []byte(data), createdAt, nullableTime(expiresAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &models.StoredObject{ID: id, Type: typ, Data: data, CreatedAt: createdAt, ExpiresAt: expiresAt}, nil
}

// Get returns a live object or common.ErrNotFound. An expired row is deleted
// as a side effect and reported as common.ErrExpired, so no caller ever
// observes expired data and owners of external resources can cascade.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.StoredObject, error) {
	obj, err := scanObject(r.db.QueryRowContext(ctx, querySelect, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	now := timeNow().UTC()
	if obj.Expired(now) {
		// The expiry recheck in the WHERE clause makes concurrent lazy
		// deletes and the sweep race harmlessly.
		if _, err := r.db.ExecContext(ctx, queryDeleteIfExpired, id, now); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		return nil, common.ErrExpired
	}

	return obj, nil
}

// Update atomically replaces the data payload of a live row. CreatedAt and
// ExpiresAt are never altered.
func (r *PostgresRepository) Update(ctx context.Context, id string, data json.RawMessage) (*models.StoredObject, error) {
	res, err := r.db.ExecContext(ctx, queryUpdateData, id, []byte(data), timeNow().UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return r.Get(ctx, id)
	case 0:
		return nil, common.ErrNotFound
	default:
		return nil, fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// UpdateFn runs fn against the current payload under a row lock and persists
// the returned replacement, all in one transaction. Errors from fn abort the
// transaction untouched and are returned verbatim, so services can reject
// (capacity exceeded, token mismatch) without losing their error identity.
func (r *PostgresRepository) UpdateFn(ctx context.Context, id string, fn func(obj *models.StoredObject) (json.RawMessage, error)) (*models.StoredObject, error) {
	var updated *models.StoredObject
	var lazilyExpired bool

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		obj, err := scanObject(tx.QueryRowContext(ctx, querySelectForUpdate, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		now := timeNow().UTC()
		if obj.Expired(now) {
			// Returning an error here would roll the lazy delete back, so
			// the expired flag travels outside the transaction instead.
			if _, err := tx.ExecContext(ctx, queryDeleteIfExpired, id, now); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
			lazilyExpired = true
			return nil
		}

		data, err := fn(obj)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, queryUpdateData, id, []byte(data), now); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		obj.Data = data
		updated = obj
		return nil
	})
	if err != nil {
		return nil, err
	}
	if lazilyExpired {
		return nil, common.ErrExpired
	}
	return updated, nil
}

// TakeOnce deletes a live row of the given type and returns it in a single
// statement. Two concurrent callers cannot both receive the object.
func (r *PostgresRepository) TakeOnce(ctx context.Context, id string, typ models.ObjectType) (*models.StoredObject, error) {
	now := timeNow().UTC()
	obj, err := scanObject(r.db.QueryRowContext(ctx, queryTakeOnce, id, typ, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lazy expiration still applies: an expired row that blocked the
			// take is removed here rather than waiting for the sweep.
			res, derr := r.db.ExecContext(ctx, queryDeleteIfExpired, id, now)
			if derr != nil {
				return nil, fmt.Errorf("db error: %w", derr)
			}
			if n, derr := res.RowsAffected(); derr == nil && n > 0 {
				return nil, common.ErrExpired
			}
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return obj, nil
}

// Remove deletes unconditionally and reports whether a row existed.
func (r *PostgresRepository) Remove(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, queryDelete, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// PurgeExpired atomically deletes all rows expired as of now and returns
// their (id, type) pairs for cascading cleanup of external resources.
func (r *PostgresRepository) PurgeExpired(ctx context.Context, now time.Time) ([]models.PurgedObject, error) {
	rows, err := r.db.QueryContext(ctx, queryPurgeExpired, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.PurgedObject
	for rows.Next() {
		var item models.PurgedObject
		if err := rows.Scan(&item.ID, &item.Type); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
