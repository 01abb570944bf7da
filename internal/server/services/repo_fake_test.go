package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
)

// fakeRepo is an in-memory objects.Repository honoring the store's
// semantics: lazy expiration on read, mutex-serialized UpdateFn, atomic
// TakeOnce. The mutex makes the concurrency-sensitive service invariants
// (capacity, reveal-once) testable without a database.
type fakeRepo struct {
	mu   sync.Mutex
	seq  int
	now  func() time.Time
	objs map[string]*models.StoredObject

	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{now: time.Now, objs: make(map[string]*models.StoredObject)}
}

func (r *fakeRepo) clone(obj *models.StoredObject) *models.StoredObject {
	cp := *obj
	cp.Data = append(json.RawMessage(nil), obj.Data...)
	return &cp
}

func (r *fakeRepo) Create(ctx context.Context, typ models.ObjectType, data json.RawMessage, ttl *time.Duration) (*models.StoredObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.seq++
	id := fmt.Sprintf("obj-%d", r.seq)
	now := r.now().UTC()
	obj := &models.StoredObject{ID: id, Type: typ, Data: data, CreatedAt: now}
	if ttl != nil {
		t := now.Add(*ttl)
		obj.ExpiresAt = &t
	}
	r.objs[id] = obj
	return r.clone(obj), nil
}

func (r *fakeRepo) CreateWithID(ctx context.Context, id string, typ models.ObjectType, data json.RawMessage, expiresAt *time.Time) (*models.StoredObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if _, exists := r.objs[id]; exists {
		return nil, common.ErrConflict
	}
	obj := &models.StoredObject{ID: id, Type: typ, Data: data, CreatedAt: r.now().UTC(), ExpiresAt: expiresAt}
	r.objs[id] = obj
	return r.clone(obj), nil
}

func (r *fakeRepo) getLocked(id string) (*models.StoredObject, error) {
	obj, ok := r.objs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if obj.Expired(r.now().UTC()) {
		delete(r.objs, id)
		return nil, common.ErrExpired
	}
	return obj, nil
}

func (r *fakeRepo) Get(ctx context.Context, id string) (*models.StoredObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, err := r.getLocked(id)
	if err != nil {
		return nil, err
	}
	return r.clone(obj), nil
}

func (r *fakeRepo) Update(ctx context.Context, id string, data json.RawMessage) (*models.StoredObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, err := r.getLocked(id)
	if err != nil {
		return nil, err
	}
	obj.Data = append(json.RawMessage(nil), data...)
	return r.clone(obj), nil
}

func (r *fakeRepo) UpdateFn(ctx context.Context, id string, fn func(obj *models.StoredObject) (json.RawMessage, error)) (*models.StoredObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, err := r.getLocked(id)
	if err != nil {
		return nil, err
	}
	data, err := fn(r.clone(obj))
	if err != nil {
		return nil, err
	}
	obj.Data = data
	return r.clone(obj), nil
}

func (r *fakeRepo) TakeOnce(ctx context.Context, id string, typ models.ObjectType) (*models.StoredObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, err := r.getLocked(id)
	if err != nil {
		return nil, err
	}
	if obj.Type != typ {
		return nil, common.ErrNotFound
	}
	delete(r.objs, id)
	return r.clone(obj), nil
}

func (r *fakeRepo) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.objs[id]
	delete(r.objs, id)
	return existed, nil
}

func (r *fakeRepo) PurgeExpired(ctx context.Context, now time.Time) ([]models.PurgedObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged []models.PurgedObject
	for id, obj := range r.objs {
		if obj.Expired(now) {
			purged = append(purged, models.PurgedObject{ID: id, Type: obj.Type})
			delete(r.objs, id)
		}
	}
	return purged, nil
}
