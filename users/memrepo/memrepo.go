// Package memrepo is an in-memory users.Collection.
package memrepo

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-idp-bridge/internal/errors"
	"github.com/jrsteele09/go-idp-bridge/users"
)

var _ users.Collection = (*Repo)(nil)

type Repo struct {
	slug    string
	noEmail bool
	users   map[string]users.Record
	lock    sync.RWMutex
}

type Option func(*Repo)

// WithoutEmailField makes email lookups fail with errors.ErrUnknownField, as
// a collection that disables local login would.
func WithoutEmailField() Option {
	return func(r *Repo) { r.noEmail = true }
}

func New(slug string, opts ...Option) *Repo {
	r := &Repo{
		slug:  slug,
		users: make(map[string]users.Record),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repo) Slug() string {
	return r.slug
}

func (r *Repo) Find(ctx context.Context, field string, value any) ([]users.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.noEmail && field == users.FieldEmail {
		return nil, errors.Wrapf(errors.ErrUnknownField, "%s.%s", r.slug, field)
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	found := make([]users.Record, 0)
	for _, u := range r.users {
		if v, ok := u[field]; ok && equal(v, value) {
			found = append(found, u.Clone())
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].ID() < found[j].ID()
	})
	return found, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (users.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.lock.RLock()
	defer r.lock.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s %s", r.slug, id)
	}
	return u.Clone(), nil
}

// Create stores data, generating an id when none is given.
func (r *Repo) Create(ctx context.Context, data users.Record) (users.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u := data.Clone()
	if u == nil {
		u = users.Record{}
	}
	if r.noEmail {
		delete(u, users.FieldEmail)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	id := u.ID()
	if id == "" {
		id = uuid.New().String()
		u[users.FieldID] = id
	}
	if _, exists := r.users[id]; exists {
		return nil, fmt.Errorf("%s %s already exists: %w", r.slug, id, errors.ErrInvalidInput)
	}
	r.users[id] = u
	return u.Clone(), nil
}

// Update merges data into the stored record; fields absent from data are
// kept.
func (r *Repo) Update(ctx context.Context, id string, data users.Record) (users.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s %s", r.slug, id)
	}
	for k, v := range data {
		if k == users.FieldID || (r.noEmail && k == users.FieldEmail) {
			continue
		}
		u[k] = v
	}
	return u.Clone(), nil
}

// Len reports the number of stored records.
func (r *Repo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.users)
}

func equal(a, b any) bool {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	return reflect.DeepEqual(a, b)
}
