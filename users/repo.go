package users

import "context"

// Collection is the host's user store. Find returns every record whose field
// equals value; it may fail with errors.ErrUnknownField when the collection
// has no such field.
type Collection interface {
	Slug() string
	Find(ctx context.Context, field string, value any) ([]Record, error)
	FindByID(ctx context.Context, id string) (Record, error)
	Create(ctx context.Context, data Record) (Record, error)
	Update(ctx context.Context, id string, data Record) (Record, error)
}

// Registry resolves collections by slug.
type Registry interface {
	Collection(slug string) (Collection, bool)
}

// Collections is a Registry backed by a map.
type Collections map[string]Collection

var _ Registry = Collections{}

func NewCollections(cols ...Collection) Collections {
	c := make(Collections, len(cols))
	for _, col := range cols {
		c[col.Slug()] = col
	}
	return c
}

func (c Collections) Collection(slug string) (Collection, bool) {
	col, ok := c[slug]
	return col, ok
}
