package users

import (
	"context"

	"github.com/jrsteele09/go-idp-bridge/claims"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Resolver reconciles provider claims with a local collection.
//
// FindUser followed by CreateUser is not atomic: two concurrent first logins
// for the same subject can both miss and create two records.
type Resolver struct {
	collection  Collection
	remapper    *claims.Remapper
	logger      zerolog.Logger
	newPassword func() (string, error)
}

type ResolverOption func(*Resolver)

// WithPasswordGenerator replaces GeneratePassword.
func WithPasswordGenerator(f func() (string, error)) ResolverOption {
	return func(r *Resolver) { r.newPassword = f }
}

func NewResolver(collection Collection, remapper *claims.Remapper, logger zerolog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		collection:  collection,
		remapper:    remapper,
		logger:      logger,
		newPassword: GeneratePassword,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Collection() Collection {
	return r.collection
}

// FindUser looks the subject up by sub and, failing that, by email. A sub
// match always wins. Errors from the email lookup (for instance a collection
// without an email field) count as no match.
func (r *Resolver) FindUser(ctx context.Context, c claims.Map) ([]Record, error) {
	sub := c.String(claims.SubjectClaim)
	if sub != "" {
		r.logger.Debug().Str("sub", sub).Msg("Searching user by sub")
		found, err := r.collection.Find(ctx, FieldSub, sub)
		if err != nil {
			return nil, errors.Wrapf(err, "find %s by sub", r.collection.Slug())
		}
		if len(found) > 0 {
			r.logger.Debug().Msg("User found with sub search")
			return found, nil
		}
	}

	email := c.String(claims.EmailClaim)
	if email == "" {
		return nil, nil
	}
	r.logger.Debug().Msg("Trying to search user by email (collection may have no email field)")
	found, err := r.collection.Find(ctx, FieldEmail, email)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Email search failed, treating as no match")
		return nil, nil
	}
	return found, nil
}

// CreateUser stores the remapped claims plus a generated password.
func (r *Resolver) CreateUser(ctx context.Context, c claims.Map) (Record, error) {
	r.logger.Debug().Str("sub", c.String(claims.SubjectClaim)).Msg("Creating user")

	password, err := r.newPassword()
	if err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	data := Record(r.remapper.Remap(c).Record())
	data[FieldPassword] = password

	created, err := r.collection.Create(ctx, data)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", r.collection.Slug())
	}
	return created, nil
}

// MergeUsers applies the remapped claims to existing as a partial update.
// The id never goes into the patch. Neither does sub once the record has
// one, since a stored sub is never rewritten.
func (r *Resolver) MergeUsers(ctx context.Context, existing Record, c claims.Map) (Record, error) {
	id := existing.ID()
	if id == "" {
		return nil, errors.New("merge user: existing record has no id")
	}

	patch := Record(r.remapper.Remap(c).Record())
	delete(patch, FieldID)
	if existing.String(FieldSub) != "" {
		delete(patch, FieldSub)
	}

	updated, err := r.collection.Update(ctx, id, patch)
	if err != nil {
		return nil, errors.Wrapf(err, "update %s %s", r.collection.Slug(), id)
	}
	return updated, nil
}
