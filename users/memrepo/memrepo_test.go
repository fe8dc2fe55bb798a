package memrepo_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-idp-bridge/internal/errors"
	"github.com/jrsteele09/go-idp-bridge/users"
	"github.com/jrsteele09/go-idp-bridge/users/memrepo"
	"github.com/stretchr/testify/require"
)

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("users")
	require.Equal(t, "users", repo.Slug())

	created, err := repo.Create(ctx, users.Record{"sub": "s1", "email": "a@x.com"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID())

	found, err := repo.Find(ctx, "sub", "s1")
	require.NoError(t, err)
	require.Equal(t, []users.Record{created}, found)

	found, err = repo.Find(ctx, "sub", "other")
	require.NoError(t, err)
	require.Empty(t, found)

	byID, err := repo.FindByID(ctx, created.ID())
	require.NoError(t, err)
	require.Equal(t, created, byID)

	_, err = repo.Create(ctx, users.Record{"id": created.ID()})
	require.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("users")
	_, err := repo.Create(ctx, users.Record{"id": "u1", "full_name": "X"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, "u1", users.Record{"email": "u1@x.com", "id": "ignored"})
	require.NoError(t, err)
	require.Equal(t, users.Record{"id": "u1", "full_name": "X", "email": "u1@x.com"}, updated)

	_, err = repo.Update(ctx, "missing", users.Record{})
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestWithoutEmailField(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("users", memrepo.WithoutEmailField())

	created, err := repo.Create(ctx, users.Record{"id": "u1", "email": "a@x.com"})
	require.NoError(t, err)
	require.NotContains(t, created, "email")

	_, err = repo.Find(ctx, "email", "a@x.com")
	require.ErrorIs(t, err, errors.ErrUnknownField)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("users")
	created, err := repo.Create(ctx, users.Record{"id": "u1"})
	require.NoError(t, err)
	created["mutated"] = true

	stored, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NotContains(t, stored, "mutated")
}
