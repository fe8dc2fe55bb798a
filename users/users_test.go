package users_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-idp-bridge/users"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	p1, err := users.GeneratePassword()
	require.NoError(t, err)
	p2, err := users.GeneratePassword()
	require.NoError(t, err)

	require.Len(t, p1, 32)
	require.NotEqual(t, p1, p2)
	for _, c := range p1 {
		require.True(t, strings.ContainsRune("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz~!@-#$", c))
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := users.HashPassword("s3cret")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("s3cret", hash))
	require.False(t, users.CheckPasswordHash("other", hash))
}

func TestRecordHelpers(t *testing.T) {
	r := users.Record{"id": 7, "email": "a@b.c", "nil": nil}
	require.Equal(t, "7", r.ID())
	require.Equal(t, "a@b.c", r.String("email"))
	require.Equal(t, "", r.String("nil"))
	require.Equal(t, "", r.String("missing"))

	c := r.Clone()
	c["email"] = "changed"
	require.Equal(t, "a@b.c", r["email"])
}
