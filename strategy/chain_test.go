package strategy_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-idp-bridge/strategy"
	"github.com/jrsteele09/go-idp-bridge/users"
	"github.com/stretchr/testify/require"
)

type stubStrategy struct {
	name  string
	run   func(out strategy.Outcome)
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Authenticate(_ *http.Request, out strategy.Outcome) {
	s.calls++
	s.run(out)
}

func anonymous(name string) *stubStrategy {
	return &stubStrategy{name: name, run: func(out strategy.Outcome) { out.Success(nil) }}
}

func TestChainFallsThroughAnonymous(t *testing.T) {
	first := anonymous("first")
	second := &stubStrategy{name: "second", run: func(out strategy.Outcome) { out.Success(users.Record{"id": "1"}) }}
	third := anonymous("third")

	res := strategy.Chain{first, second, third}.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "second", res.Strategy)
	require.Equal(t, users.Record{"id": "1"}, res.User)
	require.Equal(t, 0, third.calls)
}

func TestChainStopsOnFailAndError(t *testing.T) {
	failing := &stubStrategy{name: "fail", run: func(out strategy.Outcome) { out.Fail(http.StatusForbidden) }}
	after := anonymous("after")
	res := strategy.Chain{failing, after}.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusForbidden, res.Status)
	require.Equal(t, 0, after.calls)

	boom := errors.New("boom")
	erroring := &stubStrategy{name: "err", run: func(out strategy.Outcome) { out.Error(boom) }}
	res = strategy.Chain{erroring, after}.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, res.Err, boom)
	require.Equal(t, "err", res.Strategy)
}

func TestChainAllAnonymous(t *testing.T) {
	res := strategy.Chain{anonymous("a"), anonymous("b")}.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, res.Decided())
	require.Empty(t, res.Strategy)
}

func TestUserFromContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := strategy.UserFromContext(r.Context())
	require.False(t, ok)

	ctx := strategy.WithUser(r.Context(), users.Record{"id": "1"})
	u, ok := strategy.UserFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "1", u.ID())
}
