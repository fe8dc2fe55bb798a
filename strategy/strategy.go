// Package strategy authenticates incoming requests. A Strategy reports
// through an Outcome and must call exactly one of its methods per request.
package strategy

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-idp-bridge/users"
)

type Outcome interface {
	// Success reports the resolved user. A nil user means "not authenticated
	// by this strategy", which lets a Chain try the next one.
	Success(user users.Record)
	Fail(status int)
	Error(err error)
}

type Strategy interface {
	Name() string
	Authenticate(r *http.Request, out Outcome)
}

type userKey struct{}

// WithUser attaches an authenticated user to ctx.
func WithUser(ctx context.Context, user users.Record) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func UserFromContext(ctx context.Context) (users.Record, bool) {
	user, ok := ctx.Value(userKey{}).(users.Record)
	return user, ok && user != nil
}
