package strategy

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-idp-bridge/claims"
	"github.com/jrsteele09/go-idp-bridge/internal/logging"
	"github.com/jrsteele09/go-idp-bridge/localsession"
	"github.com/jrsteele09/go-idp-bridge/provider"
	"github.com/jrsteele09/go-idp-bridge/users"
	"github.com/rs/zerolog"
)

const BridgeName = "zitadel"

// UserInfoSource is the part of the provider client the bridge needs.
type UserInfoSource interface {
	Endpoints() provider.Endpoints
	UserInfo(ctx context.Context, accessToken string) (claims.Map, error)
}

var _ UserInfoSource = (*provider.Client)(nil)

var _ Strategy = (*Bridge)(nil)

// Bridge authenticates a request from the provider token cookie, creating or
// updating the matching local user, and otherwise from a local session.
type Bridge struct {
	provider   UserInfoSource
	resolver   *users.Resolver
	cookieName string
	sessions   localsession.Verifier
	registry   users.Registry
	logger     zerolog.Logger
}

type BridgeOption func(*Bridge)

// WithLocalSessions enables the local-session fallback for requests without
// a provider cookie. Sessions name their collection, looked up in registry.
func WithLocalSessions(v localsession.Verifier, registry users.Registry) BridgeOption {
	return func(b *Bridge) {
		b.sessions = v
		b.registry = registry
	}
}

func NewBridge(p UserInfoSource, resolver *users.Resolver, cookieName string, logger zerolog.Logger, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		provider:   p,
		resolver:   resolver,
		cookieName: cookieName,
		logger:     logging.Named(logger, BridgeName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) Name() string {
	return BridgeName
}

func (b *Bridge) slug() string {
	return b.resolver.Collection().Slug()
}

func (b *Bridge) Authenticate(r *http.Request, out Outcome) {
	ctx := r.Context()

	if user, ok := UserFromContext(ctx); ok {
		out.Success(user)
		return
	}

	// The host's init probe would otherwise hit the provider a second time.
	if strings.HasSuffix(r.URL.Path, "/"+b.slug()+"/init") {
		out.Success(nil)
		return
	}

	if b.provider.Endpoints().UserInfo == "" {
		b.logger.Info().Msg("User-info endpoint is not configured, skipping provider authentication")
		out.Success(nil)
		return
	}

	if c, err := r.Cookie(b.cookieName); err == nil && c.Value != "" {
		out.Success(b.fromProvider(ctx, c.Value))
		return
	}

	out.Success(b.fromLocalSession(r))
}

// fromProvider returns nil on any failure; the request then continues
// unauthenticated.
func (b *Bridge) fromProvider(ctx context.Context, accessToken string) users.Record {
	info, err := b.provider.UserInfo(ctx, accessToken)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to fetch user info")
		return nil
	}
	if err := claims.DecodeRoles(info); err != nil {
		b.logger.Warn().Err(err).Msg("Ignoring malformed roles metadata")
	}

	found, err := b.resolver.FindUser(ctx, info)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to look up user")
		return nil
	}

	var user users.Record
	if len(found) > 0 {
		b.logger.Debug().Str("id", found[0].ID()).Msg("Merging provider profile into existing user")
		user, err = b.resolver.MergeUsers(ctx, found[0], info)
	} else {
		b.logger.Debug().Msg("No local user found, creating one")
		user, err = b.resolver.CreateUser(ctx, info)
	}
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to store user")
		return nil
	}

	user = user.Clone()
	user[users.FieldCollection] = b.slug()
	user[users.FieldStrategy] = b.slug() + "-" + BridgeName
	return user
}

func (b *Bridge) fromLocalSession(r *http.Request) users.Record {
	if b.sessions == nil || b.registry == nil {
		return nil
	}
	s, err := b.sessions.Verify(r)
	if err != nil {
		b.logger.Trace().Err(err).Msg("No local session")
		return nil
	}
	col, ok := b.registry.Collection(s.Collection)
	if !ok {
		b.logger.Debug().Str("collection", s.Collection).Msg("Local session names an unknown collection")
		return nil
	}
	user, err := col.FindByID(r.Context(), s.ID)
	if err != nil {
		b.logger.Debug().Err(err).Str("id", s.ID).Msg("Local session user not found")
		return nil
	}
	user = user.Clone()
	user[users.FieldCollection] = s.Collection
	return user
}
