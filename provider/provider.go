// Package provider talks to the OpenID Connect provider: endpoint discovery,
// authorization URLs, code exchange and user-info lookups.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-idp-bridge/claims"
	"github.com/jrsteele09/go-idp-bridge/internal/config"
	"github.com/jrsteele09/go-idp-bridge/internal/errors"
	"github.com/jrsteele09/go-idp-bridge/pkce"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// maxUserInfoBytes bounds the user-info response body.
const maxUserInfoBytes = 1 << 20

// Endpoints are the provider URLs the bridge calls.
type Endpoints struct {
	Authorize string
	Token     string
	UserInfo  string
}

// Discover reads the issuer's openid-configuration. The HTTP client in ctx
// (oidc.ClientContext) is used when present.
func Discover(ctx context.Context, issuer string) (Endpoints, error) {
	p, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	ep := p.Endpoint()
	return Endpoints{
		Authorize: ep.AuthURL,
		Token:     ep.TokenURL,
		UserInfo:  p.UserInfoEndpoint(),
	}, nil
}

// StatusError reports a non-2xx answer from the user-info endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("user-info endpoint answered %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	return errors.ErrUpstream
}

type Client struct {
	endpoints  Endpoints
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// New builds a client from configuration. When an issuer is configured,
// endpoints missing from the configuration are filled in by discovery.
func New(ctx context.Context, cfg config.ProviderConfig, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetHTTPTimeout()}
	}

	endpoints := Endpoints{
		Authorize: cfg.GetAuthorizeEndpoint(),
		Token:     cfg.GetTokenEndpoint(),
		UserInfo:  cfg.GetUserInfoEndpoint(),
	}
	if cfg.GetIssuer() != "" && (endpoints.Authorize == "" || endpoints.Token == "" || endpoints.UserInfo == "") {
		discovered, err := Discover(oidc.ClientContext(ctx, httpClient), cfg.GetIssuer())
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("issuer", cfg.GetIssuer()).Msg("Discovered provider endpoints")
		if endpoints.Authorize == "" {
			endpoints.Authorize = discovered.Authorize
		}
		if endpoints.Token == "" {
			endpoints.Token = discovered.Token
		}
		if endpoints.UserInfo == "" {
			endpoints.UserInfo = discovered.UserInfo
		}
	}

	return &Client{
		endpoints: endpoints,
		oauth: &oauth2.Config{
			ClientID:    cfg.GetClientID(),
			RedirectURL: cfg.GetRedirectURI(),
			Scopes:      cfg.GetScopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:   endpoints.Authorize,
				TokenURL:  endpoints.Token,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

func (c *Client) RedirectURI() string {
	return c.oauth.RedirectURL
}

// AuthorizationURL returns the authorize request for pair. The verifier
// travels inside the encoded state so the callback can recover it.
func (c *Client) AuthorizationURL(pair pkce.Pair) (string, error) {
	if c.endpoints.Authorize == "" {
		return "", errors.Wrapf(errors.ErrMissingConfig, "authorize endpoint")
	}
	state, err := pkce.EncodeState(pkce.State{CodeVerifier: pair.CodeVerifier})
	if err != nil {
		return "", err
	}
	return c.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_mode", "query"),
		oauth2.SetAuthURLParam("code_challenge", pair.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.MethodS256),
	), nil
}

// Exchange trades an authorization code for a token. Error responses from
// the token endpoint come back as *oauth2.RetrieveError.
func (c *Client) Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	if c.endpoints.Token == "" {
		return nil, errors.Wrapf(errors.ErrMissingConfig, "token endpoint")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	c.logger.Debug().Str("url", c.endpoints.Token).Msg("Exchanging authorization code")
	return c.oauth.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
}

// UserInfo fetches the claims for accessToken. A status of 300 or above is
// returned as *StatusError.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (claims.Map, error) {
	if c.endpoints.UserInfo == "" {
		return nil, errors.Wrapf(errors.ErrMissingConfig, "user-info endpoint")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.UserInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user-info request: %w", err)
	}
	(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstream, "user-info request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxUserInfoBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBytes))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstream, "read user-info body: %v", err)
	}
	return claims.Parse(body)
}
