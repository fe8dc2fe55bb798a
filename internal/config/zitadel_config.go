package config

import (
	"strings"
	"time"

	"github.com/jrsteele09/go-idp-bridge/claims"
)

const (
	DefaultScope      = "openid email profile urn:zitadel:iam:user:metadata"
	orgIDScopePrefix  = "urn:zitadel:iam:org:id:"
	DefaultCollection = "users"
)

type ProviderConfig interface {
	GetIssuer() string
	GetAuthorizeEndpoint() string
	GetTokenEndpoint() string
	GetUserInfoEndpoint() string
	GetClientID() string
	GetRedirectURI() string
	GetScopes() []string
	GetHTTPTimeout() time.Duration
}

// MappingConfig describes where and how provider claims are stored locally.
type MappingConfig interface {
	GetCollection() string
	GetFieldMappings() []claims.FieldMapping
}

var _ ProviderConfig = Zitadel{}

type Zitadel struct {
	Issuer            string        `env:"ZITADEL_ISSUER" validate:"omitempty,url"`
	AuthorizeEndpoint string        `env:"ZITADEL_AUTHORIZE_ENDPOINT" validate:"omitempty,url"`
	TokenEndpoint     string        `env:"ZITADEL_TOKEN_ENDPOINT" validate:"omitempty,url"`
	UserInfoEndpoint  string        `env:"ZITADEL_USER_INFO" validate:"omitempty,url"`
	ClientID          string        `env:"ZITADEL_CLIENT_ID" validate:"required_with=RedirectURI"`
	RedirectURI       string        `env:"ZITADEL_REDIRECT_URI" validate:"omitempty,url"`
	Scope             string        `env:"ZITADEL_SCOPE" envDefault:"openid email profile urn:zitadel:iam:user:metadata"`
	OrganizationID    string        `env:"ZITADEL_ORGANIZATION_ID"`
	Collection        string        `env:"ZITADEL_COLLECTION" envDefault:"users" validate:"required"`
	FieldMappingsJSON string        `env:"ZITADEL_FIELD_MAPPINGS"`
	HTTPTimeout       time.Duration `env:"PROVIDER_HTTP_TIMEOUT" envDefault:"10s"`
}

func (z Zitadel) GetIssuer() string {
	return z.Issuer
}

func (z Zitadel) GetAuthorizeEndpoint() string {
	return z.AuthorizeEndpoint
}

func (z Zitadel) GetTokenEndpoint() string {
	return z.TokenEndpoint
}

func (z Zitadel) GetUserInfoEndpoint() string {
	return z.UserInfoEndpoint
}

func (z Zitadel) GetClientID() string {
	return z.ClientID
}

func (z Zitadel) GetRedirectURI() string {
	return z.RedirectURI
}

// GetScopes returns the requested scopes, with the organization scope appended
// when an organization id is configured.
func (z Zitadel) GetScopes() []string {
	return Scopes(z.Scope, z.OrganizationID)
}

func (z Zitadel) GetCollection() string {
	return z.Collection
}

func (z Zitadel) GetHTTPTimeout() time.Duration {
	return z.HTTPTimeout
}

func (c mainConfig) GetFieldMappings() []claims.FieldMapping {
	return c.fieldMappings
}

// Scopes splits scope on whitespace (falling back to DefaultScope) and adds
// the organization-scoped URN for orgID if set.
func Scopes(scope, orgID string) []string {
	if strings.TrimSpace(scope) == "" {
		scope = DefaultScope
	}
	scopes := strings.Fields(scope)
	if orgID != "" {
		scopes = append(scopes, orgIDScopePrefix+orgID)
	}
	return scopes
}
