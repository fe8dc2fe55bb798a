package config

import (
	"net/http"
	"strings"
)

const DefaultCookieName = "idp_token"

type CookieConfig interface {
	GetCookieName() string
	GetCookieDomain() string
	GetCookieSameSite() http.SameSite
	GetCookieSecure() bool
}

type Cookie struct {
	Name     string `env:"ZITADEL_COOKIE_NAME" envDefault:"idp_token" validate:"required"`
	Domain   string `env:"ZITADEL_COOKIE_DOMAIN"`
	SameSite string `env:"ZITADEL_COOKIE_SAMESITE" envDefault:"lax" validate:"oneof=lax strict none Lax Strict None"`
	Secure   bool   `env:"ZITADEL_COOKIE_SECURE"`
}

var _ CookieConfig = Cookie{}

func (c Cookie) GetCookieName() string {
	return c.Name
}

func (c Cookie) GetCookieDomain() string {
	return c.Domain
}

func (c Cookie) GetCookieSameSite() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (c Cookie) GetCookieSecure() bool {
	return c.Secure
}
