package config

type SessionConfig interface {
	GetLocalSessionSecret() string
	GetLocalSessionCookie() string
}

// LocalSession configures verification of the host's own session tokens.
// An empty secret disables the local-session fallback.
type LocalSession struct {
	Secret     string `env:"LOCAL_SESSION_SECRET"`
	CookieName string `env:"LOCAL_SESSION_COOKIE" envDefault:"payload-token"`
}

var _ SessionConfig = LocalSession{}

func (l LocalSession) GetLocalSessionSecret() string {
	return l.Secret
}

func (l LocalSession) GetLocalSessionCookie() string {
	return l.CookieName
}
