package config

import (
	"encoding/json"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-idp-bridge/claims"
)

type Config interface {
	EnvConfig
	ProviderConfig
	MappingConfig
	CookieConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetLogPretty() bool
	GetSQLitePath() string
}

type mainConfig struct {
	EnvVars
	Zitadel
	Cookie
	LocalSession

	fieldMappings []claims.FieldMapping
}

// Load reads an optional .env file, parses the environment once and validates
// the result. The returned Config is immutable.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config Load] parse env: %w", err)
	}

	if c.FieldMappingsJSON != "" {
		if err := json.Unmarshal([]byte(c.FieldMappingsJSON), &c.fieldMappings); err != nil {
			return nil, fmt.Errorf("[config Load] parse ZITADEL_FIELD_MAPPINGS: %w", err)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("[config Load] invalid configuration: %w", err)
	}
	for i, m := range c.fieldMappings {
		if err := validate.Struct(m); err != nil {
			return nil, fmt.Errorf("[config Load] invalid field mapping %d: %w", i, err)
		}
	}

	return c, nil
}

// New assembles a Config from already populated parts without reading the
// environment or validating.
func New(envVars EnvVars, zitadel Zitadel, cookie Cookie, session LocalSession, mappings []claims.FieldMapping) Config {
	return mainConfig{
		EnvVars:       envVars,
		Zitadel:       zitadel,
		Cookie:        cookie,
		LocalSession:  session,
		fieldMappings: append([]claims.FieldMapping(nil), mappings...),
	}
}
