package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	Port       string `env:"PORT" envDefault:"8080"`
	AppName    string `env:"APP_NAME" envDefault:"IdP Bridge"`
	Env        string `env:"ENV" envDefault:"DEV"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"debug" validate:"oneof=trace debug info warn error"`
	LogPretty  bool   `env:"LOG_PRETTY" envDefault:"true"`
	SQLitePath string `env:"SQLITE_PATH"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return fmt.Sprintf(":%s", e.Port)
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetLogPretty() bool {
	return e.LogPretty
}

// GetSQLitePath returns the user database path. Empty means the in-memory
// collection is used.
func (e EnvVars) GetSQLitePath() string {
	return e.SQLitePath
}
