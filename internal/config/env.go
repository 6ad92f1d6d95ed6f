package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names for overrides.
const (
	EnvConfig      = "FILEBOX_CONFIG"
	EnvAPIURL      = "FILEBOX_API_URL"
	EnvSessionPath = "FILEBOX_SESSION_PATH"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath  string // FILEBOX_CONFIG: override config file path
	APIURL      string // FILEBOX_API_URL: override remote API origin
	SessionPath string // FILEBOX_SESSION_PATH: override session file path
}

// LoadDotEnv loads a local .env file into the process environment before
// the overrides are read. Variables already set in the environment win.
// A missing .env file is the normal case, not an error.
func LoadDotEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) && logger != nil {
			logger.Warn("loading .env failed", slog.String("error", err.Error()))
		}
	}
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; callers apply the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:  os.Getenv(EnvConfig),
		APIURL:      os.Getenv(EnvAPIURL),
		SessionPath: os.Getenv(EnvSessionPath),
	}
}
