package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	SessionStoreFile   = "file"
	SessionStoreBolt   = "bolt"
	SessionStoreMemory = "memory"

	apiPathSuffix = "/api"
	sessionDir    = ".bankctl"
)

// EnvVars holds the client-side settings.
type EnvVars struct {
	APIURL       string        `env:"BANK_API_URL" envDefault:"http://127.0.0.1:8000"`
	SessionStore string        `env:"BANK_SESSION_STORE" envDefault:"file"`
	SessionPath  string        `env:"BANK_SESSION_PATH"`
	HTTPTimeout  time.Duration `env:"BANK_HTTP_TIMEOUT" envDefault:"30s"`
	RefreshDedup bool          `env:"BANK_REFRESH_DEDUP" envDefault:"true"`
	Env          string        `env:"ENV" envDefault:"DEV"`
}

var _ ClientConfig = EnvVars{}

// GetAPIBaseURL returns the ledger API root, e.g. "http://127.0.0.1:8000/api".
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.APIURL, "/") + apiPathSuffix
}

func (e EnvVars) GetSessionStore() string {
	return e.SessionStore
}

// GetSessionPath returns the configured path, or a per-user default that
// depends on the store type.
func (e EnvVars) GetSessionPath() string {
	if e.SessionPath != "" {
		return e.SessionPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	name := "session.json"
	if e.SessionStore == SessionStoreBolt {
		name = "session.db"
	}
	return filepath.Join(home, sessionDir, name)
}

func (e EnvVars) GetHTTPTimeout() time.Duration {
	return e.HTTPTimeout
}

func (e EnvVars) GetRefreshDedup() bool {
	return e.RefreshDedup
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) validate() error {
	switch e.SessionStore {
	case SessionStoreFile, SessionStoreBolt, SessionStoreMemory:
	default:
		return fmt.Errorf("BANK_SESSION_STORE: unknown store %q", e.SessionStore)
	}
	if e.APIURL == "" {
		return fmt.Errorf("BANK_API_URL must not be empty")
	}
	return nil
}
