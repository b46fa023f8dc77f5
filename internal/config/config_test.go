package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-bank-session/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c, err := config.FromMap(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, "http://127.0.0.1:8000/api", c.GetAPIBaseURL())
	require.Equal(t, config.SessionStoreFile, c.GetSessionStore())
	require.Equal(t, "session.json", filepath.Base(c.GetSessionPath()))
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	require.True(t, c.GetRefreshDedup())
	require.Equal(t, "info", c.GetLogLevel())
	require.Equal(t, ":8000", c.GetPort())
	require.False(t, c.GetRotateRefreshTokens())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:5173"))
}

func TestOverrides(t *testing.T) {
	c, err := config.FromMap(map[string]string{
		"BANK_API_URL":         "https://ledger.example.com/",
		"BANK_SESSION_STORE":   "bolt",
		"BANK_REFRESH_DEDUP":   "false",
		"DEV_ROTATE_REFRESH":   "true",
		"DEV_ACCESS_TTL":       "1m",
		"PORT":                 "9090",
		"CORS_ALLOWED_ORIGINS": "http://a.test, http://b.test",
	})
	require.NoError(t, err)

	require.Equal(t, "https://ledger.example.com/api", c.GetAPIBaseURL())
	require.Equal(t, "session.db", filepath.Base(c.GetSessionPath()))
	require.False(t, c.GetRefreshDedup())
	require.True(t, c.GetRotateRefreshTokens())
	require.Equal(t, time.Minute, c.GetAccessTokenExpiry())
	require.Equal(t, ":9090", c.GetPort())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://b.test"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("http://c.test"))
}

func TestExplicitSessionPath(t *testing.T) {
	c, err := config.FromMap(map[string]string{"BANK_SESSION_PATH": "/tmp/x.json"})
	require.NoError(t, err)
	require.Equal(t, "/tmp/x.json", c.GetSessionPath())
}

func TestUnknownSessionStore(t *testing.T) {
	_, err := config.FromMap(map[string]string{"BANK_SESSION_STORE": "redis"})
	require.Error(t, err)
}
