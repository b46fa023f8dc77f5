// Package servertest starts a seeded development ledger for tests.
package servertest

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-bank-session/internal/config"
	"github.com/jrsteele09/go-bank-session/server"
	"github.com/jrsteele09/go-bank-session/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Ledger is a running development ledger.
type Ledger struct {
	*httptest.Server
	Ledger *server.Server
	Config config.Config
}

// APIBaseURL is the base URL clients should be configured with.
func (l *Ledger) APIBaseURL() string {
	return l.URL + server.RouteAPIPrefix
}

// New starts a seeded ledger. env overrides the development token settings,
// e.g. DEV_ROTATE_REFRESH or DEV_ACCESS_TTL.
func New(t testing.TB, env map[string]string, opts ...server.Option) *Ledger {
	t.Helper()
	users.HashCost = bcrypt.MinCost

	environment := map[string]string{
		"ENV":                "TEST",
		"BANK_SESSION_STORE": config.SessionStoreMemory,
		"DEV_SIGNING_KEY":    "servertest-signing-key",
		"DEV_ACCESS_TTL":     time.Minute.String(),
	}
	for k, v := range env {
		environment[k] = v
	}
	cfg, err := config.FromMap(environment)
	require.NoError(t, err)

	srv, err := server.New(cfg, server.NewInMemoryRepos(), opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &Ledger{Server: ts, Ledger: srv, Config: cfg}
}
