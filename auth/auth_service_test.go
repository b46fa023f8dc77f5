package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-bank-session/access"
	"github.com/jrsteele09/go-bank-session/auth"
	"github.com/jrsteele09/go-bank-session/gateway"
	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/server"
	"github.com/jrsteele09/go-bank-session/server/servertest"
	"github.com/jrsteele09/go-bank-session/sessions"
	fakesessionrepo "github.com/jrsteele09/go-bank-session/sessions/repofake"
	"github.com/jrsteele09/go-bank-session/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	paths []string
	lock  sync.Mutex
}

func (n *recordingNavigator) Navigate(_ context.Context, path string) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) visited() []string {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]string(nil), n.paths...)
}

type testFixture struct {
	ledger  *servertest.Ledger
	store   sessions.Store
	nav     *recordingNavigator
	client  *gateway.Client
	service *auth.Service
	gate    *access.Gate
	failMe  atomic.Bool
}

// setupTestFixture wires a session, gateway, auth service and gate against a
// seeded ledger. failMe makes /api/me/ answer 500 while set.
func setupTestFixture(t *testing.T) *testFixture {
	f := &testFixture{
		ledger: servertest.New(t, nil),
		store:  sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop()),
		nav:    &recordingNavigator{},
	}

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == server.RouteMe && f.failMe.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f.ledger.Ledger.ServeHTTP(w, r)
	}))
	t.Cleanup(proxy.Close)

	f.client = gateway.New(proxy.URL+server.RouteAPIPrefix, f.store, gateway.WithSessionEnded(auth.RedirectToEntry(f.nav)))
	f.service = auth.NewService(f.client, auth.WithNavigator(f.nav))

	gate, err := access.NewGate(f.store, zerolog.Nop())
	require.NoError(t, err)
	f.gate = gate
	return f
}

func TestSuperAdminLoginScenario(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	p, err := f.service.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.Equal(t, users.RoleSuperAdmin, p.Role)
	require.Equal(t, "Subbu Admin", p.DisplayName())

	creds := f.store.GetCredentials()
	require.True(t, creds.HasAccess())
	require.True(t, creds.HasRefresh())
	require.Equal(t, users.RoleSuperAdmin, f.store.GetPrincipal().Role)

	require.True(t, f.gate.Decide("/manage-users").Allowed())
	require.True(t, f.gate.Decide("/all-customers").Allowed())

	d := f.gate.Decide("/accounts")
	require.False(t, d.Allowed())
	require.Equal(t, access.Landing, d.Redirect)

	d = f.gate.Decide(access.EntryPoint)
	require.Equal(t, access.Landing, d.Redirect)
}

func TestLoginTrimsUsername(t *testing.T) {
	f := setupTestFixture(t)
	p, err := f.service.Login(context.Background(), "  cust_ravi ", "cust123")
	require.NoError(t, err)
	require.Equal(t, "cust_ravi", p.Username)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), "admin", "nope")
	require.Error(t, err)
	apiErr, ok := gateway.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "No active account found with the given credentials", apiErr.Message())

	require.False(t, f.store.IsAuthenticated())
	require.Empty(t, f.nav.visited(), "a rejected login never triggers eviction")
}

func TestLoginMissingFieldsSurfacesFieldMessage(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), "admin", "")
	apiErr, ok := gateway.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "This field is required.", apiErr.FieldMessage("password"))
}

func TestPartialLoginKeepsCredentials(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	f.failMe.Store(true)
	_, err := f.service.Login(ctx, "rm_priya", "rm123")
	require.Error(t, err)
	require.True(t, f.store.IsAuthenticated(), "the credential pair stays stored")
	require.Nil(t, f.store.GetPrincipal())

	// Without a principal the gate treats the session as having no role.
	d := f.gate.Decide("/manage-users")
	require.False(t, d.Allowed())
	require.Equal(t, access.Landing, d.Redirect)

	f.failMe.Store(false)
	p, err := f.service.EnsurePrincipal(ctx)
	require.NoError(t, err)
	require.Equal(t, users.RoleRM, p.Role)
	require.True(t, f.gate.Decide("/manage-users").Allowed())
}

func TestLoginReplacesPreviousPrincipal(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	f.failMe.Store(true)
	_, err = f.service.Login(ctx, "cust_ravi", "cust123")
	require.Error(t, err)
	require.Nil(t, f.store.GetPrincipal(), "the previous user's principal must not survive")
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "cust_meera", "cust123")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx))
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.GetPrincipal())
	require.Equal(t, []string{access.EntryPoint}, f.nav.visited())

	require.NoError(t, f.service.Logout(ctx), "logout is idempotent")

	d := f.gate.Decide("/dashboard")
	require.Equal(t, access.EntryPoint, d.Redirect)
}

func TestEnsurePrincipalWithoutSession(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.EnsurePrincipal(context.Background())
	require.ErrorIs(t, err, auth.ErrNoSession)
}

func TestExpiredAccessIsRenewedTransparently(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "cust_anita", "cust123")
	require.NoError(t, err)
	refresh := f.store.GetCredentials().Refresh
	require.NoError(t, f.store.SetCredentials("stale-access", ""))

	p, err := f.service.EnsurePrincipal(ctx)
	require.NoError(t, err)
	require.Equal(t, "cust_anita", p.Username)

	creds := f.store.GetCredentials()
	require.NotEqual(t, "stale-access", creds.Access)
	require.Equal(t, refresh, creds.Refresh, "refresh credential is kept when not rotated")
	require.Empty(t, f.nav.visited())
}

func TestRefreshFailureEndsSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "cust_rahul", "cust123")
	require.NoError(t, err)
	require.NoError(t, f.store.Clear())
	require.NoError(t, f.store.SetCredentials("stale-access", "revoked-refresh"))

	_, err = gateway.Call[users.Principal](ctx, f.client, gateway.Request{Method: http.MethodGet, Path: gateway.MePath})
	require.ErrorIs(t, err, errors.ErrSessionEnded)
	require.True(t, gateway.IsSessionEnded(err))

	require.False(t, f.store.IsAuthenticated())
	require.Equal(t, []string{access.EntryPoint}, f.nav.visited())
}
