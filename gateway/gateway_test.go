package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-bank-session/gateway"
	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/sessions"
	fakesessionrepo "github.com/jrsteele09/go-bank-session/sessions/repofake"
	"github.com/jrsteele09/go-bank-session/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeLedger accepts a single valid access credential on /thing/ and answers
// /token/refresh/ with a scripted status and body.
type fakeLedger struct {
	validAccess    string
	refreshStatus  int
	refreshBody    string
	thingCalls     atomic.Int32
	refreshCalls   atomic.Int32
	lastRefreshReq map[string]string
	lastRefreshHdr http.Header
	authHeaders    []string
	lock           sync.Mutex
}

func (f *fakeLedger) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/thing/", func(w http.ResponseWriter, r *http.Request) {
		f.thingCalls.Add(1)
		f.lock.Lock()
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		f.lock.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+f.validAccess {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type","code":"token_not_valid"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"auth":"` + r.Header.Get("Authorization") + `"}`))
	})
	mux.HandleFunc("POST /api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		body := map[string]string{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lock.Lock()
		f.lastRefreshReq = body
		f.lastRefreshHdr = r.Header.Clone()
		f.lock.Unlock()

		w.WriteHeader(f.refreshStatus)
		_, _ = w.Write([]byte(f.refreshBody))
	})
	return mux
}

type testFixture struct {
	ledger  *fakeLedger
	server  *httptest.Server
	store   *sessions.Session
	client  *gateway.Client
	evicted atomic.Int32
}

func setupTestFixture(t *testing.T, ledger *fakeLedger, opts ...gateway.Option) *testFixture {
	t.Helper()

	f := &testFixture{ledger: ledger}
	f.server = httptest.NewServer(ledger.handler())
	t.Cleanup(f.server.Close)

	f.store = sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop())
	opts = append([]gateway.Option{
		gateway.WithSessionEnded(func(context.Context) { f.evicted.Add(1) }),
	}, opts...)
	f.client = gateway.New(f.server.URL+"/api", f.store, opts...)
	return f
}

func TestValidCredentialIssuesExactlyOneRequest(t *testing.T) {
	f := setupTestFixture(t, &fakeLedger{validAccess: "A1", refreshStatus: 200, refreshBody: `{"access":"A2"}`})
	require.NoError(t, f.store.SetCredentials("A1", "R1"))

	for i := 0; i < 3; i++ {
		body, err := f.client.Get(context.Background(), "/thing/", nil)
		require.NoError(t, err)
		require.JSONEq(t, `{"ok":true,"auth":"Bearer A1"}`, string(body))
	}
	require.EqualValues(t, 3, f.ledger.thingCalls.Load())
	require.Zero(t, f.ledger.refreshCalls.Load())
}

func TestUnauthorizedRefreshesOnceAndRetriesOnce(t *testing.T) {
	f := setupTestFixture(t, &fakeLedger{validAccess: "A2", refreshStatus: 200, refreshBody: `{"access":"A2"}`})
	require.NoError(t, f.store.SetCredentials("A1", "R1"))

	type thing struct {
		OK   bool   `json:"ok"`
		Auth string `json:"auth"`
	}
	got, err := gateway.Call[thing](context.Background(), f.client, gateway.Request{Method: http.MethodGet, Path: "/thing/"})
	require.NoError(t, err)
	require.Equal(t, thing{OK: true, Auth: "Bearer A2"}, got)

	require.EqualValues(t, 2, f.ledger.thingCalls.Load())
	require.EqualValues(t, 1, f.ledger.refreshCalls.Load())
	require.Equal(t, []string{"Bearer A1", "Bearer A2"}, f.ledger.authHeaders)

	require.Equal(t, map[string]string{"refresh": "R1"}, f.ledger.lastRefreshReq)
	require.Empty(t, f.ledger.lastRefreshHdr.Get("Authorization"))

	// refresh credential was not rotated, so it is preserved
	require.Equal(t, sessions.CredentialPair{Access: "A2", Refresh: "R1"}, f.store.GetCredentials())
	require.Zero(t, f.evicted.Load())
}

func TestRotatedRefreshCredentialIsStored(t *testing.T) {
	f := setupTestFixture(t, &fakeLedger{validAccess: "A2", refreshStatus: 200, refreshBody: `{"access":"A2","refresh":"R2"}`})
	require.NoError(t, f.store.SetCredentials("A1", "R1"))

	_, err := f.client.Get(context.Background(), "/thing/", nil)
	require.NoError(t, err)
	require.Equal(t, sessions.CredentialPair{Access: "A2", Refresh: "R2"}, f.store.GetCredentials())
}

func TestRefreshRejectedEndsSession(t *testing.T) {
	f := setupTestFixture(t, &fakeLedger{validAccess: "never", refreshStatus: 401, refreshBody: `{"detail":"Token is invalid or expired","code":"token_not_valid"}`})
	require.NoError(t, f.store.SetCredentials("A1", "R1"))
	require.NoError(t, f.store.SetPrincipal(&users.Principal{ID: 1, Username: "admin", Role: users.RoleSuperAdmin}))

	body, err := f.client.Get(context.Background(), "/thing/", nil)
	require.Nil(t, body)
	require.ErrorIs(t, err, errors.ErrSessionEnded)
	require.True(t, gateway.IsSessionEnded(err))

	require.EqualValues(t, 1, f.ledger.thingCalls.Load(), "the original request must not be retried")
	require.EqualValues(t, 1, f.ledger.refreshCalls.Load())
	require.EqualValues(t, 1, f.evicted.Load())
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.GetPrincipal())
}

func TestMissingRefreshCredentialEndsSessionWithoutNetwork(t *testing.T) {
	f := setupTestFixture(t, &fakeLedger{validAccess: "never", refreshStatus: 200, refreshBody: `{"access":"A2"}`})
	require.NoError(t, f.store.SetCredentials("A1", ""))

	_, err := f.client.Get(context.Background(), "/thing/", nil)
	require.ErrorIs(t, err, errors.ErrSessionEnded)
	require.Zero(t, f.ledger.refreshCalls.Load())
	require.EqualValues(t, 1, f.evicted.Load())
}

func TestRefreshWithoutAccessInResponseEndsSession(t *testing.T) {
	f := setupTestFixture(t, &fakeLedger{validAccess: "A2", refreshStatus: 200, refreshBody: `{"refresh":"R2"}`})
	require.NoError(t, f.store.SetCredentials("A1", "R1"))

	_, err := f.client.Get(context.Background(), "/thing/", nil)
	require.ErrorIs(t, err, errors.ErrSessionEnded)
	require.EqualValues(t, 1, f.ledger.thingCalls.Load())
}

func TestSecondUnauthorizedSurfacesRetryError(t *testing.T) {
	// refresh succeeds but the ledger still rejects the new credential
	f := setupTestFixture(t, &fakeLedger{validAccess: "never", refreshStatus: 200, refreshBody: `{"access":"A2"}`})
	require.NoError(t, f.store.SetCredentials("A1", "R1"))

	_, err := f.client.Get(context.Background(), "/thing/", nil)
	require.Error(t, err)
	require.False(t, gateway.IsSessionEnded(err))

	apiErr, ok := gateway.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "token_not_valid", apiErr.Code)
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)

	require.EqualValues(t, 2, f.ledger.thingCalls.Load())
	require.EqualValues(t, 1, f.ledger.refreshCalls.Load())
	require.Zero(t, f.evicted.Load())
	require.Equal(t, "A2", f.store.GetCredentials().Access)
}

func TestTransportFailureIsNormalized(t *testing.T) {
	f := setupTestFixture(t, &fakeLedger{validAccess: "A1", refreshStatus: 200, refreshBody: `{"access":"A2"}`})
	require.NoError(t, f.store.SetCredentials("A1", "R1"))
	f.server.Close()

	_, err := f.client.Get(context.Background(), "/thing/", nil)
	apiErr, ok := gateway.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, gateway.CannotConnectDetail, apiErr.Detail)
	require.Equal(t, gateway.CannotConnectDetail, apiErr.Message())
	require.ErrorIs(t, err, errors.ErrCannotConnect)

	require.Zero(t, f.ledger.refreshCalls.Load())
	require.Zero(t, f.evicted.Load())
	require.True(t, f.store.IsAuthenticated())
}

func TestCancelledContextDoesNotEndSession(t *testing.T) {
	f := setupTestFixture(t, &fakeLedger{validAccess: "A1", refreshStatus: 200, refreshBody: `{"access":"A2"}`})
	require.NoError(t, f.store.SetCredentials("A1", "R1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.client.Get(ctx, "/thing/", nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, f.evicted.Load())
	require.True(t, f.store.IsAuthenticated())
}

func TestCallerHeadersMayOverrideButNotSuppressAuthorization(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization")+"|"+r.Header.Get("Content-Type")+"|"+r.Header.Get("X-Trace"))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	store := sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop())
	require.NoError(t, store.SetCredentials("A1", "R1"))
	client := gateway.New(server.URL, store)

	ctx := context.Background()
	_, err := client.Do(ctx, gateway.Request{Path: "/x/", Header: http.Header{"Authorization": {""}, "X-Trace": {"t1"}}})
	require.NoError(t, err)
	_, err = client.Do(ctx, gateway.Request{Path: "/x/", Header: http.Header{"Authorization": {"Bearer other"}}})
	require.NoError(t, err)

	require.Equal(t, []string{
		"Bearer A1|application/json|t1",
		"Bearer other|application/json|",
	}, seen)
}

func TestNoStoredCredentialSendsNoAuthorization(t *testing.T) {
	var auth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	client := gateway.New(server.URL, sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop()))
	body, err := client.Get(context.Background(), "/x/", nil)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(body))
	require.Equal(t, []string{""}, auth)
}

func TestApplicationErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetail  string
	}{
		{"field errors preferred", 400, `{"username":["A user with that username already exists."],"detail":"Bad request"}`, "A user with that username already exists.", "Bad request"},
		{"detail only", 404, `{"detail":"Customer not found or not assigned to you."}`, "Customer not found or not assigned to you.", "Customer not found or not assigned to you."},
		{"non field errors", 400, `{"non_field_errors":["Insufficient balance."]}`, "Insufficient balance.", ""},
		{"top level list", 400, `["Something is off."]`, "Something is off.", ""},
		{"html body", 502, `<html>Bad Gateway</html>`, "Error 502", "Error 502"},
		{"empty body", 500, ``, "Error 500", "Error 500"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			store := sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop())
			require.NoError(t, store.SetCredentials("A1", "R1"))
			client := gateway.New(server.URL, store)

			_, err := client.Post(context.Background(), "/x/", map[string]string{"k": "v"})
			apiErr, ok := gateway.AsAPIError(err)
			require.True(t, ok)
			require.Equal(t, tc.status, apiErr.Status)
			require.Equal(t, tc.wantMessage, apiErr.Message())
			require.Equal(t, tc.wantDetail, apiErr.Detail)
			require.True(t, store.IsAuthenticated())
		})
	}
}

func TestFieldMessagePreference(t *testing.T) {
	apiErr := &gateway.APIError{Status: 400, Detail: "d", Fields: map[string][]string{"email": {"Enter a valid email address."}}}
	require.Equal(t, "Enter a valid email address.", apiErr.FieldMessage("username", "email"))
	require.Equal(t, "", apiErr.FieldMessage("username"))
}

func TestConcurrentCallsNeverRetryMoreThanOnce(t *testing.T) {
	for _, dedup := range []bool{true, false} {
		t.Run(map[bool]string{true: "dedup", false: "independent"}[dedup], func(t *testing.T) {
			const callers = 2
			var (
				arrived  atomic.Int32
				release  = make(chan struct{})
				thing    atomic.Int32
				refreshN atomic.Int32
			)
			mux := http.NewServeMux()
			mux.HandleFunc("GET /thing/", func(w http.ResponseWriter, r *http.Request) {
				thing.Add(1)
				if r.Header.Get("Authorization") == "Bearer A1" {
					if arrived.Add(1) == callers {
						close(release)
					}
					<-release
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				_, _ = w.Write([]byte(`{}`))
			})
			mux.HandleFunc("POST /token/refresh/", func(w http.ResponseWriter, r *http.Request) {
				refreshN.Add(1)
				_, _ = w.Write([]byte(`{"access":"A2"}`))
			})
			server := httptest.NewServer(mux)
			t.Cleanup(server.Close)

			store := sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop())
			require.NoError(t, store.SetCredentials("A1", "R1"))
			client := gateway.New(server.URL, store, gateway.WithRefreshDedup(dedup))

			var wg sync.WaitGroup
			errs := make([]error, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = client.Get(context.Background(), "/thing/", nil)
				}(i)
			}
			wg.Wait()

			for _, err := range errs {
				require.NoError(t, err)
			}
			require.EqualValues(t, 2*callers, thing.Load(), "one original and one retry per call")
			require.GreaterOrEqual(t, refreshN.Load(), int32(1))
			require.LessOrEqual(t, refreshN.Load(), int32(callers))
			if !dedup {
				require.EqualValues(t, callers, refreshN.Load())
			}
		})
	}
}

func TestExchangeNeverAttachesStoredCredential(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
	}))
	t.Cleanup(server.Close)

	store := sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop())
	require.NoError(t, store.SetCredentials("A1", "R1"))
	client := gateway.New(server.URL, store)

	var out gateway.TokenPair
	err := client.Exchange(context.Background(), gateway.TokenPath, map[string]string{"username": "x", "password": "y"}, &out)
	apiErr, ok := gateway.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, "No active account found with the given credentials", apiErr.Message())
	require.Empty(t, auth)
	require.True(t, store.IsAuthenticated(), "a failed exchange does not touch the session")
}

// blockingRefreshLedger rejects A1 on /thing/ and holds every refresh until
// release is closed. refreshing is closed when the first refresh arrives.
type blockingRefreshLedger struct {
	thing      atomic.Int32
	refreshing chan struct{}
	release    chan struct{}
	once       sync.Once
}

func newBlockingRefreshLedger(t *testing.T) (*blockingRefreshLedger, *httptest.Server) {
	l := &blockingRefreshLedger{refreshing: make(chan struct{}), release: make(chan struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /thing/", func(w http.ResponseWriter, r *http.Request) {
		l.thing.Add(1)
		if r.Header.Get("Authorization") != "Bearer A2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("POST /token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		l.once.Do(func() { close(l.refreshing) })
		<-l.release
		_, _ = w.Write([]byte(`{"access":"A2","refresh":"R2"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return l, server
}

func TestLogoutDuringRefreshIsNotUndone(t *testing.T) {
	for _, dedup := range []bool{true, false} {
		t.Run(map[bool]string{true: "dedup", false: "independent"}[dedup], func(t *testing.T) {
			l, server := newBlockingRefreshLedger(t)
			store := sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop())
			require.NoError(t, store.SetCredentials("A1", "R1"))
			require.NoError(t, store.SetPrincipal(&users.Principal{ID: 1, Username: "admin", Role: users.RoleSuperAdmin}))

			var ended atomic.Int32
			client := gateway.New(server.URL, store,
				gateway.WithRefreshDedup(dedup),
				gateway.WithSessionEnded(func(context.Context) { ended.Add(1) }),
			)

			errs := make(chan error, 1)
			go func() {
				_, err := client.Get(context.Background(), "/thing/", nil)
				errs <- err
			}()

			<-l.refreshing
			require.NoError(t, store.Clear())
			close(l.release)

			err := <-errs
			require.ErrorIs(t, err, errors.ErrSessionEnded)
			require.Equal(t, sessions.CredentialPair{}, store.GetCredentials())
			require.False(t, store.IsAuthenticated())
			require.Nil(t, store.GetPrincipal())
			require.EqualValues(t, 1, l.thing.Load(), "nothing is retried once the session is gone")
			require.Zero(t, ended.Load(), "logout already navigated away")
		})
	}
}

func TestLoginDuringRefreshKeepsNewSession(t *testing.T) {
	l, server := newBlockingRefreshLedger(t)
	store := sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop())
	require.NoError(t, store.SetCredentials("A1", "R1"))
	client := gateway.New(server.URL, store)

	errs := make(chan error, 1)
	go func() {
		_, err := client.Get(context.Background(), "/thing/", nil)
		errs <- err
	}()

	<-l.refreshing
	require.NoError(t, store.Clear())
	require.NoError(t, store.SetCredentials("B1", "S1"))
	close(l.release)

	err := <-errs
	require.False(t, gateway.IsSessionEnded(err))
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
	require.Equal(t, sessions.CredentialPair{Access: "B1", Refresh: "S1"}, store.GetCredentials())
}

func TestConcurrentRefreshFailuresEndSessionOnce(t *testing.T) {
	for _, dedup := range []bool{true, false} {
		t.Run(map[bool]string{true: "dedup", false: "independent"}[dedup], func(t *testing.T) {
			const callers = 3
			var (
				arrived  atomic.Int32
				release  = make(chan struct{})
				refreshN atomic.Int32
				ended    atomic.Int32
			)
			mux := http.NewServeMux()
			mux.HandleFunc("GET /thing/", func(w http.ResponseWriter, r *http.Request) {
				if arrived.Add(1) == callers {
					close(release)
				}
				<-release
				w.WriteHeader(http.StatusUnauthorized)
			})
			mux.HandleFunc("POST /token/refresh/", func(w http.ResponseWriter, r *http.Request) {
				refreshN.Add(1)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired","code":"token_not_valid"}`))
			})
			server := httptest.NewServer(mux)
			t.Cleanup(server.Close)

			store := sessions.New(fakesessionrepo.NewFakeSlotRepo(), zerolog.Nop())
			require.NoError(t, store.SetCredentials("A1", "R1"))
			client := gateway.New(server.URL, store,
				gateway.WithRefreshDedup(dedup),
				gateway.WithSessionEnded(func(context.Context) { ended.Add(1) }),
			)

			var wg sync.WaitGroup
			errs := make([]error, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = client.Get(context.Background(), "/thing/", nil)
				}(i)
			}
			wg.Wait()

			for _, err := range errs {
				require.ErrorIs(t, err, errors.ErrSessionEnded)
			}
			require.EqualValues(t, 1, ended.Load())
			require.False(t, store.IsAuthenticated())
			require.LessOrEqual(t, refreshN.Load(), int32(callers))
		})
	}
}
