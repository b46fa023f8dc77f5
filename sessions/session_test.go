package sessions_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jrsteele09/go-bank-session/sessions"
	"github.com/jrsteele09/go-bank-session/sessions/boltrepo"
	"github.com/jrsteele09/go-bank-session/sessions/filerepo"
	"github.com/jrsteele09/go-bank-session/sessions/memrepo"
	fakesessionrepo "github.com/jrsteele09/go-bank-session/sessions/repofake"
	"github.com/jrsteele09/go-bank-session/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	open func(t *testing.T) sessions.Repo
}

func backends() []backend {
	return []backend{
		{"fake", func(t *testing.T) sessions.Repo {
			return fakesessionrepo.NewFakeSlotRepo()
		}},
		{"memory", func(t *testing.T) sessions.Repo {
			return memrepo.New()
		}},
		{"file", func(t *testing.T) sessions.Repo {
			r, err := filerepo.New(filepath.Join(t.TempDir(), "nested", "session.json"))
			require.NoError(t, err)
			return r
		}},
		{"bolt", func(t *testing.T) sessions.Repo {
			r, err := boltrepo.NewRepositoryFromFile(filepath.Join(t.TempDir(), "session.db"), "")
			require.NoError(t, err)
			t.Cleanup(func() { _ = r.Close() })
			return r
		}},
	}
}

func newSession(t *testing.T, repo sessions.Repo) *sessions.Session {
	t.Helper()
	return sessions.New(repo, zerolog.Nop())
}

func TestStoreContract(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("empty store", func(t *testing.T) {
				s := newSession(t, b.open(t))
				require.Equal(t, sessions.CredentialPair{}, s.GetCredentials())
				require.Nil(t, s.GetPrincipal())
				require.False(t, s.IsAuthenticated())
			})

			t.Run("round trip preserves refresh on access-only update", func(t *testing.T) {
				s := newSession(t, b.open(t))
				require.NoError(t, s.SetCredentials("a", "r"))
				require.Equal(t, sessions.CredentialPair{Access: "a", Refresh: "r"}, s.GetCredentials())

				require.NoError(t, s.SetCredentials("a2", ""))
				require.Equal(t, sessions.CredentialPair{Access: "a2", Refresh: "r"}, s.GetCredentials())
				require.True(t, s.IsAuthenticated())
			})

			t.Run("principal round trip", func(t *testing.T) {
				s := newSession(t, b.open(t))
				p := &users.Principal{ID: 1, Username: "admin", FirstName: "Subbu", LastName: "Admin", Role: users.RoleSuperAdmin, IsActive: true}
				require.NoError(t, s.SetPrincipal(p))

				got := s.GetPrincipal()
				require.NotNil(t, got)
				require.Equal(t, *p, *got)
			})

			t.Run("clear is idempotent", func(t *testing.T) {
				s := newSession(t, b.open(t))
				require.NoError(t, s.SetCredentials("a", "r"))
				require.NoError(t, s.SetPrincipal(&users.Principal{ID: 7, Username: "cust_ravi", Role: users.RoleCustomer}))

				require.NoError(t, s.Clear())
				require.Equal(t, sessions.CredentialPair{}, s.GetCredentials())
				require.Nil(t, s.GetPrincipal())

				require.NoError(t, s.Clear())
				require.Equal(t, sessions.CredentialPair{}, s.GetCredentials())
				require.Nil(t, s.GetPrincipal())
				require.False(t, s.IsAuthenticated())
			})

			t.Run("replace only while the exchanged session is stored", func(t *testing.T) {
				s := newSession(t, b.open(t))
				ok, err := s.ReplaceCredentials("r", "a2", "")
				require.NoError(t, err)
				require.False(t, ok, "nothing stored")

				require.NoError(t, s.SetCredentials("a", "r"))
				ok, err = s.ReplaceCredentials("other", "a2", "")
				require.NoError(t, err)
				require.False(t, ok)
				require.Equal(t, sessions.CredentialPair{Access: "a", Refresh: "r"}, s.GetCredentials())

				ok, err = s.ReplaceCredentials("r", "a2", "r2")
				require.NoError(t, err)
				require.True(t, ok)
				require.Equal(t, sessions.CredentialPair{Access: "a2", Refresh: "r2"}, s.GetCredentials())

				require.NoError(t, s.Clear())
				ok, err = s.ReplaceCredentials("r2", "a3", "")
				require.NoError(t, err)
				require.False(t, ok, "a cleared session is not resurrected")
				require.False(t, s.IsAuthenticated())
			})

			t.Run("clear only while the exchanged session is stored", func(t *testing.T) {
				s := newSession(t, b.open(t))
				require.NoError(t, s.SetCredentials("a", "r"))
				require.NoError(t, s.SetPrincipal(&users.Principal{ID: 2, Username: "rm_priya", Role: users.RoleRM}))

				ok, err := s.ClearIfRefresh("other")
				require.NoError(t, err)
				require.False(t, ok)
				require.True(t, s.IsAuthenticated())

				ok, err = s.ClearIfRefresh("r")
				require.NoError(t, err)
				require.True(t, ok)
				require.False(t, s.IsAuthenticated())
				require.Nil(t, s.GetPrincipal())

				ok, err = s.ClearIfRefresh("r")
				require.NoError(t, err)
				require.False(t, ok, "already cleared")
			})

			t.Run("survives reopen", func(t *testing.T) {
				repo := b.open(t)
				require.NoError(t, newSession(t, repo).SetCredentials("a", "r"))
				require.Equal(t, "a", newSession(t, repo).GetCredentials().Access)
			})
		})
	}
}

func TestSetCredentialsWritesAccessUnconditionally(t *testing.T) {
	s := newSession(t, fakesessionrepo.NewFakeSlotRepo())
	require.NoError(t, s.SetCredentials("a", "r"))

	require.NoError(t, s.SetCredentials("", ""))
	require.Equal(t, sessions.CredentialPair{Refresh: "r"}, s.GetCredentials())
	require.False(t, s.IsAuthenticated())
}

func TestMalformedPrincipalIsAbsent(t *testing.T) {
	repo := fakesessionrepo.NewFakeSlotRepo()
	s := newSession(t, repo)

	for _, raw := range []string{"{not json", "null", "{}", `"just a string"`} {
		repo.Raw(sessions.KeyPrincipal, raw)
		require.Nil(t, s.GetPrincipal(), raw)
	}
}

func TestFileRepoCorruptDocumentReadsAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	repo, err := filerepo.New(path)
	require.NoError(t, err)
	require.NoError(t, writeFile(path, "garbage"))

	s := newSession(t, repo)
	require.Equal(t, sessions.CredentialPair{}, s.GetCredentials())

	require.NoError(t, s.SetCredentials("a", "r"))
	require.Equal(t, "r", s.GetCredentials().Refresh)

	require.NoError(t, s.Clear())
	require.NoFileExists(t, path)
}

func TestUnreadableRepoNeverFailsReads(t *testing.T) {
	repo := fakesessionrepo.NewFakeSlotRepo()
	repo.Fail = errors.New("disk on fire")
	s := newSession(t, repo)

	require.Equal(t, sessions.CredentialPair{}, s.GetCredentials())
	require.Nil(t, s.GetPrincipal())
	require.False(t, s.IsAuthenticated())
	require.Error(t, s.SetCredentials("a", "r"))
}

func TestConcurrentWritesAreVisible(t *testing.T) {
	s := newSession(t, fakesessionrepo.NewFakeSlotRepo())
	require.NoError(t, s.SetCredentials("a0", "r0"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SetCredentials("a1", "")
			_ = s.GetCredentials()
		}()
	}
	wg.Wait()
	require.Equal(t, sessions.CredentialPair{Access: "a1", Refresh: "r0"}, s.GetCredentials())
}

func TestTokenSource(t *testing.T) {
	s := newSession(t, fakesessionrepo.NewFakeSlotRepo())
	ts := sessions.TokenSource(s)

	_, err := ts.Token()
	require.Error(t, err)

	require.NoError(t, s.SetCredentials("a", "r"))
	tok, err := ts.Token()
	require.NoError(t, err)
	require.Equal(t, "a", tok.AccessToken)
	require.Equal(t, "r", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())
}
