package sessions

import (
	"encoding/json"
	"sync"

	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/users"
	"github.com/rs/zerolog"
)

// CredentialPair holds the opaque access and refresh credentials. Empty means absent.
type CredentialPair struct {
	Access  string
	Refresh string
}

func (c CredentialPair) HasAccess() bool  { return c.Access != "" }
func (c CredentialPair) HasRefresh() bool { return c.Refresh != "" }

// Store is the credential store shared by the gateway, the session controller and the access gate.
type Store interface {
	// GetCredentials never fails; unreadable slots read as absent
	GetCredentials() CredentialPair

	// SetCredentials writes access, and refresh only when non-empty
	SetCredentials(access, refresh string) error

	// ReplaceCredentials is SetCredentials that only writes while a session
	// exists and its refresh credential still equals expectedRefresh.
	ReplaceCredentials(expectedRefresh, access, refresh string) (bool, error)

	// GetPrincipal returns nil when no principal is cached or the cached value is malformed
	GetPrincipal() *users.Principal
	SetPrincipal(p *users.Principal) error

	// Clear removes credentials and principal together
	Clear() error

	// ClearIfRefresh is Clear that only runs while a session exists and its
	// refresh credential still equals expectedRefresh.
	ClearIfRefresh(expectedRefresh string) (bool, error)

	// IsAuthenticated is a presence check on the access credential only
	IsAuthenticated() bool
}

var _ Store = (*Session)(nil)

// Session is the single per-profile Store backed by a slot Repo.
type Session struct {
	repo   Repo
	logger zerolog.Logger
	lock   sync.RWMutex
}

func New(repo Repo, logger zerolog.Logger) *Session {
	return &Session{
		repo:   repo,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

func (s *Session) GetCredentials() CredentialPair {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return CredentialPair{
		Access:  s.read(KeyAccess),
		Refresh: s.read(KeyRefresh),
	}
}

func (s *Session) SetCredentials(access, refresh string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return errors.Wrapf(s.repo.Put(credentialSlots(access, refresh)), "set credentials")
}

func (s *Session) ReplaceCredentials(expectedRefresh, access, refresh string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.holds(expectedRefresh) {
		return false, nil
	}
	return true, errors.Wrapf(s.repo.Put(credentialSlots(access, refresh)), "replace credentials")
}

func (s *Session) GetPrincipal() *users.Principal {
	s.lock.RLock()
	raw := s.read(KeyPrincipal)
	s.lock.RUnlock()
	if raw == "" {
		return nil
	}

	var p users.Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn().Err(err).Msg("cached principal is malformed, treating as absent")
		return nil
	}
	if p.Username == "" && p.ID == 0 {
		return nil
	}
	return &p
}

func (s *Session) SetPrincipal(p *users.Principal) error {
	if p == nil {
		s.lock.Lock()
		defer s.lock.Unlock()
		return errors.Wrapf(s.repo.Delete(KeyPrincipal), "clear principal")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrapf(err, "marshal principal")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	return errors.Wrapf(s.repo.Put(map[string]string{KeyPrincipal: string(data)}), "set principal")
}

func (s *Session) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return errors.Wrapf(s.repo.Delete(Keys...), "clear session")
}

func (s *Session) ClearIfRefresh(expectedRefresh string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.holds(expectedRefresh) {
		return false, nil
	}
	return true, errors.Wrapf(s.repo.Delete(Keys...), "clear session")
}

func (s *Session) IsAuthenticated() bool {
	return s.GetCredentials().HasAccess()
}

func credentialSlots(access, refresh string) map[string]string {
	values := map[string]string{KeyAccess: access}
	if refresh != "" {
		values[KeyRefresh] = refresh
	}
	return values
}

// holds reports whether a session exists that was issued expectedRefresh.
// It must be called with the lock held.
func (s *Session) holds(expectedRefresh string) bool {
	return s.read(KeyAccess) != "" && s.read(KeyRefresh) == expectedRefresh
}

// read must be called with the lock held.
func (s *Session) read(key string) string {
	v, ok, err := s.repo.Get(key)
	if err != nil {
		s.logger.Warn().Err(err).Str("slot", key).Msg("session slot unreadable, treating as absent")
		return ""
	}
	if !ok {
		return ""
	}
	return v
}
