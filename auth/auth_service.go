package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-bank-session/access"
	"github.com/jrsteele09/go-bank-session/gateway"
	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/sessions"
	"github.com/jrsteele09/go-bank-session/users"
	"github.com/rs/zerolog"
)

// Service is the session controller: it logs users in and out and keeps the
// cached principal in step with the credential pair.
type Service struct {
	client *gateway.Client
	store  sessions.Store
	nav    Navigator
	logger zerolog.Logger
}

type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

func WithNavigator(nav Navigator) ServiceOption {
	return func(s *Service) { s.nav = nav }
}

func NewService(client *gateway.Client, opts ...ServiceOption) *Service {
	s := &Service{
		client: client,
		store:  client.Store(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "auth").Logger()
	return s
}

// Login exchanges username and password for a credential pair, stores it and
// caches the principal from /me/. If the identity fetch fails the credential
// pair stays stored; EnsurePrincipal recovers the principal later.
func (s *Service) Login(ctx context.Context, username, password string) (*users.Principal, error) {
	username = strings.TrimSpace(username)

	var tokens gateway.TokenPair
	err := s.client.Exchange(ctx, gateway.TokenPath, map[string]string{
		"username": username,
		"password": password,
	}, &tokens)
	if err != nil {
		s.logger.Info().Str("username", username).Err(err).Msg("login rejected")
		return nil, err
	}
	if tokens.Access == "" {
		return nil, ErrEmptyAccessCredential
	}

	// A previous session's principal must not survive into this one.
	if err := s.store.Clear(); err != nil {
		return nil, errors.Wrapf(err, "login")
	}
	if err := s.store.SetCredentials(tokens.Access, tokens.Refresh); err != nil {
		return nil, errors.Wrapf(err, "login")
	}

	p, err := s.fetchPrincipal(ctx)
	if err != nil {
		s.logger.Warn().Str("username", username).Err(err).Msg("logged in but identity fetch failed")
		return nil, err
	}
	s.logger.Info().Str("username", p.Username).Str("role", string(p.Role)).Msg("logged in")
	return p, nil
}

// Logout clears the local session and returns to the entry point. The ledger
// is not contacted, so the refresh credential stays valid server side until it expires.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(); err != nil {
		return errors.Wrapf(err, "logout")
	}
	if s.nav != nil {
		s.nav.Navigate(ctx, access.EntryPoint)
	}
	s.logger.Info().Msg("logged out")
	return nil
}

// Principal returns the cached principal, or nil.
func (s *Service) Principal() *users.Principal {
	return s.store.GetPrincipal()
}

// EnsurePrincipal returns the cached principal, fetching /me/ when the session
// has credentials but nothing cached.
func (s *Service) EnsurePrincipal(ctx context.Context) (*users.Principal, error) {
	if p := s.store.GetPrincipal(); p != nil {
		return p, nil
	}
	if !s.store.IsAuthenticated() {
		return nil, ErrNoSession
	}
	return s.fetchPrincipal(ctx)
}

func (s *Service) fetchPrincipal(ctx context.Context) (*users.Principal, error) {
	p, err := gateway.Call[users.Principal](ctx, s.client, gateway.Request{Method: http.MethodGet, Path: gateway.MePath})
	if err != nil {
		return nil, err
	}
	if err := s.store.SetPrincipal(&p); err != nil {
		return nil, errors.Wrapf(err, "cache principal")
	}
	return &p, nil
}
