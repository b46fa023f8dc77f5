package client

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jrsteele09/go-bank-session/access"
	"github.com/jrsteele09/go-bank-session/auth"
	"github.com/jrsteele09/go-bank-session/gateway"
	"github.com/jrsteele09/go-bank-session/internal/config"
	"github.com/jrsteele09/go-bank-session/ledger"
	"github.com/jrsteele09/go-bank-session/sessions"
	"github.com/jrsteele09/go-bank-session/sessions/boltrepo"
	"github.com/jrsteele09/go-bank-session/sessions/filerepo"
	"github.com/jrsteele09/go-bank-session/sessions/memrepo"
	"github.com/rs/zerolog"
)

const apiPathSuffix = "/api"

// Provider lazily builds the session store and the clients that share it.
// Everything it hands out is bound to one profile's session.
type Provider struct {
	cfg     config.ClientConfig
	baseURL string
	logger  zerolog.Logger
	nav     auth.Navigator

	storeOnce sync.Once
	store     *sessions.Session
	closer    io.Closer
	storeErr  error

	gatewayOnce sync.Once
	gateway     *gateway.Client
	gatewayErr  error

	gateOnce sync.Once
	gate     *access.Gate
	gateErr  error
}

// NewProvider constructs a Provider for the given client settings.
func NewProvider(cfg config.ClientConfig, logger zerolog.Logger) *Provider {
	return &Provider{
		cfg:     cfg,
		baseURL: cfg.GetAPIBaseURL(),
		logger:  logger,
	}
}

// SetServerURL overrides the configured ledger URL. The "/api" root is appended.
func (p *Provider) SetServerURL(serverURL string) {
	if serverURL == "" {
		return
	}
	p.baseURL = strings.TrimRight(serverURL, "/") + apiPathSuffix
}

// SetNavigator sets where the user is sent on logout or when the session ends.
func (p *Provider) SetNavigator(nav auth.Navigator) {
	p.nav = nav
}

func (p *Provider) BaseURL() string {
	return p.baseURL
}

// Store opens the configured session store.
func (p *Provider) Store() (*sessions.Session, error) {
	p.storeOnce.Do(func() {
		repo, closer, err := openRepo(p.cfg)
		if err != nil {
			p.storeErr = err
			return
		}
		p.store = sessions.New(repo, p.logger)
		p.closer = closer
	})
	return p.store, p.storeErr
}

// Gateway returns the authenticated client for the ledger API.
func (p *Provider) Gateway() (*gateway.Client, error) {
	p.gatewayOnce.Do(func() {
		store, err := p.Store()
		if err != nil {
			p.gatewayErr = err
			return
		}
		p.gateway = gateway.New(p.baseURL, store,
			gateway.WithTimeout(p.cfg.GetHTTPTimeout()),
			gateway.WithRefreshDedup(p.cfg.GetRefreshDedup()),
			gateway.WithSessionEnded(auth.RedirectToEntry(p.nav)),
			gateway.WithLogger(p.logger),
		)
	})
	return p.gateway, p.gatewayErr
}

func (p *Provider) Auth() (*auth.Service, error) {
	gw, err := p.Gateway()
	if err != nil {
		return nil, err
	}
	return auth.NewService(gw, auth.WithLogger(p.logger), auth.WithNavigator(p.nav)), nil
}

func (p *Provider) Ledger() (*ledger.Client, error) {
	gw, err := p.Gateway()
	if err != nil {
		return nil, err
	}
	return ledger.New(gw), nil
}

func (p *Provider) Gate() (*access.Gate, error) {
	p.gateOnce.Do(func() {
		store, err := p.Store()
		if err != nil {
			p.gateErr = err
			return
		}
		p.gate, p.gateErr = access.NewGate(store, p.logger)
	})
	return p.gate, p.gateErr
}

// Close releases the session store. It is safe to call when nothing was opened.
func (p *Provider) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer.Close()
	p.closer = nil
	return err
}

func openRepo(cfg config.ClientConfig) (sessions.Repo, io.Closer, error) {
	switch cfg.GetSessionStore() {
	case config.SessionStoreFile:
		repo, err := filerepo.New(cfg.GetSessionPath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create session store: %w", err)
		}
		return repo, nil, nil
	case config.SessionStoreBolt:
		repo, err := boltrepo.NewRepositoryFromFile(cfg.GetSessionPath(), boltrepo.DefaultBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session store: %w", err)
		}
		return repo, repo, nil
	case config.SessionStoreMemory:
		return memrepo.New(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown session store %q", cfg.GetSessionStore())
}
