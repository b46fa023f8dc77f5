// Package server is a development stand-in for the bank ledger API. It
// implements the token contract and the role-scoped resources over seeded
// in-memory fixtures so the client can be exercised end to end.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-bank-session/internal/config"
	"github.com/jrsteele09/go-bank-session/server/bookrepo"
	"github.com/jrsteele09/go-bank-session/token/jwt"
	"github.com/jrsteele09/go-bank-session/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-bank-session/token/refresh/repofake"
	"github.com/jrsteele09/go-bank-session/users"
	fakeuserrepo "github.com/jrsteele09/go-bank-session/users/repofake"
	"github.com/rs/zerolog"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Repos groups the stores behind the development ledger.
type Repos struct {
	Users         users.UserRepo
	RefreshTokens refresh.Repo
	Book          bookrepo.Repo
}

func NewInMemoryRepos() Repos {
	return Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
		Book:          bookrepo.NewInMemoryRepo(),
	}
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	router  chi.Router
	routes  []string
	config  config.Config
	repos   Repos
	tokens  *jwt.Creator
	refresh *refresh.Manager
	logger  zerolog.Logger
	seed    bool
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithoutSeed starts with empty repos instead of the demo fixtures.
func WithoutSeed() Option {
	return func(s *Server) { s.seed = false }
}

func New(cfg config.Config, repos Repos, opts ...Option) (*Server, error) {
	s := &Server{
		env:     cfg.GetEnv(),
		router:  chi.NewRouter(),
		config:  cfg,
		repos:   repos,
		tokens:  jwt.NewCreator(cfg),
		refresh: refresh.NewManager(repos.RefreshTokens, cfg),
		logger:  zerolog.Nop(),
		seed:    true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "devserver").Logger()

	if s.seed {
		if err := s.InitialiseSystem(); err != nil {
			return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
		}
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	method, path := splitPattern(pattern)
	s.routes = append(s.routes, pattern)
	s.router.Method(method, path, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.RegisterRouteHandler(pattern, http.HandlerFunc(handler))
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path := splitPattern(route)
		s.logRoute(method, path)
	}
}

func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	s.logger.Info().Msgf("[%-19s] %s", displayMethod, path)
}

func splitPattern(pattern string) (method, path string) {
	parts := strings.SplitN(pattern, " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return http.MethodGet, parts[0]
}
