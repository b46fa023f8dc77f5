package access

import (
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/jrsteele09/go-bank-session/sessions"
	"github.com/jrsteele09/go-bank-session/users"
	"github.com/rs/zerolog"
)

// Reason explains a gate decision.
type Reason string

const (
	ReasonAllowed              Reason = "allowed"
	ReasonUnauthenticated      Reason = "unauthenticated"
	ReasonAlreadyAuthenticated Reason = "already_authenticated"
	ReasonRoleNotPermitted     Reason = "role_not_permitted"
	ReasonUnknownRoute         Reason = "unknown_route"
)

// Decision is the outcome of one navigation. Redirect is empty when the
// requested view should be rendered.
type Decision struct {
	Path     string
	Redirect string
	Reason   Reason
}

func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Target is the view that ends up on screen.
func (d Decision) Target() string {
	if d.Redirect != "" {
		return d.Redirect
	}
	return d.Path
}

// Gate evaluates every navigation against the session and the capability table.
type Gate struct {
	store    sessions.Store
	enforcer casbin.IEnforcer
	logger   zerolog.Logger
}

func NewGate(store sessions.Store, logger zerolog.Logger) (*Gate, error) {
	enforcer, err := newEnforcer()
	if err != nil {
		return nil, err
	}
	return &Gate{
		store:    store,
		enforcer: enforcer,
		logger:   logger.With().Str("component", "gate").Logger(),
	}, nil
}

// Decide must be called on every navigation, including deep links.
func (g *Gate) Decide(path string) Decision {
	path = normalizePath(path)
	authenticated := g.store.IsAuthenticated()

	if path == EntryPoint {
		if authenticated {
			return Decision{Path: path, Redirect: Landing, Reason: ReasonAlreadyAuthenticated}
		}
		return Decision{Path: path, Reason: ReasonAllowed}
	}

	if !IsProtected(path) {
		redirect := EntryPoint
		if authenticated {
			redirect = Landing
		}
		return Decision{Path: path, Redirect: redirect, Reason: ReasonUnknownRoute}
	}

	if !authenticated {
		return Decision{Path: path, Redirect: EntryPoint, Reason: ReasonUnauthenticated}
	}

	role := users.Role("")
	if p := g.store.GetPrincipal(); p != nil {
		role = p.Role
	}
	if !g.Can(role, path) {
		g.logger.Debug().Str("role", string(role)).Str("path", path).Msg("view not permitted for role")
		return Decision{Path: path, Redirect: Landing, Reason: ReasonRoleNotPermitted}
	}
	return Decision{Path: path, Reason: ReasonAllowed}
}

// Can reports whether role may open path. Unknown roles only get the common views.
func (g *Gate) Can(role users.Role, path string) bool {
	subject := string(role)
	if !role.Valid() {
		subject = subjectAuthenticated
	}
	ok, err := g.enforcer.Enforce(subject, normalizePath(path), actionView)
	if err != nil {
		g.logger.Error().Err(err).Str("path", path).Msg("policy evaluation failed")
		return false
	}
	return ok
}

func normalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
