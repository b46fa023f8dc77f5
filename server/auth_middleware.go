package server

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated *users.User
const ContextKeyUser ContextKey = "user"

const (
	detailNoCredentials  = "Authentication credentials were not provided."
	detailTokenNotValid  = "Given token not valid for any token type"
	detailUserNotFound   = "User not found"
	detailNoPermission   = "You do not have permission to perform this action."
	codeTokenNotValid    = "token_not_valid"
	codeUserNotFound     = "user_not_found"
	codeNotAuthenticated = "not_authenticated"
)

// RequireAuth validates the Bearer access token and injects the user it names.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeCodedDetail(w, http.StatusUnauthorized, detailNoCredentials, codeNotAuthenticated)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				writeCodedDetail(w, http.StatusUnauthorized, detailNoCredentials, codeNotAuthenticated)
				return
			}

			claims, err := s.tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("access token rejected")
				writeCodedDetail(w, http.StatusUnauthorized, detailTokenNotValid, codeTokenNotValid)
				return
			}

			user, err := s.repos.Users.GetByID(claims.UserID)
			if err != nil || !user.IsActive {
				writeCodedDetail(w, http.StatusUnauthorized, detailUserNotFound, codeUserNotFound)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole authenticates the request and then checks the user's role.
func (s *Server) RequireRole(roles ...users.Role) []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RequireAuth(),
		func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				user, err := userFromContext(r.Context())
				if err != nil || !slices.Contains(roles, user.Role) {
					writeDetail(w, http.StatusForbidden, detailNoPermission)
					return
				}
				next(w, r)
			}
		},
	}
}

func userFromContext(ctx context.Context) (*users.User, error) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	if !ok || user == nil {
		return nil, errors.ErrNotAuthenticated
	}
	return user, nil
}
