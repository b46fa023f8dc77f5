package server

import (
	"net/http"

	"github.com/jrsteele09/go-bank-session/gateway"
	"github.com/jrsteele09/go-bank-session/users"
)

const (
	detailNoActiveAccount = "No active account found with the given credentials"
	detailTokenInvalid    = "Token is invalid or expired"
	codeNoActiveAccount   = "no_active_account"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenHandler exchanges a username and password for an access/refresh pair.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if !decodeBody(w, r, &req) {
			return
		}
		fe := fieldErrors{}
		fe.required("username", req.Username)
		fe.required("password", req.Password)
		if fe.write(w) {
			return
		}

		user, err := s.repos.Users.GetByUsername(req.Username)
		if err != nil || !user.IsActive || !user.CheckPassword(req.Password) {
			s.logger.Info().Str("username", req.Username).Msg("token request rejected")
			writeCodedDetail(w, http.StatusUnauthorized, detailNoActiveAccount, codeNoActiveAccount)
			return
		}

		pair, err := s.issueTokens(user)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to issue tokens")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}
		s.logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("tokens issued")
		writeJSON(w, http.StatusOK, pair)
	}
}

// TokenRefreshHandler renews the access token. The refresh token is only
// returned when rotation is enabled.
func (s *Server) TokenRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if !decodeBody(w, r, &req) {
			return
		}
		fe := fieldErrors{}
		fe.required("refresh", req.Refresh)
		if fe.write(w) {
			return
		}

		rt, err := s.refresh.Validate(req.Refresh)
		if err != nil {
			s.logger.Info().Err(err).Msg("refresh rejected")
			writeCodedDetail(w, http.StatusUnauthorized, detailTokenInvalid, codeTokenNotValid)
			return
		}
		user, err := s.repos.Users.GetByID(rt.UserID)
		if err != nil || !user.IsActive {
			writeCodedDetail(w, http.StatusUnauthorized, detailTokenInvalid, codeTokenNotValid)
			return
		}

		access, err := s.tokens.CreateAccessToken(user)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create access token")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}
		pair := gateway.TokenPair{Access: *access}

		rotated, err := s.refresh.Rotate(rt)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to rotate refresh token")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}
		if rotated != nil {
			pair.Refresh = *rotated
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

func (s *Server) issueTokens(user *users.User) (*gateway.TokenPair, error) {
	access, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.refresh.Create(user.ID)
	if err != nil {
		return nil, err
	}
	return &gateway.TokenPair{Access: *access, Refresh: *refreshToken}, nil
}

// IssueTokens signs a fresh pair for username. It lets tests and tooling
// start from an authenticated state without a password.
func (s *Server) IssueTokens(username string) (*gateway.TokenPair, error) {
	user, err := s.repos.Users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}
