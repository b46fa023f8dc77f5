package jwt

import (
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-bank-session/internal/config"
	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const TokenTypeAccess = "access"

// Claims are the access token claims issued by the development ledger.
type Claims struct {
	TokenType string `json:"token_type"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	jwtlib.RegisteredClaims
}

// Creator issues and verifies HS256 access tokens.
type Creator struct {
	config config.TokenConfig
	key    []byte
}

// NewCreator creates a new JWT creator
func NewCreator(cfg config.TokenConfig) *Creator {
	return &Creator{
		config: cfg,
		key:    []byte(cfg.GetSigningKey()),
	}
}

// CreateAccessToken creates a signed access token for user
func (c *Creator) CreateAccessToken(user *users.User) (*string, error) {
	now := NowTimeFunc()
	claims := Claims{
		TokenType: TokenTypeAccess,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.config.GetAccessTokenExpiry())),
			ID:        uuid.New().String(),
		},
	}

	signedToken, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return &signedToken, nil
}

// Verify checks the signature, expiry and token type of an access token
func (c *Creator) Verify(rawToken string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(rawToken, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.key, nil
	}, jwtlib.WithTimeFunc(NowTimeFunc), jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}
	if !token.Valid || claims.TokenType != TokenTypeAccess {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}
