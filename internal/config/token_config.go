package config

import (
	"fmt"
	"time"
)

// TokenConfig covers the development ledger server's token issuance.
type TokenConfig interface {
	GetPort() string
	GetAppName() string
	GetSigningKey() string
	GetRefreshTokenLength() int
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRotateRefreshTokens() bool
}

type Tokens struct {
	Port               string        `env:"PORT" envDefault:"8000"`
	AppName            string        `env:"APP_NAME" envDefault:"Bank Dev Ledger"`
	SigningKey         string        `env:"DEV_SIGNING_KEY" envDefault:"dev-only-signing-key-change-me"`
	RefreshTokenLength int           `env:"DEV_REFRESH_TOKEN_LENGTH" envDefault:"32"`
	AccessTokenExpiry  time.Duration `env:"DEV_ACCESS_TTL" envDefault:"30m"`
	RefreshTokenExpiry time.Duration `env:"DEV_REFRESH_TTL" envDefault:"24h"`
	RotateRefresh      bool          `env:"DEV_ROTATE_REFRESH" envDefault:"false"`
}

var _ TokenConfig = Tokens{}

func (t Tokens) GetPort() string {
	port := t.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (t Tokens) GetAppName() string {
	return t.AppName
}

func (t Tokens) GetSigningKey() string {
	return t.SigningKey
}

func (t Tokens) GetRefreshTokenLength() int {
	return t.RefreshTokenLength // bytes, hex encoded on the wire
}

func (t Tokens) GetAccessTokenExpiry() time.Duration {
	return t.AccessTokenExpiry
}

func (t Tokens) GetRefreshTokenExpiry() time.Duration {
	return t.RefreshTokenExpiry
}

func (t Tokens) GetRotateRefreshTokens() bool {
	return t.RotateRefresh
}
