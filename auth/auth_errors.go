package auth

import "github.com/jrsteele09/go-bank-session/internal/errors"

var (
	ErrEmptyAccessCredential = errors.Wrapf(errors.ErrMalformedResponse, "token response has no access credential")
	ErrNoSession             = errors.ErrNotAuthenticated
)
