package sessions

import (
	"github.com/jrsteele09/go-bank-session/internal/errors"
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	store Store
}

// TokenSource exposes the stored credential pair as an oauth2.TokenSource so the
// session can be handed to oauth2-aware HTTP clients. It never refreshes by itself.
func TokenSource(store Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	creds := ts.store.GetCredentials()
	if !creds.HasAccess() {
		return nil, errors.ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken:  creds.Access,
		RefreshToken: creds.Refresh,
		TokenType:    "Bearer",
	}, nil
}
