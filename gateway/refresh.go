package gateway

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-bank-session/internal/errors"
)

const refreshFlightKey = "refresh"

// Refresh exchanges the stored refresh credential for a new access credential
// and stores the result. A rotated refresh credential replaces the old one;
// when the ledger does not rotate, the old one is kept.
//
// If the exchange fails the session is ended: the store is cleared, the
// session-ended hook runs and errors.ErrSessionEnded is returned. Both happen
// at most once per exchanged refresh credential. If the session was cleared or
// replaced while the exchange was in flight, the result is discarded.
//
// With refresh de-duplication enabled, concurrent callers share a single
// in-flight exchange. Each caller still performs at most one refresh.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	if !c.dedupRefresh {
		return c.exchangeRefresh(ctx)
	}

	ch := c.flights.DoChan(refreshFlightKey, func() (any, error) {
		return c.exchangeRefresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) exchangeRefresh(ctx context.Context) (string, error) {
	creds := c.store.GetCredentials()
	if !creds.HasRefresh() {
		return "", c.endSession(ctx, creds.Refresh, errors.ErrNoRefreshCredential)
	}

	var tokens TokenPair
	if err := c.Exchange(ctx, RefreshPath, map[string]string{"refresh": creds.Refresh}, &tokens); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", c.endSession(ctx, creds.Refresh, fmt.Errorf("%w: %w", errors.ErrRefreshRejected, err))
	}
	if tokens.Access == "" {
		return "", c.endSession(ctx, creds.Refresh, fmt.Errorf("%w: refresh response has no access credential", errors.ErrMalformedResponse))
	}

	stored, err := c.store.ReplaceCredentials(creds.Refresh, tokens.Access, tokens.Refresh)
	if err != nil {
		return "", c.endSession(ctx, creds.Refresh, err)
	}
	if !stored {
		// Logged out, or another refresh or login replaced the session meanwhile.
		current := c.store.GetCredentials()
		if !current.HasAccess() {
			c.logger.Info().Msg("session cleared during refresh, discarding renewed credential")
			return "", errors.ErrSessionEnded
		}
		return current.Access, nil
	}

	c.logger.Info().Bool("rotated", tokens.Refresh != "").Msg("access credential renewed")
	return tokens.Access, nil
}

// endSession clears the session that was issued exchangedRefresh and runs the
// session-ended hook. A session already cleared or replaced is left alone.
func (c *Client) endSession(ctx context.Context, exchangedRefresh string, cause error) error {
	cleared, err := c.store.ClearIfRefresh(exchangedRefresh)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to clear session")
		return errors.ErrSessionEnded
	}
	if !cleared {
		return errors.ErrSessionEnded
	}
	c.logger.Info().Err(cause).Msg("refresh failed, ending session")
	if c.onSessionEnded != nil {
		c.onSessionEnded(ctx)
	}
	return errors.ErrSessionEnded
}
