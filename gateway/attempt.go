package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-bank-session/internal/errors"
)

type phase int

const (
	phaseInitial phase = iota
	phaseAfterRefresh
	phaseDone
)

func (p phase) next() phase {
	if p >= phaseDone {
		return phaseDone
	}
	return p + 1
}

func (p phase) String() string {
	switch p {
	case phaseInitial:
		return "initial"
	case phaseAfterRefresh:
		return "after_refresh"
	}
	return "done"
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeUnauthorized
	outcomeFailure
)

// outcome is the tagged result of a single attempt.
type outcome struct {
	kind outcomeKind
	body json.RawMessage
	err  error
}

type response struct {
	status int
	body   []byte
	err    error
}

// attempt issues req once. In phaseAfterRefresh the renewed access credential
// is applied after the caller's headers so it cannot be overridden.
func (c *Client) attempt(ctx context.Context, req Request, ph phase, requestID, renewed string) outcome {
	res := c.send(ctx, req, requestID, func(h http.Header) {
		if access := c.store.GetCredentials().Access; access != "" {
			h.Set("Authorization", "Bearer "+access)
		}
		mergeHeaders(h, req.Header)
		if ph == phaseAfterRefresh && renewed != "" {
			h.Set("Authorization", "Bearer "+renewed)
		}
	})
	if res.err != nil {
		return outcome{kind: outcomeFailure, err: res.err}
	}

	switch {
	case res.status == http.StatusUnauthorized:
		return outcome{kind: outcomeUnauthorized, err: parseAPIError(res.status, res.body)}
	case !isSuccess(res.status):
		return outcome{kind: outcomeFailure, err: parseAPIError(res.status, res.body)}
	}

	if len(bytes.TrimSpace(res.body)) == 0 {
		return outcome{kind: outcomeSuccess}
	}
	if !json.Valid(res.body) {
		return outcome{kind: outcomeFailure, err: errors.Wrapf(errors.ErrMalformedResponse, "%s %s", req.Method, req.Path)}
	}
	return outcome{kind: outcomeSuccess, body: json.RawMessage(res.body)}
}

// send performs the HTTP round trip. Transport failures come back as the
// synthetic "Cannot connect to server" error unless the context ended.
func (c *Client) send(ctx context.Context, req Request, requestID string, decorate func(http.Header)) response {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return response{err: errors.Wrapf(errors.ErrInvalidInput, "encode %s body: %v", req.Path, err)}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req.Path, req.Query), body)
	if err != nil {
		return response{err: errors.Wrapf(errors.ErrInvalidInput, "build %s request: %v", req.Path, err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, requestID)
	decorate(httpReq.Header)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return response{err: ctx.Err()}
		}
		c.logger.Warn().Err(err).Str("request_id", requestID).Str("method", method).Str("path", req.Path).Msg("transport failure")
		return response{err: cannotConnect()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return response{err: ctx.Err()}
		}
		return response{err: cannotConnect()}
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("ledger call")
	return response{status: resp.StatusCode, body: data}
}

// mergeHeaders copies caller headers over h. Empty values are skipped so a
// caller can replace a header but never blank it out.
func mergeHeaders(h, caller http.Header) {
	for key, values := range caller {
		kept := make([]string, 0, len(values))
		for _, v := range values {
			if v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			continue
		}
		h[http.CanonicalHeaderKey(key)] = kept
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
