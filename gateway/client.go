// Package gateway executes ledger API calls on behalf of a session, renewing
// an expired access credential at most once per call.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	TokenPath   = "/token/"
	RefreshPath = "/token/refresh/"
	MePath      = "/me/"

	HeaderRequestID = "X-Request-ID"

	maxBodyBytes = 10 << 20
)

// Request describes one logical API call. Path is relative to the API base.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// TokenPair is the wire shape of the token and refresh endpoints.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// SessionEndedFunc is called after a failed refresh has cleared the session.
type SessionEndedFunc func(ctx context.Context)

type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          sessions.Store
	logger         zerolog.Logger
	onSessionEnded SessionEndedFunc
	dedupRefresh   bool
	flights        singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithSessionEnded registers the hook that sends the user back to the entry point.
func WithSessionEnded(fn SessionEndedFunc) Option {
	return func(c *Client) { c.onSessionEnded = fn }
}

// WithRefreshDedup controls whether concurrent calls share one in-flight refresh.
func WithRefreshDedup(enabled bool) Option {
	return func(c *Client) { c.dedupRefresh = enabled }
}

func New(baseURL string, store sessions.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		store:        store,
		logger:       zerolog.Nop(),
		dedupRefresh: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "gateway").Logger()
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Store() sessions.Store {
	return c.store
}

// Do executes req with the stored credential. A 401 triggers one refresh and
// one retry. If the refresh fails, or the session was cleared while it was in
// flight, errors.ErrSessionEnded is returned and nothing is retried.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	requestID := uuid.NewString()
	ph := phaseInitial
	var renewed string

	for ph != phaseDone {
		out := c.attempt(ctx, req, ph, requestID, renewed)
		switch out.kind {
		case outcomeSuccess:
			return out.body, nil
		case outcomeFailure:
			return nil, out.err
		}

		// outcomeUnauthorized
		if ph == phaseAfterRefresh {
			c.logger.Warn().Str("request_id", requestID).Str("path", req.Path).Msg("retry after refresh still unauthorized")
			return nil, out.err
		}

		access, err := c.Refresh(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		renewed = access
		ph = ph.next()
	}
	return nil, errors.Wrapf(errors.ErrInternal, "request %s exhausted its attempts", requestID)
}

// Get is Do for a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post is Do for a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Call executes req and decodes the response into T.
func Call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var result T
	body, err := c.Do(ctx, req)
	if err != nil {
		return result, err
	}
	if len(body) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, errors.Wrapf(errors.ErrMalformedResponse, "decode %s: %v", req.Path, err)
	}
	return result, nil
}

// Exchange posts body without any stored credential and without refresh
// handling. It is used for the token and refresh endpoints.
func (c *Client) Exchange(ctx context.Context, path string, body any, out any) error {
	req := Request{Method: http.MethodPost, Path: path, Body: body}
	res := c.send(ctx, req, uuid.NewString(), func(http.Header) {})
	if res.err != nil {
		return res.err
	}
	if !isSuccess(res.status) {
		return parseAPIError(res.status, res.body)
	}
	if out == nil || len(res.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return errors.Wrapf(errors.ErrMalformedResponse, "decode %s: %v", path, err)
	}
	return nil
}

func (c *Client) url(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
