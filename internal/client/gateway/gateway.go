// Package gateway is the typed HTTP client for the journal persistence API.
//
// Every call returns either a decoded, schema-validated response or an error
// from the taxonomy in errors.go. A 401 on any non-auth endpoint triggers
// one shared session refresh followed by exactly one retry of the original
// call; auth endpoints themselves never trigger a refresh, so a persistently
// invalid session cannot loop.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/journal/internal/client/session"
	"github.com/dmitrijs2005/journal/internal/logging"
)

const apiPrefix = "/api/v1"

// DefaultTimeout bounds every request; a timed-out call is a transient
// failure, never retried automatically.
const DefaultTimeout = 10 * time.Second

type Gateway struct {
	baseURL string
	httpc   *http.Client
	sess    *session.Session
	log     logging.Logger
	timeout time.Duration
}

func New(baseURL string, sess *session.Session, log logging.Logger, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		sess:    sess,
		log:     log,
		timeout: timeout,
	}
}

// Session exposes the session for lifecycle wiring (logout, status line).
func (g *Gateway) Session() *session.Session {
	return g.sess
}

type callOpts struct {
	// noAuth skips the bearer header (login, refresh, ping).
	noAuth bool
	// noRetry excludes the call from 401 recovery. Set for auth endpoints
	// and for the single post-refresh retry.
	noRetry bool
}

// envelope mirrors the server's {"data": ...} response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// apiError mirrors the server's error body.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, body, out any, opts callOpts) error {
	err := g.doOnce(ctx, method, path, query, body, out, opts)
	if err == nil || opts.noRetry || !IsAuthExpired(err) {
		return err
	}

	if rerr := g.sess.Refresh(ctx, g.refreshTokens); rerr != nil {
		return rerr
	}

	// Retried exactly once; a second 401 surfaces as-is.
	opts.noRetry = true
	return g.doOnce(ctx, method, path, query, body, out, opts)
}

func (g *Gateway) doOnce(ctx context.Context, method, path string, query url.Values, body, out any, opts callOpts) error {
	op := method + " " + path

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	u := g.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !opts.noAuth {
		req.Header.Set("Authorization", "Bearer "+g.sess.AccessToken())
	}

	resp, err := g.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ae apiError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(raw, &ae)
		msg := ae.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrBadPayload, err)
	}
	if env.Data == nil {
		return fmt.Errorf("%s: %w: missing data field", op, ErrBadPayload)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrBadPayload, err)
	}
	return nil
}

// refreshTokens is the wire half of session refresh. It is excluded from
// 401 recovery by construction.
func (g *Gateway) refreshTokens(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	var pair session.TokenPair
	body := map[string]string{"refresh_token": refreshToken}
	err := g.do(ctx, http.MethodPost, "/auth/refresh", nil, body, &pair, callOpts{noAuth: true, noRetry: true})
	if err != nil {
		return session.TokenPair{}, err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return session.TokenPair{}, fmt.Errorf("auth/refresh: %w: empty token pair", ErrBadPayload)
	}
	return pair, nil
}
