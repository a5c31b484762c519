package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/journal/internal/client/session"
)

// Login authenticates with the server and installs the issued token pair.
// Login never triggers a session refresh: a 401 here means bad credentials.
func (g *Gateway) Login(ctx context.Context, username string, password []byte) error {
	body := map[string]string{"username": username, "password": string(password)}

	var pair session.TokenPair
	err := g.do(ctx, http.MethodPost, "/auth/login", nil, body, &pair, callOpts{noAuth: true, noRetry: true})
	if err != nil {
		return err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("auth/login: %w: empty token pair", ErrBadPayload)
	}

	g.sess.SetTokens(pair)
	return nil
}

// RefreshSession rotates the access credential eagerly (e.g. before a burst
// of saves when the token is about to expire). Failure means re-login.
func (g *Gateway) RefreshSession(ctx context.Context) error {
	return g.sess.Refresh(ctx, g.refreshTokens)
}

// Logout drops the local session. The backend is stateless about access
// tokens; refresh tokens die on rotation or expiry.
func (g *Gateway) Logout() {
	g.sess.Reset()
}

// Ping checks server liveness. Unauthenticated and excluded from refresh.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.do(ctx, http.MethodGet, "/ping", nil, nil, nil, callOpts{noAuth: true, noRetry: true})
}
