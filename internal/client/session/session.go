// Package session holds the client's authentication state: the current
// access/refresh token pair and the single-flight recovery path that runs
// when the server reports the access token expired.
//
// The session is an explicitly constructed object handed to the gateway, so
// its lifecycle (login, refresh, logout) is visible at the wiring point
// instead of hiding in package-level state.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/journal/internal/common"
)

// TokenPair is the credential pair issued by login and rotated by refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresher performs the wire-level token rotation. The gateway supplies it
// so the session does not depend on the transport.
type Refresher func(ctx context.Context, refreshToken string) (TokenPair, error)

// Session is safe for concurrent use by multiple in-flight requests.
type Session struct {
	mu        sync.Mutex
	access    string
	refresh   string
	accessExp time.Time

	group singleflight.Group
}

func New() *Session {
	return &Session{}
}

// SetTokens installs a new token pair, replacing any previous one. The
// access token's exp claim is peeked at (without signature verification,
// which is the server's job) so the client can report imminent expiry.
func (s *Session) SetTokens(p TokenPair) {
	exp := peekExpiry(p.AccessToken)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = p.AccessToken
	s.refresh = p.RefreshToken
	s.accessExp = exp
}

// Reset clears all credentials. Called on logout and when a refresh fails.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.accessExp = time.Time{}
}

func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access != ""
}

// ExpiresWithin reports whether the access token expires within d. Tokens
// without a readable exp claim never report as expiring.
func (s *Session) ExpiresWithin(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessExp.IsZero() {
		return false
	}
	return time.Until(s.accessExp) < d
}

// Refresh rotates the token pair via fn. Concurrent callers share one
// in-flight rotation: however many requests hit a 401 at once, fn runs
// exactly once and everyone gets its result. A failed rotation resets the
// session, so the caller must re-authenticate.
func (s *Session) Refresh(ctx context.Context, fn Refresher) error {
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		s.mu.Lock()
		rt := s.refresh
		s.mu.Unlock()

		if rt == "" {
			return nil, common.ErrReloginRequired
		}

		pair, err := fn(ctx, rt)
		if err != nil {
			s.Reset()
			return nil, fmt.Errorf("%w: refresh rejected: %v", common.ErrReloginRequired, err)
		}

		s.SetTokens(pair)
		return nil, nil
	})
	return err
}

// peekExpiry extracts the exp claim without verifying the signature.
func peekExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
