package auth

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/shopassist/observe"
)

// TokenConfig configures a TokenSession.
type TokenConfig struct {
	// LoginFunc obtains a token from the identity provider. Required
	// for Login; sessions fed through SetToken may leave it nil.
	LoginFunc func(ctx context.Context) (string, error)

	// LogoutFunc notifies the provider that the session ended. Optional.
	LogoutFunc func(ctx context.Context) error

	// RefreshFunc renews an expired token without user interaction.
	// Optional; without it an expired token simply stops working.
	RefreshFunc func(ctx context.Context) (string, error)

	// Logger receives refresh diagnostics. Defaults to a no-op.
	Logger observe.Logger

	// Now supplies the clock. Defaults to time.Now.
	Now func() time.Time
}

// TokenSession holds the bearer token obtained from an external
// identity provider and decodes its claims for lifecycle decisions.
// Concurrent expired-token reads share a single renewal call.
type TokenSession struct {
	mu       sync.RWMutex
	token    string
	identity *Identity

	login   func(ctx context.Context) (string, error)
	logout  func(ctx context.Context) error
	refresh func(ctx context.Context) (string, error)
	sf      singleflight.Group
	logger  observe.Logger
	now     func() time.Time
}

// NewTokenSession creates a logged-out session.
func NewTokenSession(cfg TokenConfig) *TokenSession {
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenSession{
		login:   cfg.LoginFunc,
		logout:  cfg.LogoutFunc,
		refresh: cfg.RefreshFunc,
		logger:  cfg.Logger.WithComponent("auth"),
		now:     cfg.Now,
	}
}

// IsAuthenticated reports whether the session can produce a usable
// token: one is held and is either unexpired or renewable.
func (s *TokenSession) IsAuthenticated(_ context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return false
	}
	if s.identity.ExpiredAt(s.now()) {
		return s.refresh != nil
	}
	return true
}

// Token returns the held bearer token. An expired token is renewed
// through RefreshFunc first; concurrent callers share one renewal.
func (s *TokenSession) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, identity := s.token, s.identity
	s.mu.RUnlock()

	if token == "" {
		return "", ErrNotAuthenticated
	}
	if !identity.ExpiredAt(s.now()) {
		return token, nil
	}
	if s.refresh == nil {
		return "", ErrTokenExpired
	}

	fresh, err, _ := s.sf.Do("refresh", func() (any, error) {
		renewed, err := s.refresh(ctx)
		if err != nil {
			return "", err
		}
		if err := s.adopt(renewed); err != nil {
			return "", err
		}
		return renewed, nil
	})
	if err != nil {
		s.logger.Warn(ctx, "token refresh failed",
			observe.Field{Key: "error", Value: err.Error()})
		return "", ErrTokenExpired
	}
	return fresh.(string), nil
}

// Login obtains a token through LoginFunc and adopts it.
func (s *TokenSession) Login(ctx context.Context) error {
	if s.login == nil {
		return ErrLoginNotConfigured
	}
	token, err := s.login(ctx)
	if err != nil {
		return err
	}
	return s.adopt(token)
}

// Logout discards the held token. The local state is cleared even when
// the provider notification fails; that failure is returned.
func (s *TokenSession) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.identity = nil
	s.mu.Unlock()

	if s.logout == nil {
		return nil
	}
	return s.logout(ctx)
}

// SetToken adopts a token obtained outside the session, such as a
// provider SDK callback. Tokens that do not decode as JWTs are
// rejected with ErrTokenMalformed.
func (s *TokenSession) SetToken(token string) error {
	return s.adopt(token)
}

// Identity returns the identity decoded from the held token, or nil
// when logged out.
func (s *TokenSession) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *TokenSession) adopt(token string) error {
	identity, err := decodeIdentity(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.identity = identity
	s.mu.Unlock()
	return nil
}

// decodeIdentity extracts lifecycle claims without verifying the
// signature. Verification belongs to the backend that accepts the
// token, not to this client.
func decodeIdentity(token string) (*Identity, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, ErrTokenMalformed
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	identity := &Identity{Claims: make(map[string]any, len(claims))}
	for k, v := range claims {
		identity.Claims[k] = v
	}
	if sub, ok := claims["sub"].(string); ok {
		identity.Subject = sub
	}
	if exp, ok := claims["exp"].(float64); ok {
		identity.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if iat, ok := claims["iat"].(float64); ok {
		identity.IssuedAt = time.Unix(int64(iat), 0)
	}
	return identity, nil
}

// Ensure TokenSession implements Session
var _ Session = (*TokenSession)(nil)
