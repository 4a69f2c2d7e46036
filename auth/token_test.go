package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("test-secret")

// signToken builds a signed JWT for the given subject and expiry. The
// session never verifies signatures, but real provider tokens are
// signed, so the fixtures are too.
func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Add(-time.Minute).Unix(),
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func TestTokenSession_StartsLoggedOut(t *testing.T) {
	ctx := context.Background()
	s := NewTokenSession(TokenConfig{})

	if s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true on a fresh session, want false")
	}
	if _, err := s.Token(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() error = %v, want ErrNotAuthenticated", err)
	}
	if s.Identity() != nil {
		t.Errorf("Identity() = %+v on a fresh session, want nil", s.Identity())
	}
}

func TestTokenSession_LoginAdoptsToken(t *testing.T) {
	ctx := context.Background()
	want := signToken(t, "user-42", time.Now().Add(time.Hour))

	s := NewTokenSession(TokenConfig{
		LoginFunc: func(context.Context) (string, error) { return want, nil },
	})

	if err := s.Login(ctx); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = false after login, want true")
	}

	got, err := s.Token(ctx)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got != want {
		t.Errorf("Token() = %q, want the login token", got)
	}
	if id := s.Identity(); id == nil || id.Subject != "user-42" {
		t.Errorf("Identity() = %+v, want Subject user-42", id)
	}
}

func TestTokenSession_LoginNotConfigured(t *testing.T) {
	s := NewTokenSession(TokenConfig{})
	if err := s.Login(context.Background()); !errors.Is(err, ErrLoginNotConfigured) {
		t.Errorf("Login() error = %v, want ErrLoginNotConfigured", err)
	}
}

func TestTokenSession_LoginFailure(t *testing.T) {
	ctx := context.Background()
	providerErr := errors.New("provider unavailable")
	s := NewTokenSession(TokenConfig{
		LoginFunc: func(context.Context) (string, error) { return "", providerErr },
	})

	if err := s.Login(ctx); !errors.Is(err, providerErr) {
		t.Errorf("Login() error = %v, want the provider error", err)
	}
	if s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true after failed login, want false")
	}
}

func TestTokenSession_LoginMalformedToken(t *testing.T) {
	ctx := context.Background()
	s := NewTokenSession(TokenConfig{
		LoginFunc: func(context.Context) (string, error) { return "not-a-jwt", nil },
	})

	if err := s.Login(ctx); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Login() error = %v, want ErrTokenMalformed", err)
	}
	if s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true after malformed login, want false")
	}
}

func TestTokenSession_SetToken(t *testing.T) {
	ctx := context.Background()
	s := NewTokenSession(TokenConfig{})

	token := signToken(t, "user-7", time.Now().Add(time.Hour))
	if err := s.SetToken(token); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	if !s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = false after SetToken, want true")
	}

	if err := s.SetToken("garbage"); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("SetToken(garbage) error = %v, want ErrTokenMalformed", err)
	}
	// A rejected token does not displace the adopted one.
	if got, _ := s.Token(ctx); got != token {
		t.Errorf("Token() = %q after rejected SetToken, want the prior token", got)
	}
}

func TestTokenSession_Logout(t *testing.T) {
	ctx := context.Background()
	logoutCalls := 0
	s := NewTokenSession(TokenConfig{
		LogoutFunc: func(context.Context) error {
			logoutCalls++
			return nil
		},
	})
	if err := s.SetToken(signToken(t, "user-1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if logoutCalls != 1 {
		t.Errorf("logout hook called %d times, want 1", logoutCalls)
	}
	if s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true after logout, want false")
	}
	if s.Identity() != nil {
		t.Error("Identity() != nil after logout, want nil")
	}
}

func TestTokenSession_LogoutClearsStateOnHookFailure(t *testing.T) {
	ctx := context.Background()
	hookErr := errors.New("provider unreachable")
	s := NewTokenSession(TokenConfig{
		LogoutFunc: func(context.Context) error { return hookErr },
	})
	if err := s.SetToken(signToken(t, "user-1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	if err := s.Logout(ctx); !errors.Is(err, hookErr) {
		t.Errorf("Logout() error = %v, want the hook error", err)
	}
	// The local session ends regardless of the provider.
	if s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true after failed logout hook, want false")
	}
}

func TestTokenSession_ExpiredWithoutRefresh(t *testing.T) {
	ctx := context.Background()
	s := NewTokenSession(TokenConfig{})
	if err := s.SetToken(signToken(t, "user-1", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	if s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true with an expired token and no refresh, want false")
	}
	if _, err := s.Token(ctx); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Token() error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenSession_NoExpiryClaimNeverExpires(t *testing.T) {
	ctx := context.Background()
	s := NewTokenSession(TokenConfig{})
	if err := s.SetToken(signToken(t, "user-1", time.Time{})); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	if !s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = false for a token without exp, want true")
	}
	if _, err := s.Token(ctx); err != nil {
		t.Errorf("Token() error = %v, want nil", err)
	}
}

func TestTokenSession_RefreshOnExpired(t *testing.T) {
	ctx := context.Background()
	fresh := signToken(t, "user-1", time.Now().Add(time.Hour))
	refreshCalls := 0

	s := NewTokenSession(TokenConfig{
		RefreshFunc: func(context.Context) (string, error) {
			refreshCalls++
			return fresh, nil
		},
	})
	if err := s.SetToken(signToken(t, "user-1", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	// Renewable sessions still count as authenticated.
	if !s.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = false with refresh configured, want true")
	}

	got, err := s.Token(ctx)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got != fresh {
		t.Errorf("Token() = %q, want the renewed token", got)
	}
	if refreshCalls != 1 {
		t.Errorf("refresh called %d times, want 1", refreshCalls)
	}

	// The renewed token is adopted; no second refresh.
	if _, err := s.Token(ctx); err != nil {
		t.Fatalf("Token() after renewal error = %v", err)
	}
	if refreshCalls != 1 {
		t.Errorf("refresh called %d times after renewal, want still 1", refreshCalls)
	}
}

func TestTokenSession_RefreshFailure(t *testing.T) {
	ctx := context.Background()
	s := NewTokenSession(TokenConfig{
		RefreshFunc: func(context.Context) (string, error) {
			return "", errors.New("provider unreachable")
		},
	})
	if err := s.SetToken(signToken(t, "user-1", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	if _, err := s.Token(ctx); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Token() error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenSession_RefreshDeduplicated(t *testing.T) {
	ctx := context.Background()
	fresh := signToken(t, "user-1", time.Now().Add(time.Hour))
	var refreshCalls atomic.Int32

	s := NewTokenSession(TokenConfig{
		RefreshFunc: func(context.Context) (string, error) {
			refreshCalls.Add(1)
			time.Sleep(50 * time.Millisecond)
			return fresh, nil
		},
	})
	if err := s.SetToken(signToken(t, "user-1", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Token(ctx)
			if err != nil {
				t.Errorf("Token() error = %v", err)
				return
			}
			if got != fresh {
				t.Errorf("Token() = %q, want the renewed token", got)
			}
		}()
	}
	wg.Wait()

	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh called %d times under concurrency, want 1", got)
	}
}

func TestDecodeIdentity_Claims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, "user-9", exp)

	id, err := decodeIdentity(token)
	if err != nil {
		t.Fatalf("decodeIdentity() error = %v", err)
	}
	if id.Subject != "user-9" {
		t.Errorf("Subject = %q, want user-9", id.Subject)
	}
	if !id.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", id.ExpiresAt, exp)
	}
	if id.IssuedAt.IsZero() {
		t.Error("IssuedAt is zero, want the iat claim")
	}
	if _, ok := id.Claims["sub"]; !ok {
		t.Error("Claims missing sub, want raw claims copied")
	}
}
