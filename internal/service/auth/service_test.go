package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	auth "github.com/morningistar/study-buddy/internal/service/auth"
	"github.com/morningistar/study-buddy/internal/store"
)

func newService(t *testing.T, ttl time.Duration) *auth.Service {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite err: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return auth.NewService(st, ttl, zap.NewNop())
}

func TestRegisterAndResolve(t *testing.T) {
	svc := newService(t, time.Hour)
	ctx := context.Background()

	u, token, err := svc.Register(ctx, "Alice@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %s", u.Email)
	}

	userID, err := svc.Resolve(ctx, token.Value)
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if userID != u.ID {
		t.Fatalf("resolved wrong user: got %s want %s", userID, u.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(t, time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "", "long enough password"); !errors.Is(err, auth.ErrEmailRequired) {
		t.Fatalf("expected ErrEmailRequired, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "not-an-email", "long enough password"); !errors.Is(err, auth.ErrEmailRequired) {
		t.Fatalf("expected ErrEmailRequired for address without @, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "a@b.com", "short"); !errors.Is(err, auth.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService(t, time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice@example.com", "correct horse"); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if _, _, err := svc.Register(ctx, "alice@example.com", "battery staple"); !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newService(t, time.Hour)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register err: %v", err)
	}

	token, err := svc.Login(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login err: %v", err)
	}
	userID, err := svc.Resolve(ctx, token.Value)
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if userID != u.ID {
		t.Fatalf("resolved wrong user after login")
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever pw"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestResolveRejectsUnknownAndExpired(t *testing.T) {
	svc := newService(t, time.Hour)
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, ""); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty token, got %v", err)
	}
	if _, err := svc.Resolve(ctx, "unknown-token"); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unknown token, got %v", err)
	}

	// Negative TTL issues tokens that are already expired.
	expiredSvc := newService(t, -time.Minute)
	_, token, err := expiredSvc.Register(ctx, "bob@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if _, err := expiredSvc.Resolve(ctx, token.Value); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newService(t, time.Hour)
	ctx := context.Background()

	_, token, err := svc.Register(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if err := svc.Logout(ctx, token.Value); err != nil {
		t.Fatalf("Logout err: %v", err)
	}
	if _, err := svc.Resolve(ctx, token.Value); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after logout, got %v", err)
	}
}
