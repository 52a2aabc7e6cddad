package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devtrail/devtrail-backend/internal/apperr"
	"github.com/devtrail/devtrail-backend/internal/requestdata"
	"github.com/devtrail/devtrail-backend/internal/types"
)

func newAuthService(t *testing.T) (AuthService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewAuthService(env.db, env.log, env.userRepo, env.tokenRepo, "test-secret", time.Hour, 24*time.Hour)
	return svc, env
}

func TestAuth_RegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Username: "", Email: "a@example.com", Password: "secret1"},
		{Username: "a", Email: "", Password: "secret1"},
		{Username: "a", Email: "a@example.com", Password: ""},
		{Username: "a", Email: "a@example.com", Password: "short"},
	}
	for i, in := range cases {
		if _, err := svc.RegisterUser(ctx, in); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestAuth_RegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, err := svc.RegisterUser(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}
	if _, err := svc.RegisterUser(ctx, RegisterInput{Username: "alice2", Email: "Alice@Example.com", Password: "secret1"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email (case-insensitive), got %v", err)
	}
}

func TestAuth_LoginRoundTrip(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Password == "secret1" {
		t.Fatalf("password stored in plaintext")
	}

	access, refresh, err := svc.LoginUser(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("expected both tokens")
	}

	authedCtx, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("expected principal %s in context, got %+v", user.ID, rd)
	}
	if rd.IsAdmin {
		t.Fatalf("fresh user must not be admin")
	}

	if _, _, err := svc.LoginUser(ctx, "alice@example.com", "wrong"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, _, err := svc.LoginUser(ctx, "nobody@example.com", "secret1"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestAuth_RefreshRotatesToken(t *testing.T) {
	svc, env := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	_, refresh, err := svc.LoginUser(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	newAccess, newRefresh, err := svc.RefreshUser(ctx, refresh)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if newAccess == "" || newRefresh == "" || newRefresh == refresh {
		t.Fatalf("expected fresh tokens, got refresh=%q", newRefresh)
	}

	// The old refresh token is gone.
	if _, _, err := svc.RefreshUser(ctx, refresh); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for rotated-out token, got %v", err)
	}

	var count int64
	if err := env.db.Model(&types.UserToken{}).Count(&count).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 live token, got %d", count)
	}
}

func TestAuth_LogoutDeletesToken(t *testing.T) {
	svc, env := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	access, _, err := svc.LoginUser(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	if err := svc.LogoutUser(ctx, access); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	var count int64
	if err := env.db.Model(&types.UserToken{}).Count(&count).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no tokens after logout, got %d", count)
	}

	// Logging out an already-deleted token is a no-op.
	if err := svc.LogoutUser(ctx, access); err != nil {
		t.Fatalf("repeat LogoutUser: %v", err)
	}
}

func TestAuth_InvalidTokenRejected(t *testing.T) {
	svc, _ := newAuthService(t)
	if _, err := svc.SetContextFromToken(context.Background(), "not-a-jwt"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
