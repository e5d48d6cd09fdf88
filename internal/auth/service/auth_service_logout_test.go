package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/domain"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/service"
)

func TestAuthService_Logout_MissingToken(t *testing.T) {
	f := setupAuthService(t)

	err := f.svc.Logout(context.Background(), "")
	if !errors.Is(err, service.ErrRefreshTokenRequired) {
		t.Errorf("expected ErrRefreshTokenRequired, got %v", err)
	}
}

func TestAuthService_Logout_SecondCallFails(t *testing.T) {
	f := setupAuthService(t)

	// The row stays in the ledger after revocation; only the conditional
	// revoke flips from winning to losing.
	f.refreshRepo.findByTokenHashFunc = func(ctx context.Context, hash string) (domain.RefreshToken, error) {
		return domain.RefreshToken{ID: "ledger-1", UserID: "user-1", TokenHash: hash}, nil
	}

	revoked := map[string]bool{}
	f.refreshRepo.revokeFunc = func(ctx context.Context, hash string, replacedBy *string) (bool, error) {
		if revoked[hash] {
			return false, nil
		}
		revoked[hash] = true
		return true, nil
	}

	if err := f.svc.Logout(context.Background(), "some-refresh-token"); err != nil {
		t.Fatalf("expected first logout to succeed, got %v", err)
	}

	err := f.svc.Logout(context.Background(), "some-refresh-token")
	if !errors.Is(err, service.ErrRefreshTokenAlreadyRevoked) {
		t.Errorf("expected ErrRefreshTokenAlreadyRevoked on replay, got %v", err)
	}
}

func TestAuthService_Logout_UnknownToken(t *testing.T) {
	f := setupAuthService(t)

	// Default lookup reports no ledger row; the revoke must not run.
	f.refreshRepo.revokeFunc = func(ctx context.Context, hash string, replacedBy *string) (bool, error) {
		t.Error("revoke must not be attempted for an unknown token")
		return false, nil
	}

	err := f.svc.Logout(context.Background(), "never-issued")
	if !errors.Is(err, service.ErrRefreshTokenAlreadyRevoked) {
		t.Errorf("expected ErrRefreshTokenAlreadyRevoked, got %v", err)
	}
}

func TestAuthService_LogoutAll_Success(t *testing.T) {
	f := setupAuthService(t)

	bumped := false
	f.tx.incrementTokenVersionFunc = func(ctx context.Context, userID string) (int, error) {
		if userID != "user-1" {
			t.Errorf("unexpected user id %q", userID)
		}
		bumped = true
		return 4, nil
	}

	revokedAll := false
	f.tx.revokeAllRefreshTokensFunc = func(ctx context.Context, userID string) error {
		if !bumped {
			t.Error("expected version bump before bulk revocation")
		}
		revokedAll = true
		return nil
	}

	if err := f.svc.LogoutAll(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !revokedAll {
		t.Error("expected all refresh tokens to be revoked")
	}
}

func TestAuthService_LogoutAll_UserNotFound(t *testing.T) {
	f := setupAuthService(t)

	err := f.svc.LogoutAll(context.Background(), "ghost")
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
