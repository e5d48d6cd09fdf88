package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/domain"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/repository"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/service"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/jwtverify"
)

func storedTestUser() domain.User {
	return domain.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		PasswordHash: "hashed:password123",
		Role:         domain.RoleUser,
		TokenVersion: 3,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := setupAuthService(t)

	f.users.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		if email != "alice@example.com" {
			t.Errorf("expected lookup with normalized email, got %q", email)
		}
		return storedTestUser(), nil
	}

	var storedToken domain.RefreshToken
	f.refreshRepo.createFunc = func(ctx context.Context, token domain.RefreshToken) error {
		storedToken = token
		return nil
	}

	result, err := f.svc.Login(context.Background(), service.LoginInput{
		Email:    " ALICE@example.com ",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.User.ID != "user-1" {
		t.Errorf("unexpected user id %q", result.User.ID)
	}

	claims, err := jwtverify.ParseToken(result.Tokens.AccessToken, []byte(testAccessSecret))
	if err != nil {
		t.Fatalf("access token does not verify: %v", err)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("expected claim tokenVersion 3, got %d", claims.TokenVersion)
	}

	if storedToken.TokenHash != service.HashRefreshToken(result.Tokens.RefreshToken) {
		t.Error("stored digest does not match issued refresh token")
	}
}

func TestAuthService_Login_UnknownEmailAndWrongPasswordAreIdentical(t *testing.T) {
	f := setupAuthService(t)

	f.users.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		return domain.User{}, repository.ErrUserNotFound
	}

	_, unknownErr := f.svc.Login(context.Background(), service.LoginInput{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	if !errors.Is(unknownErr, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownErr)
	}

	f.users.findByEmailFunc = func(ctx context.Context, email string) (domain.User, error) {
		return storedTestUser(), nil
	}

	_, wrongErr := f.svc.Login(context.Background(), service.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(wrongErr, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
	}

	// Both failure modes must be indistinguishable to the caller.
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("enumeration leak: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}

func TestAuthService_Login_ValidationErrors(t *testing.T) {
	f := setupAuthService(t)

	_, err := f.svc.Login(context.Background(), service.LoginInput{Email: "", Password: "x"})
	if !errors.Is(err, service.ErrEmailRequired) {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}

	_, err = f.svc.Login(context.Background(), service.LoginInput{Email: "a@b.com", Password: ""})
	if !errors.Is(err, service.ErrPasswordRequired) {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
}
