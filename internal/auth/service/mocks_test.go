package service_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/domain"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/repository"
)

type mockUserRepo struct {
	createFunc           func(ctx context.Context, user domain.User) error
	findByEmailFunc      func(ctx context.Context, email string) (domain.User, error)
	findByIDFunc         func(ctx context.Context, id string) (domain.User, error)
	tokenVersionByIDFunc func(ctx context.Context, userID string) (int, bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (domain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockUserRepo) TokenVersionByID(ctx context.Context, userID string) (int, bool, error) {
	if m.tokenVersionByIDFunc != nil {
		return m.tokenVersionByIDFunc(ctx, userID)
	}
	return 0, false, nil
}

type mockRefreshTokenRepo struct {
	createFunc          func(ctx context.Context, token domain.RefreshToken) error
	findByTokenHashFunc func(ctx context.Context, hash string) (domain.RefreshToken, error)
	revokeFunc          func(ctx context.Context, hash string, replacedBy *string) (bool, error)
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token domain.RefreshToken) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepo) FindByTokenHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	if m.findByTokenHashFunc != nil {
		return m.findByTokenHashFunc(ctx, hash)
	}
	return domain.RefreshToken{}, repository.ErrRefreshTokenNotFound
}

func (m *mockRefreshTokenRepo) Revoke(ctx context.Context, hash string, replacedBy *string) (bool, error) {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, hash, replacedBy)
	}
	return true, nil
}

type mockTx struct {
	findRefreshTokenForUpdateFunc func(ctx context.Context, hash string) (domain.RefreshToken, error)
	createRefreshTokenFunc        func(ctx context.Context, token domain.RefreshToken) error
	revokeRefreshTokenFunc        func(ctx context.Context, hash string, replacedBy *string) (bool, error)
	revokeAllRefreshTokensFunc    func(ctx context.Context, userID string) error
	findUserByIDFunc              func(ctx context.Context, id string) (domain.User, error)
	incrementTokenVersionFunc     func(ctx context.Context, userID string) (int, error)
}

func (m *mockTx) FindRefreshTokenForUpdate(ctx context.Context, hash string) (domain.RefreshToken, error) {
	if m.findRefreshTokenForUpdateFunc != nil {
		return m.findRefreshTokenForUpdateFunc(ctx, hash)
	}
	return domain.RefreshToken{}, repository.ErrRefreshTokenNotFound
}

func (m *mockTx) CreateRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	if m.createRefreshTokenFunc != nil {
		return m.createRefreshTokenFunc(ctx, token)
	}
	return nil
}

func (m *mockTx) RevokeRefreshToken(ctx context.Context, hash string, replacedBy *string) (bool, error) {
	if m.revokeRefreshTokenFunc != nil {
		return m.revokeRefreshTokenFunc(ctx, hash, replacedBy)
	}
	return true, nil
}

func (m *mockTx) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	if m.revokeAllRefreshTokensFunc != nil {
		return m.revokeAllRefreshTokensFunc(ctx, userID)
	}
	return nil
}

func (m *mockTx) FindUserByID(ctx context.Context, id string) (domain.User, error) {
	if m.findUserByIDFunc != nil {
		return m.findUserByIDFunc(ctx, id)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockTx) IncrementTokenVersion(ctx context.Context, userID string) (int, error) {
	if m.incrementTokenVersionFunc != nil {
		return m.incrementTokenVersionFunc(ctx, userID)
	}
	return 0, repository.ErrUserNotFound
}

// mockTxManager runs the closure against its embedded mockTx. An error from
// the closure surfaces as the transaction error, matching rollback semantics.
type mockTxManager struct {
	tx *mockTx
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, m.tx)
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash != "hashed:"+password {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}

type mockIDGenerator struct {
	mu        sync.Mutex
	counter   int
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%d", m.counter), nil
}
