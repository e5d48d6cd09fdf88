package repository

import (
	"context"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/domain"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/constants"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/db"
)

// Tx groups the ledger and token-version mutations that must land as one
// logical unit: token rotation and logout-all. FindRefreshTokenForUpdate
// takes a row lock so two concurrent rotations of the same token serialize;
// at most one wins.
type Tx interface {
	FindRefreshTokenForUpdate(ctx context.Context, hash string) (domain.RefreshToken, error)
	CreateRefreshToken(ctx context.Context, token domain.RefreshToken) error
	RevokeRefreshToken(ctx context.Context, hash string, replacedBy *string) (bool, error)
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
	FindUserByID(ctx context.Context, id string) (domain.User, error)
	IncrementTokenVersion(ctx context.Context, userID string) (int, error)
}

type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type PgTxManager struct {
	pool *pgxpool.Pool
}

func NewPgTxManager(pool *pgxpool.Pool) *PgTxManager {
	return &PgTxManager{pool: pool}
}

func (m *PgTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(ctx, &pgTx{tx: tx})
	return err
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) FindRefreshTokenForUpdate(ctx context.Context, hash string) (domain.RefreshToken, error) {
	start := time.Now()
	row := t.tx.QueryRow(ctx, selectRefreshTokenSQL+" FOR UPDATE", hash)
	return scanRefreshToken(row, "find refresh token in tx", start)
}

func (t *pgTx) CreateRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	start := time.Now()
	_, err := t.tx.Exec(ctx, insertRefreshTokenSQL,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return db.HandleExecError(err, "create refresh token in tx", start)
}

func (t *pgTx) RevokeRefreshToken(ctx context.Context, hash string, replacedBy *string) (bool, error) {
	start := time.Now()
	res, err := t.tx.Exec(ctx, revokeRefreshTokenSQL, hash, replacedBy)
	if err != nil {
		return false, db.HandleExecError(err, "revoke refresh token in tx", start)
	}
	db.MeasureQueryDuration("revoke refresh token in tx", start)
	return res.RowsAffected() > 0, nil
}

func (t *pgTx) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	start := time.Now()
	_, err := t.tx.Exec(ctx, revokeAllRefreshTokensSQL, userID)
	return db.HandleExecError(err, "revoke all refresh tokens", start)
}

func (t *pgTx) FindUserByID(ctx context.Context, id string) (domain.User, error) {
	start := time.Now()
	row := t.tx.QueryRow(
		ctx,
		`SELECT id, email, password_hash, role, token_version, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	)
	return scanUser(row, "find user in tx", start)
}

// IncrementTokenVersion bumps the counter by exactly 1 in a single atomic
// update and returns the new value. ErrUserNotFound when the user is gone.
func (t *pgTx) IncrementTokenVersion(ctx context.Context, userID string) (int, error) {
	start := time.Now()
	row := t.tx.QueryRow(
		ctx,
		`UPDATE users
		 SET token_version = token_version + 1, updated_at = NOW()
		 WHERE id = $1
		 RETURNING token_version`,
		userID,
	)

	var version int
	err := row.Scan(&version)
	if err := db.HandleQueryError(err, ErrUserNotFound, "increment token version", start); err != nil {
		return 0, err
	}
	return version, nil
}
