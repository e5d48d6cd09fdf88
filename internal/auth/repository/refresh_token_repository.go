package repository

import (
	"context"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/domain"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/db"
)

var ErrRefreshTokenNotFound = pgx.ErrNoRows

// RefreshTokenRepository is the ledger of issued refresh tokens. Rows are
// revoked in place, never deleted, so the rotation chain stays auditable.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token domain.RefreshToken) error
	FindByTokenHash(ctx context.Context, hash string) (domain.RefreshToken, error)
	// Revoke marks the row revoked only if it is currently unrevoked and
	// reports whether this call won the update.
	Revoke(ctx context.Context, hash string, replacedBy *string) (bool, error)
}

type PgRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgRefreshTokenRepository(pool *pgxpool.Pool) *PgRefreshTokenRepository {
	return &PgRefreshTokenRepository{pool: pool}
}

func (r *PgRefreshTokenRepository) Create(ctx context.Context, token domain.RefreshToken) error {
	start := time.Now()
	_, err := r.pool.Exec(ctx, insertRefreshTokenSQL,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return db.HandleExecError(err, "create refresh token", start)
}

func (r *PgRefreshTokenRepository) FindByTokenHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, selectRefreshTokenSQL, hash)
	return scanRefreshToken(row, "find refresh token", start)
}

func (r *PgRefreshTokenRepository) Revoke(ctx context.Context, hash string, replacedBy *string) (bool, error) {
	start := time.Now()
	res, err := r.pool.Exec(ctx, revokeRefreshTokenSQL, hash, replacedBy)
	if err != nil {
		return false, db.HandleExecError(err, "revoke refresh token", start)
	}
	db.MeasureQueryDuration("revoke refresh token", start)
	return res.RowsAffected() > 0, nil
}

const (
	insertRefreshTokenSQL = `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`

	selectRefreshTokenSQL = `SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at
		 FROM refresh_tokens
		 WHERE token_hash = $1`

	// The revoked_at IS NULL guard makes revocation a one-way, one-winner
	// conditional update.
	revokeRefreshTokenSQL = `UPDATE refresh_tokens
		 SET revoked_at = NOW(), replaced_by = $2
		 WHERE token_hash = $1 AND revoked_at IS NULL`

	revokeAllRefreshTokensSQL = `UPDATE refresh_tokens
		 SET revoked_at = NOW()
		 WHERE user_id = $1 AND revoked_at IS NULL`
)

func scanRefreshToken(row pgx.Row, operation string, start time.Time) (domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.ReplacedBy,
		&token.CreatedAt,
	)
	if err := db.HandleQueryError(err, ErrRefreshTokenNotFound, operation, start); err != nil {
		return domain.RefreshToken{}, err
	}
	return token, nil
}
