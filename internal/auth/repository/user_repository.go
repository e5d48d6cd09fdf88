package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/domain"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/db"
)

var (
	ErrUserNotFound       = pgx.ErrNoRows
	ErrEmailAlreadyExists = errors.New("email already registered")
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	TokenVersionByID(ctx context.Context, userID string) (int, bool, error)
}

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, email, password_hash, role, token_version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.TokenVersion,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailAlreadyExists
		}
		return db.HandleExecError(err, "create user", start)
	}
	db.MeasureQueryDuration("create user", start)
	return nil
}

func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, email, password_hash, role, token_version, created_at
		 FROM users
		 WHERE email = $1`,
		email,
	)
	return scanUser(row, "find user by email", start)
}

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, email, password_hash, role, token_version, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	)
	return scanUser(row, "find user by id", start)
}

// TokenVersionByID backs the per-request version check in the auth gate.
func (r *PgUserRepository) TokenVersionByID(ctx context.Context, userID string) (int, bool, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT token_version FROM users WHERE id = $1`,
		userID,
	)

	var version int
	err := row.Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		db.MeasureQueryDuration("find user token version", start)
		return 0, false, nil
	}
	if err := db.HandleQueryError(err, nil, "find user token version", start); err != nil {
		return 0, false, err
	}
	return version, true, nil
}

func scanUser(row pgx.Row, operation string, start time.Time) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.TokenVersion, &user.CreatedAt)
	if err := db.HandleQueryError(err, ErrUserNotFound, operation, start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
