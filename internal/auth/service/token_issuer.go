package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/domain"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/clock"
	commoncrypto "github.com/ponton1/jwt-rbac-docker-starter/internal/common/crypto"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/jwtverify"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/observability/metrics"
)

// TokenIssuer signs access and refresh tokens. The two kinds carry the same
// claim shape but distinct secrets and expiry policies; a per-issuance jti
// keeps two refresh tokens minted in the same second from hashing equal.
type TokenIssuer struct {
	accessSecret    []byte
	refreshSecret   []byte
	idGenerator     commoncrypto.IDGenerator
	clock           clock.Clock
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewTokenIssuer(
	accessSecret string,
	refreshSecret string,
	idGenerator commoncrypto.IDGenerator,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
	clock clock.Clock,
) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:    []byte(accessSecret),
		refreshSecret:   []byte(refreshSecret),
		idGenerator:     idGenerator,
		clock:           clock,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (ti *TokenIssuer) IssueAccessToken(user domain.User) (string, error) {
	token, _, err := ti.sign(user, ti.accessSecret, ti.accessTokenTTL)
	if err != nil {
		return "", err
	}
	metrics.AccessTokensIssued.Inc()
	return token, nil
}

func (ti *TokenIssuer) IssueRefreshToken(user domain.User) (string, time.Time, error) {
	token, expiresAt, err := ti.sign(user, ti.refreshSecret, ti.refreshTokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	metrics.RefreshTokensIssued.Inc()
	return token, expiresAt, nil
}

func (ti *TokenIssuer) ParseRefreshToken(tokenString string) (jwtverify.Claims, error) {
	return jwtverify.ParseToken(tokenString, ti.refreshSecret)
}

func (ti *TokenIssuer) sign(user domain.User, secret []byte, ttl time.Duration) (string, time.Time, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return "", time.Time{}, err
	}

	now := ti.clock.Now()
	expiresAt := now.Add(ttl)

	claims := jwtverify.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// HashRefreshToken is the deterministic one-way digest used as the ledger
// lookup key. The raw token is never persisted.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
