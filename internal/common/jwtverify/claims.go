package jwtverify

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token is not valid")
	ErrMissingClaims = errors.New("missing required token claims")
)

// TokenClaims is the payload embedded in both access and refresh tokens.
// The two token kinds share this shape but are signed with distinct secrets.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"tokenVersion"`
}

// Claims is the verified identity attached to a request context.
type Claims struct {
	UserID       string `json:"sub"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"tokenVersion"`
}

// ParseToken checks signature and expiry. Expired tokens are reported
// distinctly so callers can count them, but both failures are 401-equivalent.
func ParseToken(tokenString string, secret []byte) (Claims, error) {
	claims := &TokenClaims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, err
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}

	if claims.Subject == "" || claims.Email == "" {
		return Claims{}, ErrMissingClaims
	}

	return Claims{
		UserID:       claims.Subject,
		Email:        claims.Email,
		Role:         claims.Role,
		TokenVersion: claims.TokenVersion,
	}, nil
}
