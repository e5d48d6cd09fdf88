package jwtverify

import (
	"context"
	"net/http"
	"strings"

	commonhttp "github.com/ponton1/jwt-rbac-docker-starter/internal/common/http"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/logger"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/observability/metrics"
)

// UserState exposes the current per-user token version. found is false when
// the user no longer exists.
type UserState interface {
	TokenVersionByID(ctx context.Context, userID string) (version int, found bool, err error)
}

type contextKey string

const claimsKey contextKey = "jwt_claims"

// Middleware verifies the bearer access token and reconciles its embedded
// tokenVersion against current user state. The version check runs on every
// protected request; it is the mechanism that makes logout-all take effect
// without an access-token blocklist.
func Middleware(secret string, users UserState, log *logger.Logger) func(next http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics.JWTValidationsTotal.Inc()

			raw := r.Header.Get("Authorization")
			if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
				metrics.JWTValidationsFailed.Inc()
				log.Warnf("auth failed path=%s: missing or invalid authorization header", r.URL.Path)
				commonhttp.WriteError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			tokenString := strings.TrimPrefix(raw, "Bearer ")
			claims, err := ParseToken(tokenString, secretBytes)
			if err != nil {
				metrics.JWTValidationsFailed.Inc()
				log.Warnf("auth failed path=%s: %v", r.URL.Path, err)
				commonhttp.WriteError(w, http.StatusUnauthorized, "Invalid access token")
				return
			}

			version, found, err := users.TokenVersionByID(r.Context(), claims.UserID)
			if err != nil {
				log.WithFields(r.Context(), logger.Fields{
					"user_id": claims.UserID,
					"action":  "auth_user_lookup_failed",
				}).Errorf("auth failed: user lookup error: %v", err)
				commonhttp.WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !found {
				metrics.JWTValidationsFailed.Inc()
				commonhttp.WriteError(w, http.StatusUnauthorized, "User not found")
				return
			}

			if claims.TokenVersion != version {
				metrics.JWTValidationsFailed.Inc()
				log.WithFields(r.Context(), logger.Fields{
					"user_id": claims.UserID,
					"action":  "auth_token_version_mismatch",
				}).Warn("auth failed: token version mismatch")
				commonhttp.WriteError(w, http.StatusUnauthorized, "Token revoked")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only the listed roles. It must run after Middleware has
// populated the request identity.
func RequireRole(log *logger.Logger, allowedRoles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			if !ok {
				commonhttp.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !allowed[claims.Role] {
				log.WithFields(r.Context(), logger.Fields{
					"user_id": claims.UserID,
					"role":    claims.Role,
					"action":  "role_forbidden",
				}).Warn("access denied: role not allowed")
				commonhttp.WriteError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}
