package http

import (
	"net/http"
	"time"

	commonhttp "github.com/ponton1/jwt-rbac-docker-starter/internal/common/http"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/jwtverify"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/logger"
)

type viewer struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"tokenVersion"`
}

type viewerResponse struct {
	Message string `json:"message"`
	Viewer  viewer `json:"viewer"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// NewHandler mounts the protected user routes. Every route sits behind the
// access-token gate; /users/admin-only additionally requires the admin role.
func NewHandler(gate func(http.Handler) http.Handler, timeout time.Duration, log *logger.Logger) http.Handler {
	get := func(handler http.HandlerFunc) http.HandlerFunc {
		return commonhttp.RequireMethod(http.MethodGet)(commonhttp.WithTimeout(timeout)(handler))
	}

	mux := http.NewServeMux()
	mux.Handle("/users", gate(get(usersIndex)))
	mux.Handle("/users/admin-only", gate(jwtverify.RequireRole(log, "admin")(get(adminOnly))))

	return mux
}

func usersIndex(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, viewerResponse{
		Message: "Users route working",
		Viewer: viewer{
			ID:           claims.UserID,
			Email:        claims.Email,
			Role:         claims.Role,
			TokenVersion: claims.TokenVersion,
		},
	})
}

func adminOnly(w http.ResponseWriter, r *http.Request) {
	commonhttp.WriteSuccess(w, http.StatusOK, messageResponse{Message: "Admin access granted"})
}
