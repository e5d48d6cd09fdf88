package http

import (
	"net/http"
	"time"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/service"
	commonhttp "github.com/ponton1/jwt-rbac-docker-starter/internal/common/http"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/jwtverify"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/logger"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Tokens service.TokenPair `json:"tokens"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type Handler struct {
	auth *service.AuthService
	log  *logger.Logger
}

// NewHandler mounts the auth routes. gate is the access-token middleware;
// logout-all is the only auth route behind it, since it needs a verified
// subject to know whose sessions to kill.
func NewHandler(auth *service.AuthService, gate func(http.Handler) http.Handler, timeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{auth: auth, log: log}
	post := func(handler http.HandlerFunc) http.HandlerFunc {
		return commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(timeout)(handler))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", post(h.register))
	mux.HandleFunc("/auth/login", post(h.login))
	mux.HandleFunc("/auth/refresh", post(h.refresh))
	mux.HandleFunc("/auth/logout", post(h.logout))
	mux.Handle("/auth/logout-all", gate(post(h.logoutAll)))
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusCreated, result)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, result)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("refresh failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, refreshResponse{Tokens: tokens})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("logout failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *Handler) logoutAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	if err := h.auth.LogoutAll(r.Context(), claims.UserID); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, messageResponse{Message: "Logged out from all sessions"})
}
