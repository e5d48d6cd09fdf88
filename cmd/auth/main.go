package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/ponton1/jwt-rbac-docker-starter/internal/auth/http"
	authrepo "github.com/ponton1/jwt-rbac-docker-starter/internal/auth/repository"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/service"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/clock"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/config"
	commoncrypto "github.com/ponton1/jwt-rbac-docker-starter/internal/common/crypto"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/db"
	commonhttp "github.com/ponton1/jwt-rbac-docker-starter/internal/common/http"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/jwtverify"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/logger"
	srv "github.com/ponton1/jwt-rbac-docker-starter/internal/common/server"
	usershttp "github.com/ponton1/jwt-rbac-docker-starter/internal/users/http"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "auth", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := db.RunMigrations(context.Background(), cfg.DatabaseURL); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	userRepo := authrepo.NewPgUserRepository(pool)
	refreshTokenRepo := authrepo.NewPgRefreshTokenRepository(pool)
	txManager := authrepo.NewPgTxManager(pool)

	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := commoncrypto.NewUUIDGenerator()
	clk := clock.NewRealClock()

	issuer := service.NewTokenIssuer(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		idGenerator,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		clk,
	)

	authService := service.NewAuthService(
		userRepo,
		refreshTokenRepo,
		txManager,
		issuer,
		hasher,
		idGenerator,
		clk,
		log,
	)

	gate := jwtverify.Middleware(cfg.AccessTokenSecret, userRepo, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler())
	mux.Handle("/metrics", promhttp.Handler())
	usersHandler := usershttp.NewHandler(gate, cfg.RequestTimeout, log)
	mux.Handle("/auth/", authhttp.NewHandler(authService, gate, cfg.RequestTimeout, log))
	mux.Handle("/users", usersHandler)
	mux.Handle("/users/", usersHandler)
	mux.HandleFunc("/", rootHandler)

	baseHandler := commonhttp.BuildBaseHandler(log, mux)

	server := srv.New(cfg.HTTPPort, baseHandler)
	srv.StartWithGracefulShutdown(server, log)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		commonhttp.WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	commonhttp.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "Auth API up. Try POST /auth/register or POST /auth/login",
	})
}
