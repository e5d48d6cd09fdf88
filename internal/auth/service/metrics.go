package service

import (
	"github.com/ponton1/jwt-rbac-docker-starter/internal/observability/metrics"
)

func incrementRefreshTokensRotated() {
	metrics.RefreshTokensRotated.Inc()
}

func incrementRefreshTokensRevoked() {
	metrics.RefreshTokensRevoked.Inc()
}

func incrementRefreshTokensExpired() {
	metrics.RefreshTokensExpired.Inc()
}

func incrementTokenVersionBumps() {
	metrics.TokenVersionBumps.Inc()
}
