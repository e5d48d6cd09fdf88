package http

import (
	"net/http"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/constants"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/httpmetrics"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/logger"
)

// BuildBaseHandler wires the outer middleware stack shared by every route.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(recovery(TraceIDMiddleware(maxRequestSize(httpmetrics.Wrap(handler)))))
}
