package http

import (
	"net/http"
	"strconv"

	commonerrors "github.com/ponton1/jwt-rbac-docker-starter/internal/common/errors"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/httpmetrics"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/logger"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/observability/metrics"
)

// HandleError is the single boundary translator: DomainError kind maps to a
// status and message, anything else collapses to a generic 500. Which specific
// check failed is never leaked beyond the DomainError's own message.
func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	if err == nil {
		return
	}

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		handleDomainError(w, r, domainErr, log)
		return
	}

	log.WithFields(r.Context(), logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
	}).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

func handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError, log *logger.Logger) {
	status := err.HTTPStatus()

	if err.Category() == commonerrors.CategoryInternal {
		log.WithFields(r.Context(), logger.Fields{
			"error_code": err.Code(),
			"status":     status,
			"action":     "domain_error",
		}).Errorf("internal error: %s", err.Error())
	} else if log.ShouldLog(logger.DEBUG) {
		log.WithFields(r.Context(), logger.Fields{
			"error_code": err.Code(),
			"category":   string(err.Category()),
			"status":     status,
			"action":     "domain_error",
		}).Debugf("domain error: %s", err.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(err.Category()),
		err.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	message := err.Message()
	if err.Category() == commonerrors.CategoryInternal {
		message = "Internal server error"
	}

	WriteError(w, status, message)
}
