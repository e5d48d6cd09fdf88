package service

import (
	"net/http"

	commonerrors "github.com/ponton1/jwt-rbac-docker-starter/internal/common/errors"
)

var (
	ErrEmailRequired = commonerrors.NewDomainError(
		"EMAIL_REQUIRED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Email is required",
	)

	ErrPasswordRequired = commonerrors.NewDomainError(
		"PASSWORD_REQUIRED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Password is required",
	)

	ErrPasswordTooShort = commonerrors.NewDomainError(
		"PASSWORD_TOO_SHORT",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Password must be at least 6 characters",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"Email already registered",
	)

	// Unknown email and wrong password share this error so responses do not
	// reveal which accounts exist.
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Invalid credentials",
	)

	ErrRefreshTokenRequired = commonerrors.NewDomainError(
		"REFRESH_TOKEN_REQUIRED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Refresh token required",
	)

	ErrInvalidRefreshToken = commonerrors.NewDomainError(
		"INVALID_REFRESH_TOKEN",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Invalid refresh token",
	)

	ErrRefreshTokenRevoked = commonerrors.NewDomainError(
		"REFRESH_TOKEN_REVOKED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Refresh token revoked or unknown",
	)

	ErrRefreshTokenAlreadyRevoked = commonerrors.NewDomainError(
		"REFRESH_TOKEN_ALREADY_REVOKED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Refresh token already revoked or unknown",
	)

	ErrRefreshTokenExpired = commonerrors.NewDomainError(
		"REFRESH_TOKEN_EXPIRED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Refresh token expired",
	)

	ErrTokenRevoked = commonerrors.NewDomainError(
		"TOKEN_REVOKED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Token revoked",
	)

	// Token subject no longer resolves to a user; surfaced during refresh.
	ErrRefreshUserNotFound = commonerrors.NewDomainError(
		"REFRESH_USER_NOT_FOUND",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"User not found",
	)

	ErrUserNotFound = commonerrors.NewDomainError(
		"USER_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"User not found",
	)
)
