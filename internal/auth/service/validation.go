package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/constants"
)

var (
	validate     = validator.New()
	passwordRule = fmt.Sprintf("required,min=%d", constants.PasswordMinLength)
)

// NormalizeEmail is applied before any lookup or comparison so every casing
// and whitespace variant of an address resolves to the same user.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegister(email, password string) error {
	if err := validate.Var(email, "required"); err != nil {
		return ErrEmailRequired
	}
	if err := validate.Var(password, passwordRule); err != nil {
		return ErrPasswordTooShort
	}
	return nil
}

func validateLogin(email, password string) error {
	if err := validate.Var(email, "required"); err != nil {
		return ErrEmailRequired
	}
	if err := validate.Var(password, "required"); err != nil {
		return ErrPasswordRequired
	}
	return nil
}
