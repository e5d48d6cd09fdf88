package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the credential-store record. TokenVersion starts at 1 and only ever
// grows; bumping it invalidates every previously issued token for the user.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	TokenVersion int
	CreatedAt    time.Time
}
