package domain

import (
	"time"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
)

// User represents an account holder with one of the three roles.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Address      string
	Role         auth.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
