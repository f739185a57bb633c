package models

import "time"

// User roles recognized by the service.
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleCredit = "credit"
)

// User represents an authenticated principal in the system
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
