package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// User roles.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// EmergencyContact is a curated support resource surfaced by the assistant
// and the emergency endpoints.
type EmergencyContact struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Phone       string    `json:"phone"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
