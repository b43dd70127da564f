package models

import "time"

// AdminRecord is a persisted snapshot of one successful generation. It embeds
// full copies of the profile and plan exactly as they were shown to the user.
type AdminRecord struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId,omitempty"` // lookup only, no ownership
	Timestamp   time.Time   `json:"timestamp"`
	User        UserProfile `json:"user"`
	Plan        FitnessPlan `json:"plan"`
	PlanSummary string      `json:"planSummary"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account record. Email is the unique key and is stored
// normalized (trimmed, lower-case).
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the account view sent to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
