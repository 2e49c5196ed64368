package models

import "time"

// Role is the business classification of a user. It never changes with workflow state.
type Role string

const (
	RoleUser     Role = "user"
	RoleProducer Role = "producer"
	RoleAdmin    Role = "admin"
)

// User represents a user in the database.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordDigest string    `db:"password_digest" json:"-"`
	Role           Role      `db:"role" json:"role"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Actor is the already-authenticated identity of the current request.
// It is supplied by the session layer and only ever read here.
type Actor struct {
	ID   int64
	Role Role
}

func (a *Actor) IsAdmin() bool    { return a != nil && a.Role == RoleAdmin }
func (a *Actor) IsProducer() bool { return a != nil && a.Role == RoleProducer }
func (a *Actor) IsUser() bool     { return a != nil && a.Role == RoleUser }
