package model

import (
	"time"
)

// Role is the closed set of authorization tiers. Policy code switches over
// it exhaustively and treats anything else as unknown.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleCustomer      Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleCustomer:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Not exposed
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy without the password hash.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}
