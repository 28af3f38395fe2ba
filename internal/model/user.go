package model

import "time"

// UserAccount represents a registered user. The password hash never leaves
// the process: it is excluded from JSON marshaling entirely.
type UserAccount struct {
	CreatedAt    time.Time `json:"created_at"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ID           int64     `json:"id"`
}
