// Package models - user.go defines the User model for platform accounts.
// The email doubles as the login username and as the actor identity shown in
// audit messages. PasswordHash is a bcrypt hash; plaintext passwords are never
// stored.
package models

import "time"

// User represents a platform account
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayFields returns the loggable field set of the user. The password hash
// is deliberately excluded so it can never leak into audit messages.
func (u *User) DisplayFields() map[string]string {
	return map[string]string{
		"Email": u.Email,
	}
}
