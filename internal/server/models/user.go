// Package models contains the server-side domain types shared by
// repositories, services and the HTTP surface.
package models

import "time"

// User is a registered account. PasswordHash is an argon2id digest of the
// password under Salt; the plaintext is never persisted.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}
