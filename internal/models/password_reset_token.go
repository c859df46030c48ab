package models

import "time"

// PasswordResetToken is a freshly issued reset secret. Raw goes out by email
// only; Hash is what gets stored on the account.
type PasswordResetToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}
