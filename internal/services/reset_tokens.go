package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"taskify/internal/models"
)

const (
	resetTokenBytes      = 32
	DefaultResetTokenTTL = time.Hour
)

// NewResetToken returns a 256-bit random hex token and its storage hash.
func NewResetToken(now time.Time, ttl time.Duration) (models.PasswordResetToken, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return models.PasswordResetToken{}, err
	}
	raw := hex.EncodeToString(b)
	return models.PasswordResetToken{
		Raw:       raw,
		Hash:      HashResetToken(raw),
		ExpiresAt: now.Add(ttl),
	}, nil
}

// HashResetToken is the form in which reset tokens are stored and looked up.
func HashResetToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
