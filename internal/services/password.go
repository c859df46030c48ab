package services

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// PasswordSymbols is the punctuation set that satisfies the symbol rule.
const PasswordSymbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?`~"

const MinPasswordLength = 8

// PasswordPolicyMessage names the rule in validation responses.
const PasswordPolicyMessage = "password must be at least 8 characters and contain an uppercase letter, a digit and a symbol"

var ErrWeakPassword = errors.New(PasswordPolicyMessage)

// CheckPasswordPolicy reports ErrWeakPassword when pw misses any rule.
func CheckPasswordPolicy(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrWeakPassword
	}
	var upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	if !upper || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}

// NewValidator returns a validator with the password_policy tag registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return CheckPasswordPolicy(fl.Field().String()) == nil
	})
	return v
}

// PasswordHasher is the one-way transform used for stored credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares in constant time via bcrypt.
func (h *BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
