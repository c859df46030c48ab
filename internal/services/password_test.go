package services

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCheckPasswordPolicy(t *testing.T) {
	cases := []struct {
		pw string
		ok bool
	}{
		{"LongEnough1!", true},
		{"Abcdef1@", true},
		{"short1!", false},
		{"alllowercase1!", false},
		{"NoDigitsHere!", false},
		{"NoSymbols123", false},
		{"", false},
	}
	for _, c := range cases {
		err := CheckPasswordPolicy(c.pw)
		if (err == nil) != c.ok {
			t.Errorf("CheckPasswordPolicy(%q) = %v, want ok=%v", c.pw, err, c.ok)
		}
	}
}

func TestValidatorPasswordPolicyTag(t *testing.T) {
	type req struct {
		Password string `json:"password" validate:"required,password_policy"`
	}
	v := NewValidator()

	if err := v.Struct(req{Password: "LongEnough1!"}); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
	if err := v.Struct(req{Password: "short1!"}); err == nil {
		t.Fatal("expected policy violation")
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("LongEnough1!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "LongEnough1!" {
		t.Fatal("hash equals plaintext")
	}
	if !h.Verify(hash, "LongEnough1!") {
		t.Fatal("expected password to verify")
	}
	if h.Verify(hash, "Wrong#1234") {
		t.Fatal("expected wrong password to fail")
	}

	if got := NewBcryptHasher(0).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("out-of-range cost not defaulted: %d", got)
	}
}
