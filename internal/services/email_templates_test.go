package services

import (
	"strings"
	"testing"
	"time"
)

func TestResetLink(t *testing.T) {
	got := ResetLink("http://localhost:5173", "abc123")
	if got != "http://localhost:5173/changePassword?token=abc123" {
		t.Fatalf("unexpected link %q", got)
	}
}

func TestResetPasswordEmail(t *testing.T) {
	link := ResetLink("https://app.test", "deadbeef")
	msg, err := ResetPasswordEmail("a@b.com", link, time.Hour)
	if err != nil {
		t.Fatalf("ResetPasswordEmail: %v", err)
	}
	if msg.To != "a@b.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if !strings.Contains(msg.HTML, link) {
		t.Fatalf("body does not contain link: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "1 hour") {
		t.Fatalf("body does not mention expiry: %s", msg.HTML)
	}
}

func TestWelcomeEmailEscapesName(t *testing.T) {
	msg, err := WelcomeEmail("a@b.com", "<script>", "https://app.test")
	if err != nil {
		t.Fatalf("WelcomeEmail: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("name not escaped: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "https://app.test/login") {
		t.Fatalf("missing login link: %s", msg.HTML)
	}
}

func TestHumanDuration(t *testing.T) {
	cases := map[time.Duration]string{
		time.Hour:        "1 hour",
		2 * time.Hour:    "2 hours",
		30 * time.Minute: "30 minutes",
		time.Minute:      "1 minute",
	}
	for d, want := range cases {
		if got := humanDuration(d); got != want {
			t.Errorf("humanDuration(%v) = %q, want %q", d, got, want)
		}
	}
}
