package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"taskify/internal/middleware"
	"taskify/internal/repository"
	"taskify/internal/services"
)

type noopMailer struct{}

func (noopMailer) Send(context.Context, services.Message) error { return nil }

type captureMailer struct {
	last services.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg services.Message) error {
	if m.err != nil {
		return m.err
	}
	m.last = msg
	return nil
}

func newAuthService(users repository.UserRepository, mailer services.EmailSender) *services.AuthService {
	return services.NewAuthService(
		users,
		services.NewBcryptHasher(bcrypt.MinCost),
		services.NewTokenIssuer("dev", 2*time.Hour),
		mailer,
		nil,
		services.AuthConfig{FrontendURL: "http://localhost:5173", ResetTokenTTL: time.Hour},
	)
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.CtxUserID, userID))
}

// withUser stands in for SessionAuth in handler tests.
func withUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, asUser(r, userID))
		})
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return resp
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d got %d (%s)", want, w.Code, w.Body.String())
	}
}
