package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"taskify/internal/models"
	"taskify/internal/repository"
	"taskify/internal/repository/repotest"
)

const aliceID = "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"

func userRouter(h *UserHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/users", h.List)
	r.Get("/users/{id}", h.Get)
	return r
}

func TestListUsersUsesProfileProjection(t *testing.T) {
	users := repotest.NewUsers()
	for _, u := range []models.User{
		{ID: "u1", Name: "Alice", LastName: "Smith", Email: "alice@example.com", PasswordHash: "hash-a"},
		{ID: "u2", Name: "Bob", LastName: "Jones", Email: "bob@example.com", PasswordHash: "hash-b"},
	} {
		if err := users.Create(context.Background(), &u); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	r := userRouter(NewUserHandler(users))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	expectStatus(t, w, http.StatusOK)
	if strings.Contains(w.Body.String(), "hash-") {
		t.Fatalf("password hashes leaked: %s", w.Body.String())
	}

	var out []models.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 users, got %d", len(out))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users?email=bob@example.com", nil))
	expectStatus(t, w, http.StatusOK)
	out = nil
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if len(out) != 1 || out[0].ID != "u2" {
		t.Fatalf("expected only bob, got %+v", out)
	}
}

func TestGetUserNotFound(t *testing.T) {
	r := userRouter(NewUserHandler(repotest.NewUsers()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+aliceID, nil))
	expectStatus(t, w, http.StatusNotFound)
	if resp := decodeBody(t, w); resp["error"] != "user_not_found" {
		t.Fatalf("expected user_not_found, got %v", resp)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil))
	expectStatus(t, w, http.StatusNotFound)
	if resp := decodeBody(t, w); resp["error"] != "user_not_found" {
		t.Fatalf("expected user_not_found for malformed id, got %v", resp)
	}
}

func TestGetUserFromPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, name, last_name, age, email, avatar_url, password_hash, reset_token, reset_token_expiry, created_at, updated_at FROM users WHERE id = \$1`).
		WithArgs(aliceID).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(aliceID, "Alice", "Smith", 30, "alice@example.com", "", "hash", nil, nil, now, now))

	r := userRouter(NewUserHandler(repository.NewUserRepository(db)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+aliceID, nil))

	expectStatus(t, w, http.StatusOK)
	if resp := decodeBody(t, w); resp["name"] != "Alice" {
		t.Fatalf("unexpected body %v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
