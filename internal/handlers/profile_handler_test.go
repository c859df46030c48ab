package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"taskify/internal/models"
	"taskify/internal/repository/repotest"
	"taskify/internal/services"
)

type memAvatarStore struct {
	key string
}

func (m *memAvatarStore) PutAvatar(_ context.Context, userID, ext, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	m.key = "avatars/" + userID + ext
	return "https://cdn.test/" + m.key, nil
}

func newProfileFixture(t *testing.T, avatars services.AvatarStore) (*ProfileHandler, *repotest.Users) {
	t.Helper()
	users := repotest.NewUsers()
	hasher := services.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("Secret#123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := users.Create(context.Background(), &models.User{
		ID: "u1", Name: "Alice", LastName: "Smith", Age: 30, Email: "alice@example.com", PasswordHash: hash,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewProfileHandler(services.NewProfileService(users, hasher, avatars)), users
}

func TestGetProfile(t *testing.T) {
	h, _ := newProfileFixture(t, nil)

	w := httptest.NewRecorder()
	h.Get(w, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), "u1"))

	expectStatus(t, w, http.StatusOK)
	if strings.Contains(w.Body.String(), "password") || strings.Contains(w.Body.String(), "reset") {
		t.Fatalf("profile leaks secrets: %s", w.Body.String())
	}
	if resp := decodeBody(t, w); resp["email"] != "alice@example.com" || resp["last_name"] != "Smith" {
		t.Fatalf("unexpected profile %v", resp)
	}
}

func TestGetProfileWithoutSession(t *testing.T) {
	h, _ := newProfileFixture(t, nil)

	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	h, users := newProfileFixture(t, nil)

	w := httptest.NewRecorder()
	h.Update(w, asUser(jsonRequest(t, http.MethodPut, "/api/v1/me", map[string]any{
		"name": "Alicia", "last_name": "Jones", "age": 31,
	}), "u1"))
	expectStatus(t, w, http.StatusOK)

	u, _ := users.GetByID(context.Background(), "u1")
	if u.Name != "Alicia" || u.LastName != "Jones" || u.Age != 31 {
		t.Fatalf("profile not updated: %+v", u)
	}

	w = httptest.NewRecorder()
	h.Update(w, asUser(jsonRequest(t, http.MethodPut, "/api/v1/me", map[string]any{"name": "OnlyName"}), "u1"))
	expectStatus(t, w, http.StatusBadRequest)
}

func TestChangeOwnPassword(t *testing.T) {
	h, _ := newProfileFixture(t, nil)

	w := httptest.NewRecorder()
	h.ChangePassword(w, asUser(jsonRequest(t, http.MethodPut, "/api/v1/me/password", map[string]any{
		"old_password": "Wrong#1234", "new_password": "Changed#456",
	}), "u1"))
	expectStatus(t, w, http.StatusUnauthorized)

	w = httptest.NewRecorder()
	h.ChangePassword(w, asUser(jsonRequest(t, http.MethodPut, "/api/v1/me/password", map[string]any{
		"old_password": "Secret#123", "new_password": "Changed#456",
	}), "u1"))
	expectStatus(t, w, http.StatusOK)
}

func avatarRequest(t *testing.T, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="me.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	_, _ = part.Write(payload)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/me/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return asUser(req, "u1")
}

func TestUploadAvatar(t *testing.T) {
	t.Run("stored", func(t *testing.T) {
		store := &memAvatarStore{}
		h, users := newProfileFixture(t, store)

		w := httptest.NewRecorder()
		h.UploadAvatar(w, avatarRequest(t, "image/png", []byte("\x89PNG fake")))
		expectStatus(t, w, http.StatusOK)

		if store.key != "avatars/u1.png" {
			t.Fatalf("unexpected key %q", store.key)
		}
		u, _ := users.GetByID(context.Background(), "u1")
		if u.AvatarURL != "https://cdn.test/avatars/u1.png" {
			t.Fatalf("avatar url not saved: %q", u.AvatarURL)
		}
	})

	t.Run("rejects non-images", func(t *testing.T) {
		h, _ := newProfileFixture(t, &memAvatarStore{})
		w := httptest.NewRecorder()
		h.UploadAvatar(w, avatarRequest(t, "application/pdf", []byte("%PDF")))
		expectStatus(t, w, http.StatusBadRequest)
	})

	t.Run("storage disabled", func(t *testing.T) {
		h, _ := newProfileFixture(t, nil)
		w := httptest.NewRecorder()
		h.UploadAvatar(w, avatarRequest(t, "image/png", []byte("png")))
		expectStatus(t, w, http.StatusServiceUnavailable)
	})
}

func TestDeleteAccount(t *testing.T) {
	h, users := newProfileFixture(t, nil)

	w := httptest.NewRecorder()
	h.Delete(w, asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/me", nil), "u1"))
	expectStatus(t, w, http.StatusOK)
	if users.Count() != 0 {
		t.Fatal("account not deleted")
	}

	w = httptest.NewRecorder()
	h.Get(w, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), "u1"))
	expectStatus(t, w, http.StatusNotFound)
}
