package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"taskify/internal/apperrors"
	"taskify/internal/models"
	"taskify/internal/repository/repotest"
)

type memAvatars struct {
	keys map[string]string
}

func (m *memAvatars) PutAvatar(_ context.Context, userID, ext, _ string, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if m.keys == nil {
		m.keys = map[string]string{}
	}
	m.keys[userID+ext] = string(b)
	return "https://cdn.test/avatars/" + userID + ext, nil
}

func newTestProfiles(t *testing.T, avatars AvatarStore) (*ProfileService, *repotest.Users, string) {
	t.Helper()
	users := repotest.NewUsers()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("Secret#123")
	require.NoError(t, err)

	u := &models.User{ID: "u1", Name: "Alice", LastName: "Smith", Age: 30, Email: "alice@example.com", PasswordHash: hash}
	require.NoError(t, users.Create(context.Background(), u))
	return NewProfileService(users, hasher, avatars), users, u.ID
}

func strPtr(s string) *string { return &s }

func TestProfileUpdate(t *testing.T) {
	svc, _, id := newTestProfiles(t, nil)
	ctx := context.Background()

	u, err := svc.Update(ctx, id, strPtr(" Alicia "), strPtr("Jones"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Name)
	assert.Equal(t, "Jones", u.LastName)
	assert.Equal(t, 30, u.Age)

	age := 31
	u, err = svc.Update(ctx, id, strPtr("Alicia"), strPtr("Jones"), &age)
	require.NoError(t, err)
	assert.Equal(t, 31, u.Age)

	_, err = svc.Update(ctx, id, strPtr(""), strPtr("Jones"), nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Update(ctx, "missing", strPtr("A"), strPtr("B"), nil)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestProfileChangePassword(t *testing.T) {
	svc, users, id := newTestProfiles(t, nil)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, id, "Wrong#1234", "Changed#456")
	assert.Equal(t, apperrors.KindAuthentication, apperrors.KindOf(err))

	err = svc.ChangePassword(ctx, id, "Secret#123", "weak")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	require.NoError(t, svc.ChangePassword(ctx, id, "Secret#123", "Changed#456"))
	u, err := users.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, svc.hasher.Verify(u.PasswordHash, "Changed#456"))
}

func TestProfileAvatar(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc, _, id := newTestProfiles(t, nil)
		_, err := svc.UpdateAvatar(context.Background(), id, ".png", "image/png", strings.NewReader("x"))
		assert.ErrorIs(t, err, apperrors.ErrStorageDisabled)
	})

	t.Run("stored", func(t *testing.T) {
		store := &memAvatars{}
		svc, _, id := newTestProfiles(t, store)
		u, err := svc.UpdateAvatar(context.Background(), id, ".png", "image/png", strings.NewReader("png-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/avatars/u1.png", u.AvatarURL)
		assert.Equal(t, "png-bytes", store.keys["u1.png"])
	})
}

func TestProfileDelete(t *testing.T) {
	svc, users, id := newTestProfiles(t, nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Zero(t, users.Count())
	assert.ErrorIs(t, svc.Delete(context.Background(), id), apperrors.ErrUserNotFound)
}
