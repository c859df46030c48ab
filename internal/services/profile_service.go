package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"taskify/internal/apperrors"
	"taskify/internal/models"
	"taskify/internal/repository"
)

var errWrongPassword = &apperrors.Error{
	Kind:    apperrors.KindAuthentication,
	Code:    "invalid_password",
	Message: "Old password is incorrect",
}

// ProfileService serves the signed-in user's own account.
type ProfileService struct {
	users   repository.UserRepository
	hasher  PasswordHasher
	avatars AvatarStore
}

// NewProfileService accepts a nil AvatarStore; avatar uploads then report
// ErrStorageDisabled.
func NewProfileService(users repository.UserRepository, hasher PasswordHasher, avatars AvatarStore) *ProfileService {
	return &ProfileService{users: users, hasher: hasher, avatars: avatars}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	return u, nil
}

// Update requires name and last name; age is kept when nil.
func (s *ProfileService) Update(ctx context.Context, userID string, name, lastName *string, age *int) (*models.User, error) {
	if name == nil || lastName == nil || strings.TrimSpace(*name) == "" || strings.TrimSpace(*lastName) == "" {
		return nil, apperrors.Validation("validation_error", "name and last_name are required")
	}
	if age != nil && *age < 0 {
		return nil, apperrors.Validation("validation_error", "age must not be negative")
	}

	u, err := s.users.UpdateProfile(ctx, userID, strings.TrimSpace(*name), strings.TrimSpace(*lastName), age)
	if err != nil {
		return nil, userLookupError(err)
	}
	return u, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *ProfileService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperrors.Validation("validation_error", "old_password and new_password are required")
	}
	if err := CheckPasswordPolicy(newPassword); err != nil {
		return apperrors.Validation("weak_password", PasswordPolicyMessage)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return userLookupError(err)
	}
	if !s.hasher.Verify(u.PasswordHash, oldPassword) {
		return errWrongPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return userLookupError(err)
	}
	return nil
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, userID, ext, contentType string, body io.Reader) (*models.User, error) {
	if s.avatars == nil {
		return nil, apperrors.ErrStorageDisabled
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, userLookupError(err)
	}

	url, err := s.avatars.PutAvatar(ctx, userID, ext, contentType, body)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("upload avatar: %w", err))
	}
	if err := s.users.UpdateAvatarURL(ctx, userID, url); err != nil {
		return nil, userLookupError(err)
	}
	return s.Get(ctx, userID)
}

// Delete removes the account; its tasks go with it through the foreign key.
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return userLookupError(err)
	}
	return nil
}

func userLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrUserNotFound
	}
	return apperrors.Internal(err)
}
