package handlers

import (
	"taskify/internal/apperrors"
	"taskify/internal/models"
	"taskify/internal/repository"
)

// UserHandler exposes read-only access to accounts. Responses use the
// Profile projection, so hashes and reset fields never leave the server.
type UserHandler struct {
	*CRUDHandler[models.User, models.Profile]
}

func NewUserHandler(users repository.UserRepository) *UserHandler {
	return &UserHandler{
		CRUDHandler: NewCRUDHandler(repository.Store[models.User](users), CRUDOptions[models.User, models.Profile]{
			View:         func(u *models.User) models.Profile { return u.Profile() },
			NotFound:     apperrors.ErrUserNotFound,
			QueryFilters: []string{"email", "name", "last_name"},
		}),
	}
}
