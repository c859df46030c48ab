package models

import "time"

// User is the stored account. PasswordHash and the reset fields never leave the server.
type User struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	LastName         string     `json:"last_name"`
	Age              int        `json:"age"`
	Email            string     `json:"email"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	PasswordHash     string     `json:"-"`
	ResetTokenHash   *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Profile is the public projection of a User.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Age       int       `json:"age"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		LastName:  u.LastName,
		Age:       u.Age,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	LastName string `json:"last_name" validate:"required"`
	Age      *int   `json:"age" validate:"required,gte=0,lte=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_policy"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message     string  `json:"message"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int64   `json:"expires_in"`
	User        Profile `json:"user"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,password_policy"`
}

// UpdateProfileRequest requires name and last name; age is applied only when present.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"required"`
	LastName *string `json:"last_name" validate:"required"`
	Age      *int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,password_policy"`
}
