package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"taskify/internal/models"
	"taskify/internal/services"
)

type CookieSettings struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth   *services.AuthService
	cookie CookieSettings
	v      *validator.Validate
}

func NewAuthHandler(auth *services.AuthService, cookie CookieSettings) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "auth_token"
	}
	return &AuthHandler{
		auth:   auth,
		cookie: cookie,
		v:      services.NewValidator(),
	}
}

// @Tags Auth
// @Summary Register a new account
// @Accept json
// @Produce json
// @Param body body models.RegisterRequest true "Register request"
// @Success 201 {object} models.RegisterResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.auth.Register(r.Context(), services.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		LastName: strings.TrimSpace(req.LastName),
		Age:      *req.Age,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Message: "The user has been successfully registered",
		ID:      id,
	})
}

// @Tags Auth
// @Summary Log in
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ttl := h.auth.SessionTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  res.Claims.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Message:     "Login successful",
		AccessToken: res.Token,
		ExpiresIn:   int64(ttl.Seconds()),
		User:        res.User.Profile(),
	})
}

// @Tags Auth
// @Summary Log out
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSONMessage(w, http.StatusOK, "Logged out")
}

// @Tags Auth
// @Summary Request a password reset email
// @Accept json
// @Produce json
// @Param body body models.RequestPasswordResetRequest true "Reset request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/auth/requestPasswordReset [post]
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.RequestPasswordResetRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "If the email is registered, a password reset link has been sent",
	})
}

// @Tags Auth
// @Summary Change password with a reset token
// @Accept json
// @Produce json
// @Param body body models.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/auth/changePassword [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Password reset successful",
	})
}
