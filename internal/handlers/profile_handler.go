package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"taskify/internal/apperrors"
	"taskify/internal/middleware"
	"taskify/internal/models"
	"taskify/internal/services"
)

const maxAvatarBytes = 5 << 20

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProfileHandler serves /me. The subject always comes from the verified session.
type ProfileHandler struct {
	profiles *services.ProfileService
	v        *validator.Validate
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, v: services.NewValidator()}
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, apperrors.ErrAuthRequired)
	}
	return id, ok
}

// @Tags Profile
// @Summary Read own profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/me [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	u, err := h.profiles.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Profile())
}

// @Tags Profile
// @Summary Edit own profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.UpdateProfileRequest true "Update profile request"
// @Success 200 {object} models.Profile
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/me [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.profiles.Update(r.Context(), id, req.Name, req.LastName, req.Age)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Profile())
}

// @Tags Profile
// @Summary Change own password
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.ChangePasswordRequest true "Change password request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/me/password [put]
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.profiles.ChangePassword(r.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONMessage(w, http.StatusOK, "password updated")
}

// @Tags Profile
// @Summary Upload own avatar
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 200 {object} models.Profile
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/me/avatar [put]
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+(1<<20))
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxAvatarBytes {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "file must be at most 5 MiB")
		return
	}
	contentType := header.Header.Get("Content-Type")
	ext, allowed := avatarTypes[contentType]
	if !allowed {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "file must be a JPEG, PNG, GIF or WebP image")
		return
	}
	if e := strings.ToLower(filepath.Ext(header.Filename)); e == ".jpeg" || e == ext {
		ext = e
	}

	u, err := h.profiles.UpdateAvatar(r.Context(), id, ext, contentType, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Profile())
}

// @Tags Profile
// @Summary Delete own account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/me [delete]
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.profiles.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONMessage(w, http.StatusOK, "User has been deleted successfully")
}
