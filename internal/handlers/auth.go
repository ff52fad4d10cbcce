package handlers

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/sammiepius/homelink-backend/httpx"
	"github.com/sammiepius/homelink-backend/internal/config"
	"github.com/sammiepius/homelink-backend/internal/logger"
	"github.com/sammiepius/homelink-backend/internal/services"
)

const profilePhotoField = "profilePhoto"

type AuthHandler struct {
	users *services.UserService
	limit config.UploadConfig
	log   *zap.Logger
}

func NewAuthHandler(users *services.UserService, limit config.UploadConfig, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{users: users, limit: limit, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string `json:"message"`
	*services.Session
}

type userResponse struct {
	Message string `json:"message"`
	User    any    `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if !decode(w, r, &in) {
		return
	}
	sess, err := h.users.Signup(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sessionResponse{Message: "User registered successfully", Session: sess})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	sess, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{Message: "Login successful", Session: sess})
}

// AdminLogin issues the short-lived admin session required by admin routes.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	sess, err := h.users.AdminLogin(r.Context(), in.Email, in.Password, httpx.ClientIP(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{Message: "Admin login successful", Session: sess})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// UpdateProfile accepts a JSON body or a multipart form with an optional
// profilePhoto file.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	var in services.ProfileInput
	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, h.limit.MaxFileBytes+formSlack)
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid multipart form", nil)
			return
		}
		defer r.MultipartForm.RemoveAll()
		form := r.MultipartForm
		if vs, ok := form.Value["name"]; ok && len(vs) > 0 {
			in.Name = &vs[0]
		}
		if vs, ok := form.Value["phone"]; ok && len(vs) > 0 {
			in.Phone = &vs[0]
		}
		if files := form.File[profilePhotoField]; len(files) > 0 {
			if code := imageViolation(files[0], h.limit); code != "" {
				httpx.Error(w, services.InvalidField(profilePhotoField, code))
				return
			}
			path, err := spool(files[0])
			if err != nil {
				logger.WithContext(r.Context(), h.log).Error("spool profile photo", zap.Error(err))
				httpx.JSONError(w, http.StatusInternalServerError, "Image upload failed", nil)
				return
			}
			defer os.Remove(path)
			in.PhotoPath = path
		}
	} else {
		var body struct {
			Name  *string `json:"name"`
			Phone *string `json:"phone"`
		}
		if !decode(w, r, &body) {
			return
		}
		in.Name, in.Phone = body.Name, body.Phone
	}

	updated, err := h.users.UpdateProfile(r.Context(), user, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{Message: "Profile updated successfully", User: updated})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decode(w, r, &in) {
		return
	}
	if err := h.users.ChangePassword(r.Context(), user, in.CurrentPassword, in.NewPassword); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}
