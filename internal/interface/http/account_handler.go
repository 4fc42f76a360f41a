package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pulsecare/pulsecare-api/internal/application"
	"github.com/pulsecare/pulsecare-api/internal/interface/middleware"
	"github.com/pulsecare/pulsecare-api/pkg/response"
)

// AccountHandler serves the authenticated user's own profile.
type AccountHandler struct {
	Auth    *application.AuthService
	Doctors *application.DoctorService
	Logger  *logrus.Logger
}

func NewAccountHandler(auth *application.AuthService, doctors *application.DoctorService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Auth: auth, Doctors: doctors, Logger: logger}
}

// GetProfile GET /api/profile
func (h *AccountHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, p, err := h.Auth.Profile(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "profile not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
		},
		"has_email_verified": p.HasEmailVerified,
		"gender":             p.Gender,
		"avatar_url":         p.AvatarURL,
	}, "profile", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart field "file")
func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Doctors.UploadAvatar(c.Request.Context(), uid, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.WithError(err).Error("avatar upload failed")
		response.Error[any](c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}
