package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pulsecare/pulsecare-api/internal/application"
	"github.com/pulsecare/pulsecare-api/pkg/response"
	"github.com/pulsecare/pulsecare-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

func site(c *gin.Context) application.SiteContext {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return application.SiteContext{Scheme: scheme, Host: c.Request.Host}
}

type registerRequest struct {
	FirstName            string `json:"first_name" binding:"required"`
	LastName             string `json:"last_name" binding:"required"`
	Username             string `json:"username" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Gender               string `json:"gender" binding:"required"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_2" binding:"required"`
	Specialty            string `json:"specialty" binding:"required"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.RegisterInput{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Username:             req.Username,
		Email:                req.Email,
		Gender:               req.Gender,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Specialty:            req.Specialty,
	}
	out, err := h.Svc.Register(c.Request.Context(), in, site(c))
	if err != nil {
		if application.IsValidationError(err) {
			response.Error[any](c, http.StatusBadRequest, "validation failed", map[string]string{registerField(err): err.Error()})
			return
		}
		h.Logger.WithError(err).Error("registration failed")
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, out, "registration successful, please verify your email", nil)
}

func registerField(err error) string {
	switch {
	case errors.Is(err, application.ErrEmailTaken):
		return "email"
	case errors.Is(err, application.ErrPasswordTooShort):
		return "password"
	case errors.Is(err, application.ErrPasswordMismatch):
		return "password_2"
	case errors.Is(err, application.ErrUsernameTaken):
		return "username"
	default:
		return "non_field_errors"
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if application.IsValidationError(err) {
			response.Error[any](c, http.StatusBadRequest, "login failed", map[string]string{"non_field_errors": err.Error()})
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token.Key}, "login successful", nil)
}

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetRequest POST /api/auth/reset
// Always answers success so callers cannot probe registered addresses.
func (h *AuthHandler) ResetRequest(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	h.Svc.ResetRequest(c.Request.Context(), req.Email, site(c))
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "reset email sent", nil)
}

type resetConfirmRequest struct {
	UID                     string `json:"uid" binding:"required"`
	Token                   string `json:"token" binding:"required"`
	NewPassword             string `json:"new_password" binding:"required"`
	NewPasswordConfirmation string `json:"new_password_2" binding:"required"`
}

// ResetConfirm POST /api/auth/reset/confirm
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	ctx := c.Request.Context()
	st := h.Svc.PrepareResetConfirm(ctx, req.UID, req.Token)
	if err := h.Svc.ConfirmReset(ctx, st, req.NewPassword, req.NewPasswordConfirmation); err != nil {
		if application.IsValidationError(err) {
			field := "non_field_errors"
			if errors.Is(err, application.ErrPasswordMismatch) {
				field = "new_password_2"
			}
			response.Error[any](c, http.StatusBadRequest, "reset failed", map[string]string{field: err.Error()})
			return
		}
		h.Logger.WithError(err).Error("password reset failed")
		response.Error[any](c, http.StatusInternalServerError, "reset failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

type verifyConfirmRequest struct {
	UID   string `json:"uid" binding:"required"`
	Token string `json:"token" binding:"required"`
}

// VerifyConfirm POST /api/auth/verify/confirm
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req verifyConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ActivateAccount(c.Request.Context(), req.UID, req.Token); err != nil {
		if application.IsValidationError(err) {
			response.Error[any](c, http.StatusBadRequest, "verification failed", map[string]string{"non_field_errors": err.Error()})
			return
		}
		h.Logger.WithError(err).Error("account activation failed")
		response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"verified": true}, "account activated", nil)
}
