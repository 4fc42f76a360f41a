package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsecare/pulsecare-api/internal/container"
	repo "github.com/pulsecare/pulsecare-api/internal/domain/repository"
	handlers "github.com/pulsecare/pulsecare-api/internal/interface/http"
	"github.com/pulsecare/pulsecare-api/internal/interface/middleware"
)

// AuthModule mounts the public account endpoints.
// POST /api/auth/register, /api/auth/login, /api/auth/reset,
// /api/auth/reset/confirm, /api/auth/verify/confirm
type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  repo.TokenRepository
	Users   repo.UserRepository
}

func NewAuthModule(h *handlers.AuthHandler, tokens repo.TokenRepository, users repo.UserRepository) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens, Users: users}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	resetLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	confirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/reset", resetLimiter, m.Handler.ResetRequest)
	rg.POST("/auth/reset/confirm", confirmLimiter, m.Handler.ResetConfirm)
	rg.POST("/auth/verify/confirm", confirmLimiter, m.Handler.VerifyConfirm)
}
