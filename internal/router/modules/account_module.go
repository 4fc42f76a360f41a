package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsecare/pulsecare-api/internal/container"
	repo "github.com/pulsecare/pulsecare-api/internal/domain/repository"
	handlers "github.com/pulsecare/pulsecare-api/internal/interface/http"
	"github.com/pulsecare/pulsecare-api/internal/interface/middleware"
)

// AccountModule mounts the authenticated profile and doctor directory routes.
type AccountModule struct {
	Account *handlers.AccountHandler
	Doctors *handlers.DoctorHandler
	Tokens  repo.TokenRepository
	Users   repo.UserRepository
}

func NewAccountModule(account *handlers.AccountHandler, doctors *handlers.DoctorHandler, tokens repo.TokenRepository, users repo.UserRepository) *AccountModule {
	return &AccountModule{Account: account, Doctors: doctors, Tokens: tokens, Users: users}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	cfg := container.GetConfig()
	rdb := container.GetRedis()

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens, m.Users, rdb, cfg.AuthCacheTTL))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Account.GetProfile)
		auth.POST("/profile/avatar", m.Account.UploadAvatar)
		auth.GET("/doctors/search", m.Doctors.Search)
	}
}
