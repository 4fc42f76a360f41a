package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsecare/pulsecare-api/internal/container"
	repo "github.com/pulsecare/pulsecare-api/internal/domain/repository"
	handlers "github.com/pulsecare/pulsecare-api/internal/interface/http"
	"github.com/pulsecare/pulsecare-api/internal/interface/middleware"
)

// VitalsModule mounts the pulse readings feed for authenticated staff.
type VitalsModule struct {
	Handler *handlers.VitalsHandler
	Tokens  repo.TokenRepository
	Users   repo.UserRepository
}

func NewVitalsModule(h *handlers.VitalsHandler, tokens repo.TokenRepository, users repo.UserRepository) *VitalsModule {
	return &VitalsModule{Handler: h, Tokens: tokens, Users: users}
}

func (m *VitalsModule) Register(rg *gin.RouterGroup) {
	cfg := container.GetConfig()
	rdb := container.GetRedis()

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens, m.Users, rdb, cfg.AuthCacheTTL))
	auth.Use(middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()))
	{
		auth.GET("/vitals", m.Handler.List)
		auth.POST("/vitals", m.Handler.Record)
	}
}
