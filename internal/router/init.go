package router

import (
	"github.com/pulsecare/pulsecare-api/internal/application"
	"github.com/pulsecare/pulsecare-api/internal/container"
	pginfra "github.com/pulsecare/pulsecare-api/internal/infrastructure/postgres"
	handlers "github.com/pulsecare/pulsecare-api/internal/interface/http"
	"github.com/pulsecare/pulsecare-api/internal/router/modules"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers all feature modules. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	profiles := pginfra.NewProfileRepository(pool)
	doctors := pginfra.NewDoctorRepository(pool)
	tokens := pginfra.NewTokenRepository(pool)
	pulses := pginfra.NewPulseRepository(pool)

	authSvc := application.NewAuthService(
		users, profiles, doctors, tokens,
		container.GetResetGen(),
		container.GetRabbitPub(),
		logger,
		cfg,
		container.GetES(),
	)
	doctorSvc := application.NewDoctorService(
		profiles,
		container.GetES(), cfg.ESDoctorsIndex,
		container.GetGCS(), cfg.GCSBucket,
		logger,
	)
	vitalsSvc := application.NewVitalsService(pulses, container.GetRedis(), logger, cfg.VitalsPageSize, cfg.VitalsCacheTTL)

	authHandler := handlers.NewAuthHandler(authSvc, logger)
	accountHandler := handlers.NewAccountHandler(authSvc, doctorSvc, logger)
	doctorHandler := handlers.NewDoctorHandler(doctorSvc, logger)
	vitalsHandler := handlers.NewVitalsHandler(vitalsSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, tokens, users))
	r.Add(modules.NewAccountModule(accountHandler, doctorHandler, tokens, users))
	r.Add(modules.NewVitalsModule(vitalsHandler, tokens, users))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
