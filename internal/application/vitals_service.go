package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
	repo "github.com/pulsecare/pulsecare-api/internal/domain/repository"
	"github.com/pulsecare/pulsecare-api/pkg/helpers"
)

const vitalsCacheKey = "vitals:latest"

// VitalsService serves the pulse readings feed. The listing is the most
// frequently hit endpoint on the ward dashboards, so the latest page is kept
// in redis for a short TTL. Redis may be nil; the cache is then skipped.
type VitalsService struct {
	Pulses   repo.PulseRepository
	Redis    *redis.Client
	Logger   *logrus.Logger
	PageSize int
	CacheTTL time.Duration
}

func NewVitalsService(pulses repo.PulseRepository, rdb *redis.Client, logger *logrus.Logger, pageSize int, cacheTTL time.Duration) *VitalsService {
	if pageSize <= 0 {
		pageSize = 30
	}
	return &VitalsService{Pulses: pulses, Redis: rdb, Logger: logger, PageSize: pageSize, CacheTTL: cacheTTL}
}

// Latest returns the newest readings, most recent first.
func (s *VitalsService) Latest(ctx context.Context) ([]entity.Pulse, error) {
	if s.Redis != nil {
		var cached []entity.Pulse
		hit, err := helpers.RedisGetJSON(ctx, s.Redis, vitalsCacheKey, &cached)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("vitals cache read failed")
		}
		if hit {
			return cached, nil
		}
	}

	pulses, err := s.Pulses.Latest(ctx, s.PageSize)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil && s.CacheTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, vitalsCacheKey, pulses, s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("vitals cache write failed")
		}
	}
	return pulses, nil
}

// Record stores one reading and drops the cached page.
func (s *VitalsService) Record(ctx context.Context, patientName string, rate int, recordedAt time.Time) (*entity.Pulse, error) {
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	p := &entity.Pulse{PatientName: patientName, Rate: rate, RecordedAt: recordedAt}
	if err := s.Pulses.Create(ctx, p); err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, vitalsCacheKey).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("vitals cache invalidation failed")
		}
	}
	return p, nil
}
