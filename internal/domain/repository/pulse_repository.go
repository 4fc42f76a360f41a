package repository

import (
	"context"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
)

// PulseRepository stores vitals readings.
type PulseRepository interface {
	Create(ctx context.Context, p *entity.Pulse) error
	// Latest returns up to limit readings ordered by id descending.
	Latest(ctx context.Context, limit int) ([]entity.Pulse, error)
}
