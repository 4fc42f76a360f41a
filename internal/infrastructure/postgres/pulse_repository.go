package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
	"github.com/pulsecare/pulsecare-api/internal/domain/repository"
)

type PulseRepository struct {
	pool *pgxpool.Pool
}

func NewPulseRepository(pool *pgxpool.Pool) *PulseRepository {
	return &PulseRepository{pool: pool}
}

func (r *PulseRepository) Create(ctx context.Context, p *entity.Pulse) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO pulses (patient_name, rate, recorded_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.PatientName, p.Rate, p.RecordedAt)

	return row.Scan(&p.ID)
}

func (r *PulseRepository) Latest(ctx context.Context, limit int) ([]entity.Pulse, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_name, rate, recorded_at
		FROM pulses
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pulses []entity.Pulse
	for rows.Next() {
		var p entity.Pulse
		if err := rows.Scan(&p.ID, &p.PatientName, &p.Rate, &p.RecordedAt); err != nil {
			return nil, err
		}
		pulses = append(pulses, p)
	}
	return pulses, rows.Err()
}

var _ repository.PulseRepository = (*PulseRepository)(nil)
