package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
	"github.com/pulsecare/pulsecare-api/internal/domain/repository"
)

type DoctorRepository struct {
	pool *pgxpool.Pool
}

func NewDoctorRepository(pool *pgxpool.Pool) *DoctorRepository {
	return &DoctorRepository{pool: pool}
}

func (r *DoctorRepository) Create(ctx context.Context, d *entity.Doctor) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO doctors (profile_id, specialty)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, d.ProfileID, d.Specialty)

	return row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DoctorRepository) GetByProfileID(ctx context.Context, profileID string) (*entity.Doctor, error) {
	d := &entity.Doctor{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, profile_id, specialty, created_at, updated_at
		FROM doctors
		WHERE profile_id = $1
	`, profileID)

	if err := row.Scan(&d.ID, &d.ProfileID, &d.Specialty, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

var _ repository.DoctorRepository = (*DoctorRepository)(nil)
