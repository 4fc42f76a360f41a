package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
	"github.com/pulsecare/pulsecare-api/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, gender, avatar_url, has_email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Gender, p.AvatarURL, p.HasEmailVerified)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	p := &entity.Profile{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, gender, avatar_url, has_email_verified, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID)

	if err := row.Scan(&p.ID, &p.UserID, &p.Gender, &p.AvatarURL,
		&p.HasEmailVerified, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) SetEmailVerified(ctx context.Context, userID string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE profiles SET has_email_verified = TRUE, updated_at = now() WHERE user_id = $1
	`, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE profiles SET avatar_url = $1, updated_at = now() WHERE user_id = $2
	`, avatarURL, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
