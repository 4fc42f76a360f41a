package repository

import (
	"context"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
)

// ProfileRepository persists the 1:1 user profile extension.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	GetByUserID(ctx context.Context, userID string) (*entity.Profile, error)
	SetEmailVerified(ctx context.Context, userID string) error
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
}

// DoctorRepository persists the doctor extension of a profile.
type DoctorRepository interface {
	Create(ctx context.Context, d *entity.Doctor) error
	GetByProfileID(ctx context.Context, profileID string) (*entity.Doctor, error)
}
