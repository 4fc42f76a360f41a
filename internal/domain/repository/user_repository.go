package repository

import (
	"context"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Uniqueness of email and username is enforced by database constraints; the
// Exists checks are best-effort pre-checks and two concurrent registrations
// may still race on the constraint (surfaced as a raw error from Create).
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByIdentifier returns users whose email or username matches,
	// excluding users with a NULL or empty email.
	FindByIdentifier(ctx context.Context, email, username string) ([]entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string) error
}
