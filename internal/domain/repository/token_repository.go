package repository

import (
	"context"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
)

// TokenRepository is the durable store for opaque bearer tokens.
// GetOrCreate must be atomic in a single round trip so two concurrent logins
// for the same user always observe the same token.
type TokenRepository interface {
	GetOrCreate(ctx context.Context, userID string) (token entity.AuthToken, created bool, err error)
	FindUserID(ctx context.Context, key string) (string, error)
}
