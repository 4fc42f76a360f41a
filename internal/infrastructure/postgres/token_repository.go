package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
	"github.com/pulsecare/pulsecare-api/internal/domain/repository"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// GetOrCreate issues a bearer token for the user or returns the existing one.
// The upsert keeps this a single round trip: the no-op DO UPDATE makes the
// conflicting row visible to RETURNING, and xmax = 0 distinguishes a fresh
// insert from a reused token even under concurrent logins.
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID string) (entity.AuthToken, bool, error) {
	key, err := genKey()
	if err != nil {
		return entity.AuthToken{}, false, err
	}

	t := entity.AuthToken{UserID: userID}
	var created bool
	row := r.pool.QueryRow(ctx, `
		INSERT INTO auth_tokens (key, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING key, created_at, (xmax = 0)
	`, key, userID)
	if err := row.Scan(&t.Key, &t.CreatedAt, &created); err != nil {
		return entity.AuthToken{}, false, err
	}
	return t, created, nil
}

func (r *TokenRepository) FindUserID(ctx context.Context, key string) (string, error) {
	var userID string
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM auth_tokens WHERE key = $1`, key).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func genKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
