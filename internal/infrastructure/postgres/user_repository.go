package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
	"github.com/pulsecare/pulsecare-api/internal/domain/repository"
)

var ErrNotFound = errors.New("not found")

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, COALESCE(email, ''), username, password_hash, first_name, last_name, is_active, created_at, updated_at`

func scanUser(row pgx.Row, u *entity.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Username, &u.Password, &u.FirstName,
		&u.LastName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	// Empty email is stored as NULL so the unique index only covers real addresses.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, first_name, last_name, is_active)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Username, u.Password, u.FirstName, u.LastName, u.IsActive)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)

	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)

	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// FindByIdentifier matches users by email or username while excluding rows
// without a usable email, regardless of which identifier was supplied.
func (r *UserRepository) FindByIdentifier(ctx context.Context, email, username string) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT `+userColumns+`
		FROM users
		WHERE (email = $1 OR username = $2)
		  AND email IS NOT NULL
		  AND email <> ''
	`, email, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET is_active = TRUE, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
