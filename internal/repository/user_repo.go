package repository

import (
	"context"
	"errors"
	"time"

	"taskmaster/internal/db"
	"taskmaster/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	pool db.Querier
}

func NewUserRepository(pool db.Querier) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateWithCategories inserts u and its starter categories in one transaction.
// u.ID and u.CreatedAt are assigned here.
func (r *UserRepository) CreateWithCategories(ctx context.Context, u *domain.User, categories []domain.CategoryInput) error {
	tx, err := db.From(ctx, r.pool).Begin(ctx)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var taken bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM users
			WHERE username = $1 OR ($2::text IS NOT NULL AND email = $2)
		)`,
		u.Username, u.Email,
	).Scan(&taken)
	if err != nil {
		return classify(err)
	}
	if taken {
		return domain.Conflict("username or email already in use")
	}

	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("username or email already in use")
		}
		return classify(err)
	}

	for _, c := range categories {
		_, err = tx.Exec(ctx,
			`INSERT INTO categories (id, user_id, name, color, icon, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), u.ID, c.Name, c.Color, c.Icon, u.CreatedAt,
		)
		if err != nil {
			return classify(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users
		 WHERE username = $1`,
		username,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, classify(err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("user not found")
		}
		return nil, classify(err)
	}
	return &u, nil
}
