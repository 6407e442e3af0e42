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

const categoryColumns = `id, user_id, name, color, icon, created_at`

type CategoryRepository struct {
	pool db.Querier
}

func NewCategoryRepository(pool db.Querier) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns the owner's categories together with the global ones, by name.
func (r *CategoryRepository) List(ctx context.Context, owner uuid.UUID) ([]domain.Category, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE user_id = $1 OR user_id IS NULL
		 ORDER BY name`,
		owner,
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	res := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return res, nil
}

func (r *CategoryRepository) Create(ctx context.Context, owner uuid.UUID, in domain.CategoryInput) (*domain.Category, error) {
	color := in.Color
	if color == "" {
		color = domain.DefaultCategoryColor
	}

	row := db.From(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO categories (id, user_id, name, color, icon, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+categoryColumns,
		uuid.New(), owner, in.Name, color, in.Icon, time.Now().UTC().Truncate(time.Microsecond),
	)
	c, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict("a category with this name already exists")
		}
		return nil, err
	}
	return c, nil
}

// Update applies the fields present in patch to a category the owner holds.
// Global categories never match.
func (r *CategoryRepository) Update(ctx context.Context, owner, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	tx, err := db.From(ctx, r.pool).Begin(ctx)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var found uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM categories WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, owner,
	).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("category not found")
		}
		return nil, classify(err)
	}

	if patch.Empty() {
		return nil, domain.BadRequest("no fields to update")
	}

	if patch.Name != nil {
		var taken bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM categories WHERE name = $1 AND user_id = $2 AND id <> $3
			)`,
			*patch.Name, owner, id,
		).Scan(&taken)
		if err != nil {
			return nil, classify(err)
		}
		if taken {
			return nil, domain.Conflict("a category with this name already exists")
		}
	}

	var a assignments
	if patch.Name != nil {
		a.set("name", *patch.Name)
	}
	if patch.Color != nil {
		a.set("color", *patch.Color)
	}
	if patch.IconSet {
		a.set("icon", patch.Icon)
	}

	query := `UPDATE categories SET ` + a.clause() +
		` WHERE id = ` + a.arg(id) + ` AND user_id = ` + a.arg(owner) +
		` RETURNING ` + categoryColumns
	c, err := scanCategory(tx.QueryRow(ctx, query, a.args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict("a category with this name already exists")
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classify(err)
	}
	return c, nil
}

// Delete removes the owner's category. Tasks pointing at it keep existing;
// the foreign key clears their category_id.
func (r *CategoryRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`,
		id, owner,
	)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("category not found")
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("category not found")
		}
		if isUniqueViolation(err) {
			return nil, err
		}
		return nil, classify(err)
	}
	return &c, nil
}
