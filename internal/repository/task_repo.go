package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskmaster/internal/db"
	"taskmaster/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskSelect = `SELECT t.id, t.user_id, t.title, COALESCE(t.description, ''), t.tags,
	t.priority, t.status, t.completion_percentage, t.images, t.due_date,
	t.created_at, t.updated_at, t.category_id, c.name, c.color, c.icon
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id`

type TaskRepository struct {
	pool db.Querier
}

func NewTaskRepository(pool db.Querier) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, owner uuid.UUID, in domain.TaskInput) (*domain.Task, error) {
	tx, err := db.From(ctx, r.pool).Begin(ctx)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if in.CategoryID != nil {
		if err := checkCategory(ctx, tx, owner, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err = tx.Exec(ctx,
		`INSERT INTO tasks (id, user_id, title, description, category_id, tags, priority, status,
			completion_percentage, images, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		id, owner, in.Title, in.Description, in.CategoryID, encodeList(in.Tags),
		in.Priority, in.Status, in.CompletionPercentage, encodeList(in.Images), in.DueDate, now,
	)
	if err != nil {
		return nil, classify(err)
	}

	t, err := getTask(ctx, tx, owner, id)
	if err != nil {
		return nil, readBackError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classify(err)
	}
	return t, nil
}

// Get returns the owner's task. Tasks of other users are reported as not found.
func (r *TaskRepository) Get(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error) {
	return getTask(ctx, db.From(ctx, r.pool), owner, id)
}

// List returns the owner's tasks, newest first. A category filter that is not
// a valid id matches nothing.
func (r *TaskRepository) List(ctx context.Context, owner uuid.UUID, f domain.TaskFilter) ([]domain.Task, error) {
	var a assignments
	where := []string{"t.user_id = " + a.arg(owner)}

	if f.Category != "" {
		categoryID, err := uuid.Parse(f.Category)
		if err != nil {
			return []domain.Task{}, nil
		}
		where = append(where, "t.category_id = "+a.arg(categoryID))
	}
	if f.Priority != "" {
		where = append(where, "t.priority = "+a.arg(f.Priority))
	}
	if f.Status != "" {
		where = append(where, "t.status = "+a.arg(f.Status))
	}

	query := taskSelect + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY t.created_at DESC, t.id`
	return queryTasks(ctx, db.From(ctx, r.pool), query, a.args...)
}

// Recent returns at most limit of the owner's newest tasks.
func (r *TaskRepository) Recent(ctx context.Context, owner uuid.UUID, limit int) ([]domain.Task, error) {
	return queryTasks(ctx, db.From(ctx, r.pool),
		taskSelect+` WHERE t.user_id = $1 ORDER BY t.created_at DESC, t.id LIMIT $2`,
		owner, limit,
	)
}

// Update writes the fields present in patch and always advances updated_at.
func (r *TaskRepository) Update(ctx context.Context, owner, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	tx, err := db.From(ctx, r.pool).Begin(ctx)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockTask(ctx, tx, owner, id); err != nil {
		return nil, err
	}

	if patch.CategorySet && patch.CategoryID != nil {
		if err := checkCategory(ctx, tx, owner, *patch.CategoryID); err != nil {
			return nil, err
		}
	}

	if patch.Empty() {
		return nil, domain.BadRequest("no fields to update")
	}

	var a assignments
	if patch.Title != nil {
		a.set("title", *patch.Title)
	}
	if patch.Description != nil {
		a.set("description", *patch.Description)
	}
	if patch.CategorySet {
		a.set("category_id", patch.CategoryID)
	}
	if patch.Tags != nil {
		a.set("tags", encodeList(*patch.Tags))
	}
	if patch.Priority != nil {
		a.set("priority", *patch.Priority)
	}
	if patch.Status != nil {
		a.set("status", *patch.Status)
	}
	if patch.CompletionPercentage != nil {
		a.set("completion_percentage", *patch.CompletionPercentage)
	}
	if patch.Images != nil {
		a.set("images", encodeList(*patch.Images))
	}
	if patch.DueDateSet {
		a.set("due_date", patch.DueDate)
	}
	// updated_at moves forward even when the clock has not ticked since the last write.
	now := time.Now().UTC().Truncate(time.Microsecond)
	a.raw("updated_at = GREATEST(" + a.arg(now) + "::timestamptz, updated_at + interval '1 microsecond')")

	query := `UPDATE tasks SET ` + a.clause() +
		` WHERE id = ` + a.arg(id) + ` AND user_id = ` + a.arg(owner)
	if _, err := tx.Exec(ctx, query, a.args...); err != nil {
		return nil, classify(err)
	}

	t, err := getTask(ctx, tx, owner, id)
	if err != nil {
		return nil, readBackError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classify(err)
	}
	return t, nil
}

// Delete removes the owner's task after checking it exists, so that a delete
// touching no rows is reported as a storage fault rather than a missing task.
func (r *TaskRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	tx, err := db.From(ctx, r.pool).Begin(ctx)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockTask(ctx, tx, owner, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Internal("task delete affected no rows", nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func lockTask(ctx context.Context, q db.Querier, owner, id uuid.UUID) error {
	var found uuid.UUID
	err := q.QueryRow(ctx,
		`SELECT id FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, owner,
	).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound("task not found")
		}
		return classify(err)
	}
	return nil
}

// checkCategory succeeds when the category belongs to owner or is global.
func checkCategory(ctx context.Context, q db.Querier, owner, categoryID uuid.UUID) error {
	var visible bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM categories WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)
		)`,
		categoryID, owner,
	).Scan(&visible)
	if err != nil {
		return classify(err)
	}
	if !visible {
		return domain.NotFound("category not found")
	}
	return nil
}

func getTask(ctx context.Context, q db.Querier, owner, id uuid.UUID) (*domain.Task, error) {
	row := q.QueryRow(ctx, taskSelect+` WHERE t.id = $1 AND t.user_id = $2`, id, owner)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("task not found")
		}
		return nil, classify(err)
	}
	return t, nil
}

func queryTasks(ctx context.Context, q db.Querier, query string, args ...any) ([]domain.Task, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	res := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, classify(err)
		}
		res = append(res, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return res, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t      domain.Task
		tags   []byte
		images []byte
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &tags,
		&t.Priority, &t.Status, &t.CompletionPercentage, &images, &t.DueDate,
		&t.CreatedAt, &t.UpdatedAt, &t.CategoryID, &t.CategoryName, &t.CategoryColor, &t.CategoryIcon,
	)
	if err != nil {
		return nil, err
	}
	t.Tags = decodeList(tags, "tags", t.ID)
	t.Images = decodeList(images, "images", t.ID)
	return &t, nil
}

// readBackError reports a row that was just written but could not be read.
func readBackError(err error) error {
	if errors.Is(err, domain.ErrUnavailable) {
		return err
	}
	return domain.Internal("task was written but could not be read back", err)
}
