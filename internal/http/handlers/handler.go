package handlers

import (
	"context"

	"taskmaster/internal/domain"
	"taskmaster/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Accounts interface {
	Register(ctx context.Context, username, password string, email *string) (*service.Session, error)
	Login(ctx context.Context, username, password string) (*service.Session, error)
	Me(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type CategoryStore interface {
	List(ctx context.Context, owner uuid.UUID) ([]domain.Category, error)
	Create(ctx context.Context, owner uuid.UUID, in domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, owner, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type TaskStore interface {
	Create(ctx context.Context, owner uuid.UUID, in domain.TaskInput) (*domain.Task, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error)
	List(ctx context.Context, owner uuid.UUID, f domain.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, owner, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type Chat interface {
	Reply(ctx context.Context, userID uuid.UUID, message string) (string, error)
}

type Handler struct {
	Accounts   Accounts
	Categories CategoryStore
	Tasks      TaskStore
	Chat       Chat
}

func NewHandler(accounts Accounts, categories CategoryStore, tasks TaskStore, chat Chat) *Handler {
	return &Handler{
		Accounts:   accounts,
		Categories: categories,
		Tasks:      tasks,
		Chat:       chat,
	}
}

// getUserID returns the principal stored by the auth middleware.
func getUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
