package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	PriorityLow    = "Düşük"
	PriorityMedium = "Orta"
	PriorityHigh   = "Yüksek"
	PriorityUrgent = "Acil"

	StatusTodo       = "Yapılacak"
	StatusInProgress = "Devam Ediyor"
	StatusDone       = "Tamamlandı"

	DefaultPriority = PriorityMedium
	DefaultStatus   = StatusTodo
)

// Task is a task row joined with its category.
type Task struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	UserID               uuid.UUID  `db:"user_id" json:"user_id"`
	Title                string     `db:"title" json:"title"`
	Description          string     `db:"description" json:"description"`
	Tags                 []string   `db:"tags" json:"tags"`
	Priority             string     `db:"priority" json:"priority"`
	Status               string     `db:"status" json:"status"`
	CompletionPercentage int        `db:"completion_percentage" json:"completion_percentage"`
	Images               []string   `db:"images" json:"images"`
	DueDate              *time.Time `db:"due_date" json:"due_date"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
	CategoryID           *uuid.UUID `db:"category_id" json:"category_id"`
	CategoryName         *string    `db:"category_name" json:"category_name"`
	CategoryColor        *string    `db:"category_color" json:"category_color"`
	CategoryIcon         *string    `db:"category_icon" json:"category_icon"`
}

// TaskInput holds the fields of a new task. Defaults are applied by the caller.
type TaskInput struct {
	Title                string
	Description          string
	CategoryID           *uuid.UUID
	Tags                 []string
	Priority             string
	Status               string
	CompletionPercentage int
	Images               []string
	DueDate              *time.Time
}

// TaskPatch lists the fields of a partial task update. CategorySet and
// DueDateSet distinguish "clear" (set with nil value) from "leave as is".
type TaskPatch struct {
	Title                *string
	Description          *string
	CategorySet          bool
	CategoryID           *uuid.UUID
	Tags                 *[]string
	Priority             *string
	Status               *string
	CompletionPercentage *int
	Images               *[]string
	DueDateSet           bool
	DueDate              *time.Time
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.CategorySet && p.Tags == nil &&
		p.Priority == nil && p.Status == nil && p.CompletionPercentage == nil &&
		p.Images == nil && !p.DueDateSet
}

// TaskFilter narrows a task listing. Empty fields do not filter.
type TaskFilter struct {
	Category string
	Priority string
	Status   string
}

// ValidCompletion reports whether p is a valid completion percentage.
func ValidCompletion(p int) bool {
	return p >= 0 && p <= 100
}
