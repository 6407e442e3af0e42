package handlers

import (
	"net/http"
	"strings"
	"time"

	"taskmaster/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// dueDateLayouts are tried in order when parsing due_date.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC().Truncate(time.Microsecond)
			return &t, nil
		}
	}
	return nil, domain.BadRequest("due_date must be an RFC 3339 timestamp or a YYYY-MM-DD date")
}

func parseCategoryID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, domain.BadRequest("invalid category_id")
	}
	return &id, nil
}

func nonEmpty(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", domain.BadRequest(field + " must not be empty")
	}
	return v, nil
}

func checkCompletion(p int) error {
	if !domain.ValidCompletion(p) {
		return domain.BadRequest("completion_percentage must be between 0 and 100")
	}
	return nil
}

type CreateTaskRequest struct {
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	CategoryID           *string  `json:"category_id"`
	Tags                 []string `json:"tags"`
	Priority             *string  `json:"priority"`
	Status               *string  `json:"status"`
	CompletionPercentage *int     `json:"completion_percentage"`
	Images               []string `json:"images"`
	DueDate              *string  `json:"due_date"`
}

func (r CreateTaskRequest) input() (domain.TaskInput, error) {
	in := domain.TaskInput{
		Description: r.Description,
		Tags:        r.Tags,
		Images:      r.Images,
		Priority:    domain.DefaultPriority,
		Status:      domain.DefaultStatus,
	}

	var err error
	if in.Title, err = nonEmpty("title", r.Title); err != nil {
		return in, err
	}
	if r.Priority != nil {
		if in.Priority, err = nonEmpty("priority", *r.Priority); err != nil {
			return in, err
		}
	}
	if r.Status != nil {
		if in.Status, err = nonEmpty("status", *r.Status); err != nil {
			return in, err
		}
	}
	if r.CompletionPercentage != nil {
		if err := checkCompletion(*r.CompletionPercentage); err != nil {
			return in, err
		}
		in.CompletionPercentage = *r.CompletionPercentage
	}
	if r.CategoryID != nil {
		if in.CategoryID, err = parseCategoryID(*r.CategoryID); err != nil {
			return in, err
		}
	}
	if r.DueDate != nil {
		if in.DueDate, err = parseDueDate(*r.DueDate); err != nil {
			return in, err
		}
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	return in, nil
}

type UpdateTaskRequest struct {
	Title                Field[string]   `json:"title"`
	Description          Field[string]   `json:"description"`
	CategoryID           Field[string]   `json:"category_id"`
	Tags                 Field[[]string] `json:"tags"`
	Priority             Field[string]   `json:"priority"`
	Status               Field[string]   `json:"status"`
	CompletionPercentage Field[int]      `json:"completion_percentage"`
	Images               Field[[]string] `json:"images"`
	DueDate              Field[string]   `json:"due_date"`
}

func (r UpdateTaskRequest) patch() (domain.TaskPatch, error) {
	var p domain.TaskPatch

	required := func(name string, f Field[string]) (*string, error) {
		if !f.Set {
			return nil, nil
		}
		if f.Null {
			return nil, domain.BadRequest(name + " must not be null")
		}
		v, err := nonEmpty(name, f.Value)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	list := func(f Field[[]string]) *[]string {
		if !f.Set {
			return nil
		}
		v := f.Value
		if f.Null || v == nil {
			v = []string{}
		}
		return &v
	}

	var err error
	if p.Title, err = required("title", r.Title); err != nil {
		return p, err
	}
	if p.Priority, err = required("priority", r.Priority); err != nil {
		return p, err
	}
	if p.Status, err = required("status", r.Status); err != nil {
		return p, err
	}
	if r.Description.Set {
		d := r.Description.Value
		p.Description = &d
	}
	if r.CompletionPercentage.Set {
		if r.CompletionPercentage.Null {
			return p, domain.BadRequest("completion_percentage must not be null")
		}
		if err := checkCompletion(r.CompletionPercentage.Value); err != nil {
			return p, err
		}
		v := r.CompletionPercentage.Value
		p.CompletionPercentage = &v
	}
	p.Tags = list(r.Tags)
	p.Images = list(r.Images)

	if r.CategoryID.Set {
		p.CategorySet = true
		if !r.CategoryID.Null {
			if p.CategoryID, err = parseCategoryID(r.CategoryID.Value); err != nil {
				return p, err
			}
		}
	}
	if r.DueDate.Set {
		p.DueDateSet = true
		if !r.DueDate.Null {
			if p.DueDate, err = parseDueDate(r.DueDate.Value); err != nil {
				return p, err
			}
		}
	}
	return p, nil
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, bindError(err))
		return
	}
	in, err := req.input()
	if err != nil {
		WriteError(c, err)
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), userID, in)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListTasks accepts the category filter as either category_id or category.
func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	filter := domain.TaskFilter{
		Category: c.Query("category_id"),
		Priority: c.Query("priority"),
		Status:   c.Query("status"),
	}
	if filter.Category == "" {
		filter.Category = c.Query("category")
	}

	tasks, err := h.Tasks.List(c.Request.Context(), userID, filter)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), userID, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, bindError(err))
		return
	}
	patch, err := req.patch()
	if err != nil {
		WriteError(c, err)
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), userID, id, patch)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), userID, id); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
