package handlers

import (
	"net/http"
	"strings"

	"taskmaster/internal/domain"

	"github.com/gin-gonic/gin"
)

type CreateCategoryRequest struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Icon  *string `json:"icon"`
}

type UpdateCategoryRequest struct {
	Name  Field[string] `json:"name"`
	Color Field[string] `json:"color"`
	Icon  Field[string] `json:"icon"`
}

func (r UpdateCategoryRequest) patch() (domain.CategoryPatch, error) {
	var p domain.CategoryPatch
	if r.Name.Set {
		name := strings.TrimSpace(r.Name.Value)
		if r.Name.Null || name == "" {
			return p, domain.BadRequest("name must not be empty")
		}
		p.Name = &name
	}
	if r.Color.Set {
		if r.Color.Null || strings.TrimSpace(r.Color.Value) == "" {
			return p, domain.BadRequest("color must not be empty")
		}
		color := strings.TrimSpace(r.Color.Value)
		p.Color = &color
	}
	if r.Icon.Set {
		p.IconSet = true
		if !r.Icon.Null {
			icon := r.Icon.Value
			p.Icon = &icon
		}
	}
	return p, nil
}

func (h *Handler) ListCategories(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	categories, err := h.Categories.List(c.Request.Context(), userID)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, bindError(err))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		WriteError(c, domain.BadRequest("name is required"))
		return
	}

	category, err := h.Categories.Create(c.Request.Context(), userID, domain.CategoryInput{
		Name:  name,
		Color: strings.TrimSpace(req.Color),
		Icon:  req.Icon,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, bindError(err))
		return
	}
	patch, err := req.patch()
	if err != nil {
		WriteError(c, err)
		return
	}

	category, err := h.Categories.Update(c.Request.Context(), userID, id, patch)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Categories.Delete(c.Request.Context(), userID, id); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
