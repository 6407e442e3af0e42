package handlers

import (
	"errors"
	"net/http"

	"taskmaster/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.Accounts.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.Unauthenticated("user no longer exists")
		}
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
