package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, bindError(err))
		return
	}

	session, err := h.Accounts.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, bindError(err))
		return
	}

	session, err := h.Accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
