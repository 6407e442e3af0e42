package handlers

import (
	"net/http"

	"taskmaster/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatRequest struct {
	Message string `json:"message"`
}

// ChatMessage answers with the assistant's reply. Provider failures are
// absorbed by the chat service and still produce a 200.
func (h *Handler) ChatMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, bindError(err))
		return
	}

	reply, err := h.Chat.Reply(c.Request.Context(), userID, req.Message)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}

func (h *Handler) Suggestions(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	c.JSON(http.StatusOK, service.Suggestions())
}
