package ws

import (
	"context"
	"net/http"
	"strings"

	"taskmaster/internal/domain"
	"taskmaster/internal/http/middleware"
	"taskmaster/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Resolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

// HandleChat upgrades an authenticated request to a chat session. The token
// is read from the "token" query parameter or the Authorization header.
func HandleChat(auth Resolver, chat Replier, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			token, _ = middleware.BearerToken(c.GetHeader("Authorization"))
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required", "kind": domain.KindName(domain.ErrUnauthenticated)})
			return
		}

		userID, err := auth.Resolve(c.Request.Context(), token)
		if err != nil {
			kind := domain.KindOf(err)
			status := http.StatusUnauthorized
			if kind == domain.ErrUnavailable || kind == domain.ErrInternal {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{"error": domain.Detail(err), "kind": domain.KindName(kind)})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		// The session outlives the request, so it must not inherit the
		// request-scoped database connection.
		ctx := logger.NewContext(context.Background(), logger.FromContext(c.Request.Context()))
		client := NewClient(userID, conn, chat)
		go client.Run(ctx)
	}
}
