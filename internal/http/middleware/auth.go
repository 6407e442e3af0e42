package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskmaster/internal/domain"
	"taskmaster/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Resolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

// Auth requires "Authorization: Bearer <token>" and stores the resolved user
// id in the context under "user_id".
func Auth(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWith(c, domain.Unauthenticated("missing bearer token"))
			return
		}

		userID, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set("user_id", userID)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(),
			logger.FromContext(c.Request.Context()).With("user_id", userID)))
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func abortWith(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case domain.ErrUnauthenticated:
		status = http.StatusUnauthorized
	case domain.ErrUnavailable:
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request aborted", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": domain.Detail(err), "kind": domain.KindName(kind)})
}
