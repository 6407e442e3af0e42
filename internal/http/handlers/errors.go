package handlers

import (
	"errors"
	"net/http"

	"taskmaster/internal/domain"
	"taskmaster/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatusFor maps an error kind to its HTTP status. Conflicts are reported as
// 400, like any other rejected input.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrBadRequest, domain.ErrConflict:
		return http.StatusBadRequest
	case domain.ErrUnauthenticated:
		return http.StatusUnauthorized
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError aborts the request with the structured error body.
func WriteError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method, "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": domain.Detail(err),
		"kind":  domain.KindName(domain.KindOf(err)),
	})
}

// bindError turns a JSON binding failure into a bad request.
func bindError(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.BadRequest("invalid request body")
}

// pathID parses the :id parameter. A malformed id is a bad request.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		WriteError(c, domain.BadRequest("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := getUserID(c)
	if !ok {
		WriteError(c, domain.Unauthenticated("authentication required"))
		return uuid.Nil, false
	}
	return id, true
}
