package middleware

import (
	"taskmaster/internal/db"
	"taskmaster/internal/domain"

	"github.com/gin-gonic/gin"
)

// AcquireConn holds one pooled connection for the whole request and releases
// it when the handler chain returns, including on panic.
func AcquireConn(acquirer db.Acquirer) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, release, err := acquirer.Acquire(c.Request.Context())
		if err != nil {
			abortWith(c, domain.Unavailable("database unavailable", err))
			return
		}
		defer release()

		c.Request = c.Request.WithContext(db.WithConn(c.Request.Context(), conn))
		c.Next()
	}
}
