package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"streamreport/internal/shared/server/respond"
	"streamreport/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope so the client sees a normal error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("stub.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"session_id": c.GetString(SessionIDKey),
				"method":     c.Request.Method,
				"path":       c.FullPath(),
				"error":      rec,
				"stack":      string(debug.Stack()),
			})
			respond.Error(c, http.StatusInternalServerError, "Unexpected server error")
		}()
		c.Next()
	}
}
