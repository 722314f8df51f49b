package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// Audit journalise une action d'administration avec son auteur et son issue.
func Audit(log *slog.Logger, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"action", action,
			"resource_id", c.Param("id"),
			"user_id", UserID(c),
			"role", Role(c),
			"status", status,
		}
		if status >= 200 && status < 300 {
			log.Info("📝 Action auditée", attrs...)
			return
		}
		log.Warn("📝 Action échouée", attrs...)
	}
}
