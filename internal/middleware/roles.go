package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"phoneshop_back_end/internal/models"
)

func requireRole(message string, allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowed(Role(c)) {
			abort(c, http.StatusForbidden, message)
			return
		}
		c.Next()
	}
}

// RequireAdmin laisse passer ADMIN et NORMAL_ADMIN.
func RequireAdmin() gin.HandlerFunc {
	return requireRole("Accès réservé aux administrateurs", models.Role.IsAdmin)
}

// RequireSuperAdmin laisse passer uniquement ADMIN.
func RequireSuperAdmin() gin.HandlerFunc {
	return requireRole("Accès réservé au super administrateur", func(r models.Role) bool {
		return r == models.RoleAdmin
	})
}

// RequireCustomer réserve la route aux clients (panier, commandes, paiements).
func RequireCustomer() gin.HandlerFunc {
	return requireRole("Accès réservé aux clients", func(r models.Role) bool {
		return r == models.RoleUser
	})
}
