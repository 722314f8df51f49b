package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/utils"
)

// Clés posées dans le contexte gin par Auth.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.NewResponse(status, message))
}

// Auth exige un header "Authorization: Bearer <token>" valide. Les
// navigateurs ne pouvant pas poser ce header sur un upgrade WebSocket, le
// token est alors accepté dans le paramètre ?token=.
func Auth(jwtm *utils.JWTManager, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && websocket.IsWebSocketUpgrade(c.Request) && c.Query("token") != "" {
			authHeader = "Bearer " + c.Query("token")
		}
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Token manquant")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, http.StatusUnauthorized, "Format Authorization invalide")
			return
		}

		claims, err := jwtm.Parse(parts[1])
		if err != nil {
			log.Debug("❌ JWT refusé", "error", err, "path", c.FullPath())
			abort(c, http.StatusUnauthorized, "Token invalide ou expiré")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, models.Role(claims.Role))
		c.Next()
	}
}

// UserID renvoie l'utilisateur authentifié, vide hors Auth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// Role renvoie le rôle authentifié.
func Role(c *gin.Context) models.Role {
	if r, ok := c.Get(ContextRole); ok {
		if role, ok := r.(models.Role); ok {
			return role
		}
	}
	return ""
}
