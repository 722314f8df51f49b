// Package handlers expose les services en HTTP (gin). Chaque réponse utilise
// l'enveloppe models.Response.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phoneshop_back_end/internal/cache"
	"phoneshop_back_end/internal/middleware"
	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/services"
)

// statusFor traduit une erreur de service en code HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConflict), errors.Is(err, cache.ErrCartContention):
		return http.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrPaymentUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail répond avec le code associé à err. Les erreurs d'infrastructure
// sont journalisées et masquées au client.
func fail(c *gin.Context, log *slog.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("❌ Erreur serveur", "path", c.FullPath(), "error", err)
		message = "Erreur interne du serveur"
	}
	c.JSON(status, models.NewResponse(status, message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.NewResponse(http.StatusBadRequest, message))
}

func ok(message string) models.Response {
	return models.NewResponse(http.StatusOK, message)
}

func actor(c *gin.Context) services.Actor {
	return services.Actor{UserID: middleware.UserID(c), Role: middleware.Role(c)}
}
