package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"phoneshop_back_end/internal/cache"
)

const (
	LoginMaxAttempts          = 5
	RegisterMaxAttempts       = 3
	ForgotPasswordMaxAttempts = 3

	LoginCooldown          = 15 * time.Minute
	RegisterCooldown       = 30 * time.Minute
	ForgotPasswordCooldown = 10 * time.Minute
)

// RateLimit regroupe les limiteurs des routes d'authentification.
type RateLimit struct {
	limiter *cache.RateLimiter
	log     *slog.Logger
}

func NewRateLimit(limiter *cache.RateLimiter, log *slog.Logger) *RateLimit {
	return &RateLimit{limiter: limiter, log: log}
}

// peekEmail lit le champ email du body JSON sans le consommer.
func peekEmail(c *gin.Context) string {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var input struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(input.Email))
}

func (rl *RateLimit) blocked(c *gin.Context, key, message string) bool {
	ttl, blocked, err := rl.limiter.Cooldown(c.Request.Context(), key)
	if err != nil {
		// Redis indisponible : on ne bloque pas l'authentification.
		rl.log.Warn("⚠️ Rate limit indisponible", "key", key, "error", err)
		return false
	}
	if !blocked {
		return false
	}
	minutes := int(ttl.Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
	abort(c, http.StatusTooManyRequests, fmt.Sprintf("%s. Réessayez dans %d minutes", message, minutes))
	return true
}

func (rl *RateLimit) hit(c *gin.Context, key string, limit int64, window time.Duration) int64 {
	n, err := rl.limiter.Hit(c.Request.Context(), key, limit, window)
	if err != nil {
		rl.log.Warn("⚠️ Rate limit indisponible", "key", key, "error", err)
	}
	return n
}

// Login compte les échecs (401) par e-mail et remet le compteur à zéro
// après une connexion réussie.
func (rl *RateLimit) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := peekEmail(c)
		if email == "" {
			c.Next()
			return
		}
		key := "login:" + email
		if rl.blocked(c, key, "Trop de tentatives échouées") {
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			n := rl.hit(c, key, LoginMaxAttempts, LoginCooldown)
			if n >= LoginMaxAttempts {
				rl.log.Warn("🚫 Connexion bloquée", "email", email)
			}
		case http.StatusOK:
			if err := rl.limiter.Reset(c.Request.Context(), key); err != nil {
				rl.log.Warn("⚠️ Reset rate limit impossible", "key", key, "error", err)
			}
		}
	}
}

// Register limite le nombre d'inscriptions réussies par IP.
func (rl *RateLimit) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "register:" + c.ClientIP()
		if rl.blocked(c, key, "Trop d'inscriptions") {
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusOK || c.Writer.Status() == http.StatusCreated {
			rl.hit(c, key, RegisterMaxAttempts, RegisterCooldown)
		}
	}
}

// ForgotPassword limite les demandes de réinitialisation par e-mail.
func (rl *RateLimit) ForgotPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := peekEmail(c)
		if email == "" {
			abort(c, http.StatusBadRequest, "Email requis")
			return
		}
		key := "forgot:" + email
		if rl.blocked(c, key, "Trop de demandes") {
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			rl.hit(c, key, ForgotPasswordMaxAttempts, ForgotPasswordCooldown)
		}
	}
}
