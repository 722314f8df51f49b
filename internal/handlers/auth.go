package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"phoneshop_back_end/internal/services"
)

type AuthHandler struct {
	users Users
	log   *slog.Logger
}

func NewAuthHandler(users Users, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Nom, e-mail et mot de passe requis")
		return
	}
	if _, err := h.users.Register(c.Request.Context(), req); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok("Inscription réussie"))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "E-mail et mot de passe requis")
		return
	}
	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	resp := ok("Connexion réussie")
	resp.Token = res.Token
	resp.Role = res.Role
	resp.ExpirationTime = res.ExpiresAt.Format(time.RFC3339)
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email requis")
		return
	}
	msg, err := h.users.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok(msg))
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Jeton et nouveau mot de passe requis")
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok("Mot de passe réinitialisé"))
}
