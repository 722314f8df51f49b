package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phoneshop_back_end/internal/middleware"
	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/services"
)

type UserHandler struct {
	users Users
	log   *slog.Logger
}

func NewUserHandler(users Users, log *slog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func (h *UserHandler) MyInfo(c *gin.Context) {
	u, err := h.users.MyInfo(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.User = u
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) userList(c *gin.Context, list []models.User, err error) {
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.UserList = list
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetAllCustomers(c *gin.Context) {
	list, err := h.users.GetAllCustomers(c.Request.Context())
	h.userList(c, list, err)
}

func (h *UserHandler) GetAllAdmins(c *gin.Context) {
	list, err := h.users.GetAllAdmins(c.Request.Context())
	h.userList(c, list, err)
}

func (h *UserHandler) GetCustomerByID(c *gin.Context) {
	u, err := h.users.GetCustomerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.User = u
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) CreateAdmin(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Nom, e-mail et mot de passe requis")
		return
	}
	u, err := h.users.CreateAdmin(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("Administrateur créé")
	resp.User = u
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) UpdateAdmin(c *gin.Context) {
	var req services.AdminUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Corps de requête invalide")
		return
	}
	u, err := h.users.UpdateAdmin(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("Administrateur mis à jour")
	resp.User = u
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) DeleteAdmin(c *gin.Context) {
	if err := h.users.DeleteAdmin(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok("Administrateur supprimé"))
}

// ChangeAdminPassword lit oldPassword/newPassword dans la query string.
func (h *UserHandler) ChangeAdminPassword(c *gin.Context) {
	oldPassword, newPassword := c.Query("oldPassword"), c.Query("newPassword")
	if oldPassword == "" || newPassword == "" {
		badRequest(c, "Ancien et nouveau mot de passe requis")
		return
	}
	if err := h.users.ChangeAdminPassword(c.Request.Context(), actor(c), c.Param("id"), oldPassword, newPassword); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok("Mot de passe modifié"))
}

func (h *UserHandler) SaveAddress(c *gin.Context) {
	var patch models.Address
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Adresse invalide")
		return
	}
	addr, created, err := h.users.SaveAddress(c.Request.Context(), middleware.UserID(c), patch)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	msg := "Adresse mise à jour"
	if created {
		msg = "Adresse créée"
	}
	resp := ok(msg)
	resp.Address = addr
	c.JSON(http.StatusOK, resp)
}
