package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	catalog Catalog
	log     *slog.Logger
}

func NewCategoryHandler(catalog Catalog, log *slog.Logger) *CategoryHandler {
	return &CategoryHandler{catalog: catalog, log: log}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Nom de catégorie requis")
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("Catégorie créée")
	resp.Category = cat
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) GetAll(c *gin.Context) {
	list, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.CategoryList = list
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	cat, err := h.catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.Category = cat
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Nom de catégorie requis")
		return
	}
	cat, err := h.catalog.UpdateCategory(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("Catégorie mise à jour")
	resp.Category = cat
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ok("Catégorie supprimée"))
}
