package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phoneshop_back_end/internal/cart"
	"phoneshop_back_end/internal/middleware"
	"phoneshop_back_end/internal/models"
)

type CartHandler struct {
	carts  Carts
	orders Orders
	log    *slog.Logger
}

func NewCartHandler(carts Carts, orders Orders, log *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, orders: orders, log: log}
}

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func (h *CartHandler) reply(c *gin.Context, ct *cart.Cart, err error) {
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCartView(ct))
}

func (h *CartHandler) mutate(c *gin.Context, fn func(ctx context.Context, userID, productID string) (*cart.Cart, error)) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId requis")
		return
	}
	ct, err := fn(c.Request.Context(), middleware.UserID(c), req.ProductID)
	h.reply(c, ct, err)
}

func (h *CartHandler) Get(c *gin.Context) {
	ct, err := h.carts.Get(c.Request.Context(), middleware.UserID(c))
	h.reply(c, ct, err)
}

func (h *CartHandler) Add(c *gin.Context)       { h.mutate(c, h.carts.Add) }
func (h *CartHandler) Increment(c *gin.Context) { h.mutate(c, h.carts.Increment) }
func (h *CartHandler) Decrement(c *gin.Context) { h.mutate(c, h.carts.Decrement) }

func (h *CartHandler) Remove(c *gin.Context) {
	ct, err := h.carts.Remove(c.Request.Context(), middleware.UserID(c), c.Param("productId"))
	h.reply(c, ct, err)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCartView(&cart.Cart{}))
}

// Checkout transforme le panier en commande. Le panier n'est vidé que si
// la commande est enregistrée.
func (h *CartHandler) Checkout(c *gin.Context) {
	order, err := h.orders.Checkout(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("Commande passée avec succès")
	resp.Order = order
	c.JSON(http.StatusOK, resp)
}
