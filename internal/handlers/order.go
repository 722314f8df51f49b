package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"phoneshop_back_end/internal/middleware"
	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/services"
	"phoneshop_back_end/internal/utils"
)

type OrderHandler struct {
	orders Orders
	log    *slog.Logger
}

func NewOrderHandler(orders Orders, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

func (h *OrderHandler) order(c *gin.Context, message string, o *models.Order, err error) {
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok(message)
	resp.Order = o
	c.JSON(http.StatusOK, resp)
}

// Create accepte {items:[{productId, quantity}]}. Le total envoyé par le
// client est ignoré, il est recalculé depuis le catalogue.
func (h *OrderHandler) Create(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Au moins un article avec une quantité positive est requis")
		return
	}
	o, err := h.orders.PlaceOrder(c.Request.Context(), actor(c), req.Items)
	h.order(c, "Commande passée avec succès", o, err)
}

func (h *OrderHandler) Approve(c *gin.Context) {
	o, err := h.orders.ApproveOrder(c.Request.Context(), c.Param("id"))
	h.order(c, "Commande approuvée", o, err)
}

func (h *OrderHandler) Reject(c *gin.Context) {
	o, err := h.orders.RejectOrder(c.Request.Context(), c.Param("id"))
	h.order(c, "Commande rejetée", o, err)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	o, err := h.orders.CancelOrder(c.Request.Context(), actor(c), c.Param("id"))
	h.order(c, "Commande annulée", o, err)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	o, err := h.orders.UpdateOrderStatus(c.Request.Context(), c.Param("id"), c.Query("status"))
	h.order(c, "Statut de la commande mis à jour", o, err)
}

func (h *OrderHandler) UpdateItemStatus(c *gin.Context) {
	o, err := h.orders.UpdateOrderItemStatus(c.Request.Context(), c.Param("id"), c.Query("status"))
	h.order(c, "Statut de la commande mis à jour", o, err)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	o, err := h.orders.GetOrderByID(c.Request.Context(), actor(c), c.Param("id"))
	h.order(c, "", o, err)
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	list, err := h.orders.GetUserOrders(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.OrderList = list
	c.JSON(http.StatusOK, resp)
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, &time.ParseError{Layout: time.RFC3339, Value: raw}
}

// Filter : status, startDate, endDate, itemId, page et size en query string.
func (h *OrderHandler) Filter(c *gin.Context) {
	f := services.OrderItemFilter{
		ItemID: c.Query("itemId"),
		Page:   utils.ParsePage(c.Query("page"), c.Query("size")),
	}
	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseOrderStatus(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		f.Status = st
	}
	var err error
	if f.StartDate, err = parseDate(c.Query("startDate")); err != nil {
		badRequest(c, "startDate invalide")
		return
	}
	if f.EndDate, err = parseDate(c.Query("endDate")); err != nil {
		badRequest(c, "endDate invalide")
		return
	}

	page, err := h.orders.FilterOrderItems(c.Request.Context(), f)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.OrderItems = page.Items
	resp.TotalPage = page.TotalPages
	resp.TotalElement = page.TotalElements
	c.JSON(http.StatusOK, resp)
}
