package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phoneshop_back_end/internal/services"
)

type PaymentHandler struct {
	payments Payments
	log      *slog.Logger
}

func NewPaymentHandler(payments Payments, log *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

func (h *PaymentHandler) Process(c *gin.Context) {
	var req services.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId et montant requis")
		return
	}
	p, err := h.payments.ProcessPayment(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("Paiement effectué")
	resp.Payment = p
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetByOrderID(c *gin.Context) {
	p, err := h.payments.GetPaymentByOrderID(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.Payment = p
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetAll(c *gin.Context) {
	list, err := h.payments.GetAllPayments(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.PaymentList = list
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) RevenueStats(c *gin.Context) {
	total, err := h.payments.GetRevenueStats(c.Request.Context(), c.Query("period"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	resp := ok("")
	resp.Revenue = &total
	c.JSON(http.StatusOK, resp)
}

// BankQR renvoie l'image PNG du virement SEPA de la commande.
func (h *PaymentHandler) BankQR(c *gin.Context) {
	png, err := h.payments.BankTransferQR(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
