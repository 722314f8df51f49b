package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"phoneshop_back_end/internal/config"
	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/utils"
)

type PaymentRequest struct {
	OrderID         string          `json:"orderId" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	PaymentMethodID string          `json:"paymentMethodId"`
}

type PaymentService struct {
	payments PaymentRepository
	orders   *OrderService
	cards    CardGateway // nil sans clé Stripe
	bank     config.BankConfig
	log      *slog.Logger
	now      func() time.Time
}

func NewPaymentService(payments PaymentRepository, orders *OrderService, cards CardGateway, bank config.BankConfig, log *slog.Logger) *PaymentService {
	return &PaymentService{payments: payments, orders: orders, cards: cards, bank: bank, log: log, now: time.Now}
}

// ProcessPayment enregistre le paiement d'une commande APPROVED du client
// puis la passe à PAID. Le montant doit être exactement le total.
func (s *PaymentService) ProcessPayment(ctx context.Context, actor Actor, req PaymentRequest) (*models.Payment, error) {
	method, ok := models.ParsePaymentMethod(req.Method)
	if !ok {
		return nil, fmt.Errorf("moyen de paiement inconnu %q: %w", req.Method, ErrInvalidInput)
	}

	order, err := s.payableOrder(ctx, actor, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !req.Amount.Equal(order.TotalPrice) {
		return nil, fmt.Errorf("le montant %s ne correspond pas au total %s: %w",
			req.Amount.StringFixed(2), order.TotalPrice.StringFixed(2), ErrInvalidInput)
	}
	if _, err := s.payments.GetByOrderID(ctx, order.ID); err == nil {
		return nil, fmt.Errorf("commande déjà payée: %w", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	payment := &models.Payment{
		OrderID: order.ID,
		Amount:  order.TotalPrice,
		Method:  method,
		Status:  models.PaymentStatusSuccess,
	}
	if method == models.PaymentCreditCard && s.cards == nil {
		return nil, fmt.Errorf("paiement par carte non configuré: %w", ErrPaymentUnavailable)
	}
	if err := s.payments.Reserve(ctx, payment); err != nil {
		return nil, err
	}
	if err := s.record(ctx, payment, req.PaymentMethodID); err != nil {
		if rerr := s.payments.Release(ctx, payment); rerr != nil {
			s.log.Error("❌ Réservation de paiement non libérée", "order_id", order.ID, "error", rerr)
		}
		return nil, err
	}
	if _, err := s.orders.MarkPaid(ctx, order.ID); err != nil {
		return nil, err
	}
	s.log.Info("💰 Paiement enregistré", "order_id", order.ID, "method", method, "amount", payment.Amount.StringFixed(2))
	return payment, nil
}

// record débite la carte si besoin puis écrit le paiement réservé.
func (s *PaymentService) record(ctx context.Context, payment *models.Payment, paymentMethodID string) error {
	if payment.Method == models.PaymentCreditCard {
		ref, err := s.cards.Charge(ctx, utils.ToCents(payment.Amount), paymentMethodID, payment.OrderID)
		if err != nil {
			return err
		}
		payment.Reference = ref
	}
	return s.payments.Create(ctx, payment)
}

func (s *PaymentService) payableOrder(ctx context.Context, actor Actor, orderID string) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID {
		return nil, fmt.Errorf("commande d'un autre client: %w", ErrForbidden)
	}
	if order.Status != models.OrderApproved {
		return nil, fmt.Errorf("la commande doit être approuvée avant paiement (%s): %w", order.Status, ErrInvalidTransition)
	}
	return order, nil
}

// GetPaymentByOrderID : propriétaire de la commande ou administrateur.
func (s *PaymentService) GetPaymentByOrderID(ctx context.Context, actor Actor, orderID string) (*models.Payment, error) {
	if _, err := s.orders.GetOrderByID(ctx, actor, orderID); err != nil {
		return nil, err
	}
	return s.payments.GetByOrderID(ctx, orderID)
}

func (s *PaymentService) GetAllPayments(ctx context.Context) ([]models.Payment, error) {
	return s.payments.List(ctx)
}

// RevenueSince renvoie le début de la période : day (depuis minuit),
// week (7 jours) ou month (1 mois). Toute autre valeur couvre tous les paiements.
func RevenueSince(period string, now time.Time) time.Time {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "day":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	}
	return time.Time{}
}

// GetRevenueStats additionne les paiements réussis de la période.
func (s *PaymentService) GetRevenueStats(ctx context.Context, period string) (decimal.Decimal, error) {
	since := RevenueSince(period, s.now())
	payments, err := s.payments.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range payments {
		if p.Status != models.PaymentStatusSuccess || p.CreatedAt.Before(since) {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total, nil
}

// BankTransferQR génère le QR code SEPA pour régler une commande approuvée.
func (s *PaymentService) BankTransferQR(ctx context.Context, actor Actor, orderID string) ([]byte, error) {
	if s.bank.IBAN == "" {
		return nil, fmt.Errorf("coordonnées bancaires non configurées: %w", ErrPaymentUnavailable)
	}
	order, err := s.payableOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	return utils.GenerateSepaQR(s.bank.IBAN, s.bank.BIC, s.bank.Name, "CMD-"+order.ID, order.TotalPrice)
}
