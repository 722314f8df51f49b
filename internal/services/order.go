package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"phoneshop_back_end/internal/cart"
	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/utils"
)

// Actor est l'utilisateur authentifié à l'origine d'un appel.
type Actor struct {
	UserID string
	Role   models.Role
}

type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	carts    CartRepository
	log      *slog.Logger
}

func NewOrderService(orders OrderRepository, products ProductRepository, carts CartRepository, log *slog.Logger) *OrderService {
	return &OrderService{orders: orders, products: products, carts: carts, log: log}
}

// PlaceOrder crée une commande PENDING. Le prix de chaque ligne est relu
// dans le catalogue ; le total envoyé par le client est ignoré.
func (s *OrderService) PlaceOrder(ctx context.Context, actor Actor, items []models.OrderItemRequest) (*models.Order, error) {
	if actor.Role.IsAdmin() {
		return nil, fmt.Errorf("un administrateur ne peut pas passer commande: %w", ErrForbidden)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("la commande ne contient aucun article: %w", ErrInvalidInput)
	}

	order := &models.Order{
		UserID:     actor.UserID,
		Status:     models.OrderPending,
		TotalPrice: decimal.Zero,
	}
	for _, req := range items {
		if req.Quantity < 1 {
			return nil, fmt.Errorf("quantité invalide pour %s: %w", req.ProductID, ErrInvalidInput)
		}
		p, err := s.products.GetByID(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		line := p.Price.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2)
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			ImageURL:    p.ImageURL,
			Quantity:    req.Quantity,
			Price:       line,
		})
		order.TotalPrice = order.TotalPrice.Add(line)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.log.Info("✅ Commande créée", "order_id", order.ID, "user_id", actor.UserID, "total", order.TotalPrice.StringFixed(2))
	return order, nil
}

// Checkout commande le contenu du panier puis en retire les lignes commandées.
// Un article ajouté pendant la commande reste dans le panier. En cas d'échec
// le panier reste intact.
func (s *OrderService) Checkout(ctx context.Context, actor Actor) (*models.Order, error) {
	c, err := s.carts.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := c.Items()
	reqs := make([]models.OrderItemRequest, 0, len(lines))
	for _, li := range lines {
		reqs = append(reqs, models.OrderItemRequest{ProductID: li.ProductID, Quantity: li.Quantity})
	}

	order, err := s.PlaceOrder(ctx, actor, reqs)
	if err != nil {
		return nil, err
	}
	_, err = s.carts.Update(ctx, actor.UserID, func(c *cart.Cart) error {
		c.Subtract(lines)
		return nil
	})
	if err != nil {
		s.log.Warn("⚠️ Commande créée mais panier non vidé", "order_id", order.ID, "error", err)
	}
	return order, nil
}

func (s *OrderService) ApproveOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderApproved)
}

func (s *OrderService) RejectOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderRejected)
}

// CancelOrder : seul le propriétaire annule, et seulement une commande PENDING.
func (s *OrderService) CancelOrder(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.UserID {
		return nil, fmt.Errorf("commande d'un autre client: %w", ErrForbidden)
	}
	if o.Status != models.OrderPending {
		return nil, fmt.Errorf("seule une commande en attente peut être annulée (%s): %w", o.Status, ErrInvalidTransition)
	}
	return s.apply(ctx, o, models.OrderCancelled)
}

// UpdateOrderStatus applique un statut reçu en texte.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	return s.transition(ctx, id, next)
}

// UpdateOrderItemStatus change le statut de la commande qui contient la ligne.
func (s *OrderService) UpdateOrderItemStatus(ctx context.Context, itemID, status string) (*models.Order, error) {
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	o, err := s.orders.GetByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, o, next)
}

// MarkPaid passe une commande APPROVED à PAID.
func (s *OrderService) MarkPaid(ctx context.Context, id string) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderPaid)
}

func (s *OrderService) transition(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, o, next)
}

func (s *OrderService) apply(ctx context.Context, o *models.Order, next models.OrderStatus) (*models.Order, error) {
	if o.Status.IsTerminal() {
		return nil, fmt.Errorf("commande clôturée (%s): %w", o.Status, ErrInvalidTransition)
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s -> %s: %w", o.Status, next, ErrInvalidTransition)
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, next); err != nil {
		return nil, err
	}
	s.log.Info("🔄 Statut de commande mis à jour", "order_id", o.ID, "from", o.Status, "to", next)
	o.Status = next
	return o, nil
}

// OrderItemFilter : les champs vides ne filtrent pas.
type OrderItemFilter struct {
	Status    models.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
	ItemID    string
	Page      utils.Page
}

// OrderItemPage est une page de lignes de commande.
type OrderItemPage struct {
	Items         []models.OrderItemView
	TotalPages    int
	TotalElements int64
}

// FilterOrderItems liste les lignes de commande, les plus récentes d'abord.
// Aucun résultat renvoie ErrNotFound.
func (s *OrderService) FilterOrderItems(ctx context.Context, f OrderItemFilter) (*OrderItemPage, error) {
	var orders []models.Order
	if f.ItemID != "" {
		o, err := s.orders.GetByItemID(ctx, f.ItemID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if o != nil {
			orders = []models.Order{*o}
		}
	} else {
		all, err := s.orders.List(ctx)
		if err != nil {
			return nil, err
		}
		orders = all
	}

	var views []models.OrderItemView
	for _, o := range orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.StartDate != nil && o.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && o.CreatedAt.After(*f.EndDate) {
			continue
		}
		for _, v := range o.Flatten() {
			if f.ItemID != "" && v.ID != f.ItemID {
				continue
			}
			views = append(views, v)
		}
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("aucune commande trouvée: %w", ErrNotFound)
	}

	page, totalPages := utils.Paginate(views, f.Page)
	return &OrderItemPage{Items: page, TotalPages: totalPages, TotalElements: int64(len(views))}, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// GetOrderByID : accessible au propriétaire et aux administrateurs.
func (s *OrderService) GetOrderByID(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.UserID && !actor.Role.IsAdmin() {
		return nil, fmt.Errorf("commande d'un autre client: %w", ErrForbidden)
	}
	return o, nil
}
