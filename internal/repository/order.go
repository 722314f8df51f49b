package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"gopkg.in/inf.v0"

	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/utils"
)

// OrderRepository stocke la commande et ses lignes (JSON) dans une seule
// ligne orders, avec des tables d'index par client, par ligne et par produit.
type OrderRepository struct {
	session *gocql.Session
}

func NewOrderRepository(session *gocql.Session) *OrderRepository {
	return &OrderRepository{session: session}
}

const orderColumns = `order_id, user_id, status, total_price, items, created_at`

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = newID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = newID()
		}
		if o.Items[i].CreatedAt.IsZero() {
			o.Items[i].CreatedAt = o.CreatedAt
		}
	}

	id, err := parseID("commande", o.ID)
	if err != nil {
		return err
	}
	userID, err := parseID("utilisateur", o.UserID)
	if err != nil {
		return err
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, string(o.Status), utils.ToInfDec(o.TotalPrice), string(items), o.CreatedAt)
	batch.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id) VALUES (?, ?, ?)`,
		userID, o.CreatedAt, id)
	for _, it := range o.Items {
		itemID, err := parseID("ligne", it.ID)
		if err != nil {
			return err
		}
		batch.Query(`INSERT INTO order_items_by_id (item_id, order_id) VALUES (?, ?)`, itemID, id)
		if productID, err := gocql.ParseUUID(it.ProductID); err == nil {
			batch.Query(`INSERT INTO orders_by_product (product_id, order_id) VALUES (?, ?)`, productID, id)
		}
	}
	return r.session.ExecuteBatch(batch)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	id, err := parseID("commande", orderID)
	if err != nil {
		return err
	}
	return r.session.Query(`UPDATE orders SET status = ? WHERE order_id = ?`, string(status), id).
		WithContext(ctx).Exec()
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := parseID("commande", orderID)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, id)
}

func (r *OrderRepository) get(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	var row orderRow
	err := r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, id).
		WithContext(ctx).Scan(row.dest()...)
	if err != nil {
		return nil, notFound("commande", id.String(), err)
	}
	o, err := row.model()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByItemID(ctx context.Context, itemID string) (*models.Order, error) {
	id, err := parseID("ligne", itemID)
	if err != nil {
		return nil, err
	}
	var orderID gocql.UUID
	err = r.session.Query(`SELECT order_id FROM order_items_by_id WHERE item_id = ?`, id).
		WithContext(ctx).Scan(&orderID)
	if err != nil {
		return nil, notFound("ligne", itemID, err)
	}
	return r.get(ctx, orderID)
}

// ListByUser renvoie les commandes du client, les plus récentes d'abord.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	uid, err := parseID("utilisateur", userID)
	if err != nil {
		return nil, err
	}
	iter := r.session.Query(`SELECT order_id FROM orders_by_user WHERE user_id = ?`, uid).
		WithContext(ctx).Iter()
	var (
		ids []gocql.UUID
		id  gocql.UUID
	)
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	out := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

// List renvoie toutes les commandes, les plus récentes d'abord.
func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	iter := r.session.Query(`SELECT ` + orderColumns + ` FROM orders`).WithContext(ctx).Iter()
	var (
		out []models.Order
		row orderRow
	)
	for iter.Scan(row.dest()...) {
		o, err := row.model()
		if err != nil {
			_ = iter.Close()
			return nil, err
		}
		out = append(out, o)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *OrderRepository) ProductOrdered(ctx context.Context, productID string) (bool, error) {
	id, err := parseID("produit", productID)
	if err != nil {
		return false, err
	}
	var orderID gocql.UUID
	err = r.session.Query(`SELECT order_id FROM orders_by_product WHERE product_id = ? LIMIT 1`, id).
		WithContext(ctx).Scan(&orderID)
	if err == gocql.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type orderRow struct {
	id, userID gocql.UUID
	status     string
	total      inf.Dec
	items      string
	createdAt  time.Time
}

func (r *orderRow) dest() []interface{} {
	return []interface{}{&r.id, &r.userID, &r.status, &r.total, &r.items, &r.createdAt}
}

func (r *orderRow) model() (models.Order, error) {
	o := models.Order{
		ID:         r.id.String(),
		UserID:     r.userID.String(),
		Status:     models.OrderStatus(r.status),
		TotalPrice: utils.FromInfDec(&r.total),
		CreatedAt:  r.createdAt,
	}
	if r.items != "" {
		if err := json.Unmarshal([]byte(r.items), &o.Items); err != nil {
			return models.Order{}, fmt.Errorf("lignes de la commande %s: %w", o.ID, err)
		}
	}
	return o, nil
}
