package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"gopkg.in/inf.v0"

	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/services"
	"phoneshop_back_end/internal/utils"
)

type PaymentRepository struct {
	session *gocql.Session
}

func NewPaymentRepository(session *gocql.Session) *PaymentRepository {
	return &PaymentRepository{session: session}
}

const paymentColumns = `payment_id, order_id, amount, method, status, reference, created_at`

// Reserve attribue la commande au paiement dans payments_by_order (LWT) :
// une commande ne peut avoir qu'un paiement.
func (r *PaymentRepository) Reserve(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = newID()
	}
	id, orderID, err := paymentIDs(p)
	if err != nil {
		return err
	}

	var existingOrder, existingPayment gocql.UUID
	applied, err := r.session.Query(`INSERT INTO payments_by_order (order_id, payment_id) VALUES (?, ?) IF NOT EXISTS`,
		orderID, id).WithContext(ctx).ScanCAS(&existingOrder, &existingPayment)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("commande %s déjà payée: %w", p.OrderID, services.ErrConflict)
	}
	return nil
}

// Release libère une réservation qui n'a pas abouti.
func (r *PaymentRepository) Release(ctx context.Context, p *models.Payment) error {
	id, orderID, err := paymentIDs(p)
	if err != nil {
		return err
	}
	var current gocql.UUID
	_, err = r.session.Query(`DELETE FROM payments_by_order WHERE order_id = ? IF payment_id = ?`, orderID, id).
		WithContext(ctx).ScanCAS(&current)
	return err
}

// Create écrit le paiement d'une commande déjà réservée par Reserve.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	id, orderID, err := paymentIDs(p)
	if err != nil {
		return err
	}
	return r.session.Query(`INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, orderID, utils.ToInfDec(p.Amount), string(p.Method), p.Status, p.Reference, p.CreatedAt).
		WithContext(ctx).Exec()
}

func paymentIDs(p *models.Payment) (gocql.UUID, gocql.UUID, error) {
	id, err := parseID("paiement", p.ID)
	if err != nil {
		return gocql.UUID{}, gocql.UUID{}, err
	}
	orderID, err := parseID("commande", p.OrderID)
	if err != nil {
		return gocql.UUID{}, gocql.UUID{}, err
	}
	return id, orderID, nil
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	oid, err := parseID("commande", orderID)
	if err != nil {
		return nil, err
	}
	var paymentID gocql.UUID
	err = r.session.Query(`SELECT payment_id FROM payments_by_order WHERE order_id = ?`, oid).
		WithContext(ctx).Scan(&paymentID)
	if err != nil {
		return nil, notFound("paiement de la commande", orderID, err)
	}

	var row paymentRow
	err = r.session.Query(`SELECT `+paymentColumns+` FROM payments WHERE payment_id = ?`, paymentID).
		WithContext(ctx).Scan(row.dest()...)
	if err != nil {
		return nil, notFound("paiement", paymentID.String(), err)
	}
	p := row.model()
	return &p, nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	iter := r.session.Query(`SELECT ` + paymentColumns + ` FROM payments`).WithContext(ctx).Iter()
	var (
		out []models.Payment
		row paymentRow
	)
	for iter.Scan(row.dest()...) {
		out = append(out, row.model())
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type paymentRow struct {
	id, orderID               gocql.UUID
	amount                    inf.Dec
	method, status, reference string
	createdAt                 time.Time
}

func (r *paymentRow) dest() []interface{} {
	return []interface{}{&r.id, &r.orderID, &r.amount, &r.method, &r.status, &r.reference, &r.createdAt}
}

func (r *paymentRow) model() models.Payment {
	return models.Payment{
		ID:        r.id.String(),
		OrderID:   r.orderID.String(),
		Amount:    utils.FromInfDec(&r.amount),
		Method:    models.PaymentMethod(r.method),
		Status:    r.status,
		Reference: r.reference,
		CreatedAt: r.createdAt,
	}
}
