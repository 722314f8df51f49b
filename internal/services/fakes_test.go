package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"phoneshop_back_end/internal/cache"
	"phoneshop_back_end/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func notFoundErr(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// --- catégories ---

type memCategories struct {
	mu   sync.Mutex
	rows map[string]models.Category
}

func newMemCategories() *memCategories { return &memCategories{rows: map[string]models.Category{}} }

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m.rows[c.ID] = *c
	return nil
}

func (m *memCategories) Update(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[c.ID] = *c
	return nil
}

func (m *memCategories) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memCategories) GetByID(_ context.Context, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, notFoundErr("catégorie", id)
	}
	return &c, nil
}

func (m *memCategories) List(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- produits ---

type memProducts struct {
	mu    sync.Mutex
	rows  map[string]models.Product
	lists int
}

func newMemProducts() *memProducts { return &memProducts{rows: map[string]models.Product{}} }

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.rows[p.ID] = *p
	return nil
}

func (m *memProducts) Update(_ context.Context, p *models.Product, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.ID] = *p
	return nil
}

func (m *memProducts) Delete(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, p.ID)
	return nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, notFoundErr("produit", id)
	}
	return &p, nil
}

func (m *memProducts) List(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	out := make([]models.Product, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memProducts) ListByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	all, _ := m.List(ctx)
	var out []models.Product
	for _, p := range all {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) add(name, price string) models.Product {
	p := models.Product{ID: uuid.NewString(), Name: name, Price: decimal.RequireFromString(price), CategoryID: "cat"}
	m.rows[p.ID] = p
	return p
}

// --- commandes ---

type memOrders struct {
	mu       sync.Mutex
	rows     map[string]models.Order
	fail     error
	onCreate func()
}

func newMemOrders() *memOrders { return &memOrders{rows: map[string]models.Order{}} }

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	if m.onCreate != nil {
		m.onCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = uuid.NewString()
		}
	}
	m.rows[o.ID] = *o
	return nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok {
		return notFoundErr("commande", id)
	}
	o.Status = status
	m.rows[id] = o
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok {
		return nil, notFoundErr("commande", id)
	}
	return &o, nil
}

func (m *memOrders) GetByItemID(_ context.Context, itemID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.rows {
		if o.HasItem(itemID) {
			return &o, nil
		}
	}
	return nil, notFoundErr("ligne", itemID)
}

func (m *memOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	all, _ := m.List(ctx)
	var out []models.Order
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) List(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Order, 0, len(m.rows))
	for _, o := range m.rows {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memOrders) ProductOrdered(_ context.Context, productID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.rows {
		for _, it := range o.Items {
			if it.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// --- paiements ---

type memPayments struct {
	mu       sync.Mutex
	rows     []models.Payment
	reserved map[string]string
}

func (m *memPayments) Reserve(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.reserved[p.OrderID]; taken {
		return fmt.Errorf("commande déjà payée: %w", ErrConflict)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if m.reserved == nil {
		m.reserved = map[string]string{}
	}
	m.reserved[p.OrderID] = p.ID
	return nil
}

func (m *memPayments) Release(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reserved[p.OrderID] == p.ID {
		delete(m.reserved, p.OrderID)
	}
	return nil
}

func (m *memPayments) Create(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *p)
	return nil
}

func (m *memPayments) GetByOrderID(_ context.Context, orderID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.OrderID == orderID {
			return &p, nil
		}
	}
	return nil, notFoundErr("paiement", orderID)
}

func (m *memPayments) List(_ context.Context) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Payment(nil), m.rows...), nil
}

// --- utilisateurs ---

type memUsers struct {
	mu   sync.Mutex
	rows map[string]models.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]models.User{}} }

func (m *memUsers) emailTaken(email, exceptID string) bool {
	for _, u := range m.rows {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(u.Email, "") {
		return fmt.Errorf("e-mail %s: %w", u.Email, ErrConflict)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) Update(_ context.Context, u *models.User, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(u.Email, u.ID) {
		return fmt.Errorf("e-mail %s: %w", u.Email, ErrConflict)
	}
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) Delete(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, u.ID)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, notFoundErr("utilisateur", id)
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFoundErr("e-mail", email)
}

func (m *memUsers) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, u)
	}
	return out, nil
}

// --- adresses, jetons ---

type memAddresses struct {
	rows map[string]models.Address
}

func (m *memAddresses) Get(_ context.Context, userID string) (*models.Address, error) {
	a, ok := m.rows[userID]
	if !ok {
		return nil, notFoundErr("adresse", userID)
	}
	return &a, nil
}

func (m *memAddresses) Save(_ context.Context, a *models.Address) error {
	m.rows[a.UserID] = *a
	return nil
}

type memTokens struct {
	rows map[string]models.PasswordResetToken
}

func (m *memTokens) Create(_ context.Context, t *models.PasswordResetToken) error {
	m.rows[t.Token] = *t
	return nil
}

func (m *memTokens) Get(_ context.Context, token string) (*models.PasswordResetToken, error) {
	t, ok := m.rows[token]
	if !ok {
		return nil, notFoundErr("jeton", token)
	}
	return &t, nil
}

func (m *memTokens) MarkUsed(_ context.Context, token string) error {
	t := m.rows[token]
	if t.Used {
		return ErrConflict
	}
	t.Used = true
	m.rows[token] = t
	return nil
}

// --- services externes ---

type fakeIndex struct {
	ids     []string
	err     error
	indexed []string
	removed []string
}

func (f *fakeIndex) Index(_ context.Context, p models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string) ([]string, error) {
	return f.ids, f.err
}

type fakeImages struct{ uploaded []string }

func (f *fakeImages) Upload(_ context.Context, name, _ string, _ io.Reader, _ int64) (string, error) {
	f.uploaded = append(f.uploaded, name)
	return "http://minio/bucket/" + name, nil
}

type fakeCards struct {
	mu    sync.Mutex
	cents int64
	calls int
	err   error
	gate  chan struct{} // si non nil, Charge attend sa fermeture
}

func (f *fakeCards) Charge(_ context.Context, cents int64, _, _ string) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.cents = cents
	if f.err != nil {
		return "", f.err
	}
	return "pi_test", nil
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct{ sent []sentMail }

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

func newJSONCache(t *testing.T) *cache.JSONCache {
	return cache.NewJSONCache(newRedis(t), discardLogger())
}
