package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"gopkg.in/inf.v0"

	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/utils"
)

type ProductRepository struct {
	session *gocql.Session
}

func NewProductRepository(session *gocql.Session) *ProductRepository {
	return &ProductRepository{session: session}
}

const productColumns = `product_id, category_id, name, description, image_url, price, created_at`

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return r.write(ctx, p, "")
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product, previousCategoryID string) error {
	return r.write(ctx, p, previousCategoryID)
}

func (r *ProductRepository) write(ctx context.Context, p *models.Product, previousCategoryID string) error {
	id, err := parseID("produit", p.ID)
	if err != nil {
		return err
	}
	catID, err := parseID("catégorie", p.CategoryID)
	if err != nil {
		return err
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, catID, p.Name, p.Description, p.ImageURL, utils.ToInfDec(p.Price), p.CreatedAt)
	batch.Query(`INSERT INTO products_by_category (category_id, product_id) VALUES (?, ?)`, catID, id)
	if previousCategoryID != "" && previousCategoryID != p.CategoryID {
		if prev, err := gocql.ParseUUID(previousCategoryID); err == nil {
			batch.Query(`DELETE FROM products_by_category WHERE category_id = ? AND product_id = ?`, prev, id)
		}
	}
	return r.session.ExecuteBatch(batch)
}

func (r *ProductRepository) Delete(ctx context.Context, p *models.Product) error {
	id, err := parseID("produit", p.ID)
	if err != nil {
		return err
	}
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM products WHERE product_id = ?`, id)
	if catID, err := gocql.ParseUUID(p.CategoryID); err == nil {
		batch.Query(`DELETE FROM products_by_category WHERE category_id = ? AND product_id = ?`, catID, id)
	}
	return r.session.ExecuteBatch(batch)
}

func (r *ProductRepository) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	id, err := parseID("produit", productID)
	if err != nil {
		return nil, err
	}
	var row productRow
	err = r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).
		WithContext(ctx).Scan(row.dest()...)
	if err != nil {
		return nil, notFound("produit", productID, err)
	}
	p := row.model()
	return &p, nil
}

// List renvoie tous les produits, du plus récent au plus ancien.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	iter := r.session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()

	var (
		out []models.Product
		row productRow
	)
	for iter.Scan(row.dest()...) {
		out = append(out, row.model())
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	catID, err := parseID("catégorie", categoryID)
	if err != nil {
		return nil, err
	}

	iter := r.session.Query(`SELECT product_id FROM products_by_category WHERE category_id = ?`, catID).
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

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		var row productRow
		err := r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).
			WithContext(ctx).Scan(row.dest()...)
		if err == gocql.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("produit %s: %w", id, err)
		}
		out = append(out, row.model())
	}
	sortNewestFirst(out)
	return out, nil
}

type productRow struct {
	id, categoryID    gocql.UUID
	name, desc, image string
	price             inf.Dec
	createdAt         time.Time
}

func (r *productRow) dest() []interface{} {
	return []interface{}{&r.id, &r.categoryID, &r.name, &r.desc, &r.image, &r.price, &r.createdAt}
}

func (r *productRow) model() models.Product {
	return models.Product{
		ID:          r.id.String(),
		CategoryID:  r.categoryID.String(),
		Name:        r.name,
		Description: r.desc,
		ImageURL:    r.image,
		Price:       utils.FromInfDec(&r.price),
		CreatedAt:   r.createdAt,
	}
}

func sortNewestFirst(ps []models.Product) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].CreatedAt.After(ps[j].CreatedAt) })
}
