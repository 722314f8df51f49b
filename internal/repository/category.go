package repository

import (
	"context"
	"sort"
	"time"

	"github.com/gocql/gocql"

	"phoneshop_back_end/internal/models"
)

type CategoryRepository struct {
	session *gocql.Session
}

func NewCategoryRepository(session *gocql.Session) *CategoryRepository {
	return &CategoryRepository{session: session}
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	id, err := parseID("catégorie", c.ID)
	if err != nil {
		return err
	}
	return r.session.Query(`INSERT INTO categories (category_id, name, created_at) VALUES (?, ?, ?)`,
		id, c.Name, c.CreatedAt).WithContext(ctx).Exec()
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	id, err := parseID("catégorie", c.ID)
	if err != nil {
		return err
	}
	return r.session.Query(`UPDATE categories SET name = ? WHERE category_id = ?`,
		c.Name, id).WithContext(ctx).Exec()
}

func (r *CategoryRepository) Delete(ctx context.Context, categoryID string) error {
	id, err := parseID("catégorie", categoryID)
	if err != nil {
		return err
	}
	return r.session.Query(`DELETE FROM categories WHERE category_id = ?`, id).WithContext(ctx).Exec()
}

func (r *CategoryRepository) GetByID(ctx context.Context, categoryID string) (*models.Category, error) {
	id, err := parseID("catégorie", categoryID)
	if err != nil {
		return nil, err
	}
	c := models.Category{ID: categoryID}
	err = r.session.Query(`SELECT name, created_at FROM categories WHERE category_id = ?`, id).
		WithContext(ctx).Scan(&c.Name, &c.CreatedAt)
	if err != nil {
		return nil, notFound("catégorie", categoryID, err)
	}
	return &c, nil
}

// List renvoie les catégories triées par nom.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	iter := r.session.Query(`SELECT category_id, name, created_at FROM categories`).WithContext(ctx).Iter()

	var (
		out       []models.Category
		id        gocql.UUID
		name      string
		createdAt time.Time
	)
	for iter.Scan(&id, &name, &createdAt) {
		out = append(out, models.Category{ID: id.String(), Name: name, CreatedAt: createdAt})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
