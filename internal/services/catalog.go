package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"phoneshop_back_end/internal/cache"
	"phoneshop_back_end/internal/models"
)

// ImageUpload décrit un fichier image reçu avec un produit.
type ImageUpload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type CatalogService struct {
	categories CategoryRepository
	products   ProductRepository
	orders     OrderRepository
	cache      Cache
	index      ProductIndex // nil sans Elasticsearch
	images     ImageStore   // nil sans MinIO
	log        *slog.Logger
}

type CatalogDeps struct {
	Categories CategoryRepository
	Products   ProductRepository
	Orders     OrderRepository
	Cache      Cache
	Index      ProductIndex
	Images     ImageStore
	Log        *slog.Logger
}

func NewCatalogService(d CatalogDeps) *CatalogService {
	return &CatalogService{
		categories: d.Categories,
		products:   d.Products,
		orders:     d.Orders,
		cache:      d.Cache,
		index:      d.Index,
		images:     d.Images,
		log:        d.Log,
	}
}

// --- Catégories ---

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("nom de catégorie requis: %w", ErrInvalidInput)
	}
	c := &models.Category{Name: name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.CategoriesKey)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("nom de catégorie requis: %w", ErrInvalidInput)
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.CategoriesKey)
	return c, nil
}

// DeleteCategory refuse de supprimer une catégorie encore utilisée.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}
	products, err := s.products.ListByCategory(ctx, id)
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return fmt.Errorf("la catégorie contient encore %d produit(s): %w", len(products), ErrConflict)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.CategoriesKey)
	return nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if err := s.cache.Get(ctx, cache.CategoriesKey, &cached); err == nil {
		return cached, nil
	}
	list, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.CategoriesKey, list, cache.CatalogCacheTTL)
	return list, nil
}

// --- Produits ---

func (s *CatalogService) CreateProduct(ctx context.Context, in models.ProductUpdate, image *ImageUpload) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if in.CategoryID == "" || name == "" || in.Price == nil {
		return nil, fmt.Errorf("catégorie, nom et prix requis: %w", ErrInvalidInput)
	}
	if !in.Price.IsPositive() {
		return nil, fmt.Errorf("le prix doit être positif: %w", ErrInvalidInput)
	}
	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
		Price:       in.Price.Round(2),
	}
	if image != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		p.ImageURL = url
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.afterProductWrite(ctx, *p)
	return p, nil
}

// UpdateProduct ne modifie que les champs renseignés.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in models.ProductUpdate, image *ImageUpload) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousCategory := p.CategoryID

	if in.CategoryID != "" && in.CategoryID != p.CategoryID {
		if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = in.CategoryID
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		p.Name = name
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		p.Description = desc
	}
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return nil, fmt.Errorf("le prix doit être positif: %w", ErrInvalidInput)
		}
		p.Price = in.Price.Round(2)
	}
	if image != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		p.ImageURL = url
	}

	if err := s.products.Update(ctx, p, previousCategory); err != nil {
		return nil, err
	}
	s.afterProductWrite(ctx, *p)
	return p, nil
}

// DeleteProduct refuse de supprimer un produit déjà commandé.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ordered, err := s.orders.ProductOrdered(ctx, id)
	if err != nil {
		return err
	}
	if ordered {
		return fmt.Errorf("le produit figure dans des commandes: %w", ErrConflict)
	}
	if err := s.products.Delete(ctx, p); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.ProductsKey)
	if s.index != nil {
		if err := s.index.Remove(ctx, id); err != nil {
			s.log.Warn("⚠️ Suppression de l'index impossible", "product_id", id, "error", err)
		}
	}
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if err := s.cache.Get(ctx, cache.ProductsKey, &cached); err == nil {
		return cached, nil
	}
	list, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.ProductsKey, list, cache.CatalogCacheTTL)
	return list, nil
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.products.ListByCategory(ctx, categoryID)
}

// SearchProducts interroge l'index plein texte et se rabat sur un parcours
// du catalogue (nom ou description, insensible à la casse) s'il est
// indisponible.
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("terme de recherche requis: %w", ErrInvalidInput)
	}

	if s.index != nil {
		ids, err := s.index.Search(ctx, query)
		if err == nil {
			out := make([]models.Product, 0, len(ids))
			for _, id := range ids {
				p, err := s.products.GetByID(ctx, id)
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if err != nil {
					return nil, err
				}
				out = append(out, *p)
			}
			return out, nil
		}
		s.log.Warn("⚠️ Recherche Elastic indisponible, parcours du catalogue", "error", err)
	}

	all, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]models.Product, 0)
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) upload(ctx context.Context, img *ImageUpload) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("stockage d'images non configuré: %w", ErrInvalidInput)
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return "", fmt.Errorf("le fichier doit être une image: %w", ErrInvalidInput)
	}
	return s.images.Upload(ctx, img.Name, img.ContentType, img.Reader, img.Size)
}

func (s *CatalogService) afterProductWrite(ctx context.Context, p models.Product) {
	s.cache.Invalidate(ctx, cache.ProductsKey)
	if s.index != nil {
		if err := s.index.Index(ctx, p); err != nil {
			s.log.Warn("⚠️ Indexation Elastic impossible", "product_id", p.ID, "error", err)
		}
	}
}
