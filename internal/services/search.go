package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"phoneshop_back_end/internal/models"
)

// ElasticIndex indexe les produits dans Elasticsearch.
type ElasticIndex struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

func NewElasticIndex(es *elasticsearch.Client, index string, log *slog.Logger) *ElasticIndex {
	return &ElasticIndex{es: es, index: index, log: log}
}

type productDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	Price       string `json:"price"`
}

func (e *ElasticIndex) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Price:       p.Price.StringFixed(2),
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.es)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexation %s: %s", p.ID, res.String())
	}
	e.log.Debug("✅ Produit indexé dans Elasticsearch", "product_id", p.ID)
	return nil
}

func (e *ElasticIndex) Remove(ctx context.Context, productID string) error {
	req := esapi.DeleteRequest{Index: e.index, DocumentID: productID, Refresh: "true"}
	res, err := req.Do(ctx, e.es)
	if err != nil {
		return fmt.Errorf("suppression Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("suppression %s: %s", productID, res.String())
	}
	return nil
}

// Search renvoie les identifiants des produits correspondant à la requête,
// par pertinence.
func (e *ElasticIndex) Search(ctx context.Context, query string) ([]string, error) {
	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": 100,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(e.index),
		e.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.New("index non trouvé ou vide")
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
