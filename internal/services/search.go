package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"pos_back_end/internal/models"
)

var ErrSearchDisabled = errors.New("Elasticsearch non configuré")

// ProductIndex indexe le catalogue dans Elasticsearch pour la recherche caisse.
type ProductIndex struct {
	client *elasticsearch.Client
	index  string
	log    *zap.Logger
}

// NewProductIndex accepte un client nil : la recherche renvoie alors ErrSearchDisabled.
func NewProductIndex(client *elasticsearch.Client, index string, log *zap.Logger) *ProductIndex {
	return &ProductIndex{client: client, index: index, log: log}
}

func (s *ProductIndex) Enabled() bool {
	return s != nil && s.client != nil
}

type productDoc struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	SKU      string   `json:"sku"`
	Barcode  string   `json:"barcode"`
	Category string   `json:"category"`
	Variants []string `json:"variants,omitempty"` // SKU et codes-barres des variantes
}

func toDoc(p models.Product) productDoc {
	doc := productDoc{ID: p.ID, Name: p.Name, SKU: p.SKU, Barcode: p.Barcode, Category: p.Category}
	for _, v := range p.Variants {
		doc.Variants = append(doc.Variants, v.SKU, v.Barcode)
	}
	return doc
}

func (s *ProductIndex) Index(ctx context.Context, p models.Product) error {
	if !s.Enabled() {
		return ErrSearchDisabled
	}

	data, err := json.Marshal(toDoc(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("indexation %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexation %s: %s", p.ID, res.Status())
	}
	return nil
}

// IndexAll envoie tout le catalogue en une requête bulk.
func (s *ProductIndex) IndexAll(ctx context.Context, products []models.Product) error {
	if !s.Enabled() {
		return ErrSearchDisabled
	}
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]any{"index": map[string]any{"_index": s.index, "_id": p.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(toDoc(p)); err != nil {
			return err
		}
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("indexation bulk: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexation bulk: %s", res.Status())
	}
	s.log.Info("✅ Catalogue indexé dans Elasticsearch", zap.Int("products", len(products)))
	return nil
}

// Search retourne les IDs produits correspondant à la requête, par pertinence.
func (s *ProductIndex) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if !s.Enabled() {
		return nil, ErrSearchDisabled
	}

	var buf bytes.Buffer
	q := map[string]any{
		"size":    limit,
		"_source": []string{"id"},
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^3", "sku", "barcode", "category", "variants"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encodage requête: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("recherche Elastic: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("décodage réponse: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
