// Package search finds a user's imported products. With Elasticsearch
// configured it runs a fuzzy multi_match query; without it it degrades to a
// LIKE filter on the products table so the page works with zero extra infra.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/models"
)

type Service struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client
	Index string
}

func (s *Service) Search(ctx context.Context, userID uint, query string, from, size int) (int64, []models.Product, error) {
	if s.ES == nil {
		return s.searchDB(userID, query, from, size)
	}
	return s.searchES(ctx, userID, query, from, size)
}

func (s *Service) searchDB(userID uint, query string, from, size int) (int64, []models.Product, error) {
	pattern := "%" + query + "%"

	var total int64
	if err := s.DB.Model(&models.Product{}).
		Where("user_id = ?", userID).
		Where("title LIKE ? OR source_sku LIKE ?", pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := s.DB.
		Where("user_id = ?", userID).
		Where("title LIKE ? OR source_sku LIKE ?", pattern, pattern).
		Order("id ASC").Offset(from).Limit(size).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (s *Service) searchES(ctx context.Context, userID uint, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": userID},
				},
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"title^2", "source_sku", "ebay_item_id"},
						"fuzziness": "AUTO",
					},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}
