package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"busline/internal/config"
	"busline/internal/models"
)

// maxResults bounds one search response; search is not paginated.
const maxResults = 1000

// ErrTruncated means the index holds more matches than one response carries.
var ErrTruncated = errors.New("search result truncated")

// ElasticsearchClient представляет клиент для работы с индексом рейсов
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// journeyDocument is the indexed form of a journey. The *_key fields hold the
// lower-cased places so term queries match case-insensitively.
type journeyDocument struct {
	ID          string    `json:"id"`
	BusNumber   string    `json:"bus_number"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	FromKey     string    `json:"from_key"`
	ToKey       string    `json:"to_key"`
	JourneyDate string    `json:"journey_date"`
	StartTime   string    `json:"start_time"`
	Fare        string    `json:"fare"`
	TotalSeats  int       `json:"total_seats"`
	SeatsPerRow int       `json:"seats_per_row"`
	CreatedAt   time.Time `json:"created_at"`
}

func newDocument(j *models.Journey) journeyDocument {
	return journeyDocument{
		ID:          j.ID.String(),
		BusNumber:   j.BusNumber,
		From:        j.From,
		To:          j.To,
		FromKey:     placeKey(j.From),
		ToKey:       placeKey(j.To),
		JourneyDate: j.JourneyDate.String(),
		StartTime:   j.StartTime,
		Fare:        j.Fare,
		TotalSeats:  j.TotalSeats,
		SeatsPerRow: j.SeatsPerRow,
		CreatedAt:   j.CreatedAt,
	}
}

func (d journeyDocument) journey() (models.Journey, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Journey{}, fmt.Errorf("invalid journey id %q in index: %w", d.ID, err)
	}
	date, err := models.ParseDate(d.JourneyDate)
	if err != nil {
		return models.Journey{}, err
	}
	return models.Journey{
		ID:          id,
		BusNumber:   d.BusNumber,
		From:        d.From,
		To:          d.To,
		JourneyDate: date,
		StartTime:   d.StartTime,
		Fare:        d.Fare,
		TotalSeats:  d.TotalSeats,
		SeatsPerRow: d.SeatsPerRow,
		CreatedAt:   d.CreatedAt,
	}, nil
}

func placeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewElasticsearchClient создает новый клиент Elasticsearch и индекс при необходимости
func NewElasticsearchClient(ctx context.Context, cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
		Transport:     &http.Transport{ResponseHeaderTimeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	if err := client.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

var indexMapping = map[string]any{
	"settings": map[string]any{
		"number_of_shards":   1,
		"number_of_replicas": 0,
	},
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":            map[string]any{"type": "keyword"},
			"bus_number":    map[string]any{"type": "keyword"},
			"from":          map[string]any{"type": "text"},
			"to":            map[string]any{"type": "text"},
			"from_key":      map[string]any{"type": "keyword"},
			"to_key":        map[string]any{"type": "keyword"},
			"journey_date":  map[string]any{"type": "date", "format": "strict_date"},
			"start_time":    map[string]any{"type": "keyword"},
			"fare":          map[string]any{"type": "scaled_float", "scaling_factor": 100},
			"total_seats":   map[string]any{"type": "integer"},
			"seats_per_row": map[string]any{"type": "integer"},
			"created_at":    map[string]any{"type": "date"},
		},
	},
}

// ensureIndex создает индекс если он не существует
func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	body, err := json.Marshal(indexMapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(body),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// SearchJourneys ищет рейсы по точному совпадению маршрута и даты
func (c *ElasticsearchClient) SearchJourneys(ctx context.Context, from, to string, date models.Date) ([]models.Journey, error) {
	body, err := json.Marshal(buildSearchQuery(from, to, date))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source journeyDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if response.Hits.Total.Value > int64(len(response.Hits.Hits)) {
		return nil, fmt.Errorf("%w: %d matches, %d returned", ErrTruncated, response.Hits.Total.Value, len(response.Hits.Hits))
	}

	journeys := make([]models.Journey, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		j, err := hit.Source.journey()
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, j)
	}

	return journeys, nil
}

func buildSearchQuery(from, to string, date models.Date) map[string]any {
	return map[string]any{
		"size":             maxResults,
		"track_total_hits": true,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"from_key": placeKey(from)}},
					{"term": map[string]any{"to_key": placeKey(to)}},
					{"term": map[string]any{"journey_date": date.String()}},
				},
			},
		},
		"sort": []map[string]any{
			{"created_at": map[string]any{"order": "asc"}},
			{"id": map[string]any{"order": "asc"}},
		},
	}
}

// IndexJourney индексирует рейс
func (c *ElasticsearchClient) IndexJourney(ctx context.Context, j *models.Journey) error {
	body, err := json.Marshal(newDocument(j))
	if err != nil {
		return fmt.Errorf("failed to marshal journey: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: j.ID.String(),
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index journey: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

// Refresh makes indexed journeys visible to search.
func (c *ElasticsearchClient) Refresh(ctx context.Context) error {
	req := esapi.IndicesRefreshRequest{Index: []string{c.config.Index}}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to refresh index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("refresh error: %s", res.String())
	}
	return nil
}

// Count возвращает количество документов
func (c *ElasticsearchClient) Count(ctx context.Context) (int64, error) {
	req := esapi.CountRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to execute count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var response struct {
		Count int64 `json:"count"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}

	return response.Count, nil
}

// HealthCheck проверяет состояние Elasticsearch
func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
