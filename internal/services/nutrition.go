package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evofit/evofit-backend/internal/metrics"
)

// NutritionService forwards natural-language food queries to the
// Nutritionix natural/nutrients endpoint. Responses are passed through
// untouched; there is no caching and no retry.
type NutritionService struct {
	url     string
	appID   string
	appKey  string
	client  *http.Client
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewNutritionService(url, appID, appKey string, timeout time.Duration, log logrus.FieldLogger, m *metrics.Metrics) *NutritionService {
	return &NutritionService{
		url:     url,
		appID:   appID,
		appKey:  appKey,
		client:  &http.Client{Timeout: timeout},
		log:     log,
		metrics: m,
	}
}

type nutrientsRequest struct {
	Query string `json:"query"`
}

type nutrientsResponse struct {
	Foods []json.RawMessage `json:"foods"`
}

// Search returns the provider's food records for query. Every provider
// failure, including timeouts and non-200 answers, is ErrLookupFailed.
func (s *NutritionService) Search(ctx context.Context, query string) ([]json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidInput("query is required")
	}

	start := time.Now()
	foods, err := s.lookup(ctx, query)
	if err != nil {
		s.metrics.NutritionLookup("error", time.Since(start))
		s.log.WithError(err).Warn("nutrition lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	s.metrics.NutritionLookup("ok", time.Since(start))
	return foods, nil
}

func (s *NutritionService) lookup(ctx context.Context, query string) ([]json.RawMessage, error) {
	body, err := json.Marshal(nutrientsRequest{Query: query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", s.appID)
	req.Header.Set("x-app-key", s.appKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out nutrientsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if out.Foods == nil {
		out.Foods = []json.RawMessage{}
	}
	return out.Foods, nil
}
