package client

import (
	"context"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// StatisticsService handles /estatisticas
type StatisticsService struct {
	client *Client
}

// Get retrieves the aggregate snapshot.
func (s *StatisticsService) Get(ctx context.Context) (*models.Statistics, *Response, error) {
	return decodeSuccess[models.Statistics](s.client.Do(ctx, http.MethodGet, "/estatisticas", nil, nil))
}
