package client

import (
	"context"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// PurchasesService handles /compras operations
type PurchasesService struct {
	client *Client
}

// Create places a purchase (201 with status PENDENTE and total on success).
func (s *PurchasesService) Create(ctx context.Context, request models.PurchaseRequest) (*models.Purchase, *Response, error) {
	return decodeSuccess[models.Purchase](s.client.Do(ctx, http.MethodPost, "/compras", request, nil))
}
