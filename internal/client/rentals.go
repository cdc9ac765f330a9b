package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// RentalsService handles /arrendamentos operations
type RentalsService struct {
	client *Client
}

// Create requests a rental (201 with status PENDENTE on success).
func (s *RentalsService) Create(ctx context.Context, request models.RentalRequest) (*models.Rental, *Response, error) {
	return decodeSuccess[models.Rental](s.client.Do(ctx, http.MethodPost, "/arrendamentos", request, nil))
}

// UpdateStatus moves a rental to status.
func (s *RentalsService) UpdateStatus(ctx context.Context, id int, status models.RentalStatus) (*Response, error) {
	path := fmt.Sprintf("/arrendamentos/%d/status", id)
	return s.client.Do(ctx, http.MethodPut, path, models.StatusUpdate{Status: status}, nil)
}

// ListByUser retrieves the rentals of one user.
func (s *RentalsService) ListByUser(ctx context.Context, userID int) ([]models.Rental, *Response, error) {
	query := map[string]string{"usuarioId": strconv.Itoa(userID)}
	rentals, resp, err := decodeSuccess[[]models.Rental](s.client.Do(ctx, http.MethodGet, "/arrendamentos/me", nil, query))
	if rentals == nil {
		return nil, resp, err
	}
	return *rentals, resp, err
}
