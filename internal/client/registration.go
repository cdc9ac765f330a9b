package client

import (
	"context"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// RegistrationService handles /registro
type RegistrationService struct {
	client *Client
}

// Register creates an account.
func (s *RegistrationService) Register(ctx context.Context, request models.RegisterRequest) (*models.RegisterResponse, *Response, error) {
	return decodeSuccess[models.RegisterResponse](s.client.Do(ctx, http.MethodPost, "/registro", request, nil))
}
