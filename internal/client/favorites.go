package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// FavoritesService handles /favoritos operations
type FavoritesService struct {
	client *Client
}

// Add bookmarks a book for a user.
func (s *FavoritesService) Add(ctx context.Context, fav models.Favorite) (*Response, error) {
	return s.client.Do(ctx, http.MethodPost, "/favoritos", fav, nil)
}

// Remove deletes a bookmark. The pair travels in the DELETE body.
func (s *FavoritesService) Remove(ctx context.Context, fav models.Favorite) (*Response, error) {
	return s.client.Do(ctx, http.MethodDelete, "/favoritos", fav, nil)
}

// List retrieves the favorite books of a user as full book objects.
func (s *FavoritesService) List(ctx context.Context, userID int) ([]models.Book, *Response, error) {
	path := fmt.Sprintf("/favoritos/%d", userID)
	books, resp, err := decodeSuccess[[]models.Book](s.client.Do(ctx, http.MethodGet, path, nil, nil))
	if books == nil {
		return nil, resp, err
	}
	return *books, resp, err
}
