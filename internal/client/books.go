package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// BooksService handles /livros operations
type BooksService struct {
	client *Client
}

// Create adds a book (201 on success).
func (s *BooksService) Create(ctx context.Context, book models.Book) (*models.Book, *Response, error) {
	return decodeSuccess[models.Book](s.client.Do(ctx, http.MethodPost, "/livros", book, nil))
}

// Get retrieves a book by ID.
func (s *BooksService) Get(ctx context.Context, id int) (*models.Book, *Response, error) {
	return decodeSuccess[models.Book](s.client.Do(ctx, http.MethodGet, bookPath(id), nil, nil))
}

// List retrieves the whole catalog.
func (s *BooksService) List(ctx context.Context) ([]models.Book, *Response, error) {
	books, resp, err := decodeSuccess[[]models.Book](s.client.Do(ctx, http.MethodGet, "/livros", nil, nil))
	if books == nil {
		return nil, resp, err
	}
	return *books, resp, err
}

// Update replaces a book's fields, stock and price included.
func (s *BooksService) Update(ctx context.Context, id int, book models.Book) (*models.Book, *Response, error) {
	return decodeSuccess[models.Book](s.client.Do(ctx, http.MethodPut, bookPath(id), book, nil))
}

// Delete removes a book.
func (s *BooksService) Delete(ctx context.Context, id int) (*Response, error) {
	return s.client.Do(ctx, http.MethodDelete, bookPath(id), nil, nil)
}

func bookPath(id int) string {
	return fmt.Sprintf("/livros/%d", id)
}
