// Package fixtures prepares shared application state before a case runs.
//
// The application is never reset between runs and cases may execute in
// parallel, so every precondition is normalized the same way: read the
// current state, correct it when it does not hold, read it again and fail
// with a PreconditionError if it still does not hold.
package fixtures

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/bookshelf-qa/library-e2e/internal/client"
	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// StatusSet is a set of status codes accepted as a valid outcome.
type StatusSet []int

// Accept builds a StatusSet.
func Accept(codes ...int) StatusSet {
	return StatusSet(codes)
}

// Contains reports whether code is accepted.
func (s StatusSet) Contains(code int) bool {
	return slices.Contains(s, code)
}

func (s StatusSet) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = strconv.Itoa(c)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// ClearedFavorite: the pair was removed, or was never there.
var ClearedFavorite = Accept(http.StatusOK, http.StatusNotFound)

// PreconditionError reports state that could not be brought to what a case needs.
type PreconditionError struct {
	Resource  string
	Condition string
	Observed  string
	Err       error
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("precondition %q on %s not met (observed %s)", e.Condition, e.Resource, e.Observed)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Normalizer applies the read-correct-assert protocol through the API client.
type Normalizer struct {
	api    *client.Client
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. logger may be nil.
func NewNormalizer(api *client.Client, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{api: api, logger: logger}
}

// Book reads a book and requires a 200.
func (n *Normalizer) Book(ctx context.Context, id int) (*models.Book, error) {
	book, resp, err := n.api.Books.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK || book == nil {
		return nil, &PreconditionError{
			Resource:  bookResource(id),
			Condition: "book exists",
			Observed:  resp.String(),
		}
	}
	return book, nil
}

// EnsureStockAvailable guarantees stock > 0, restocking to restock if needed.
func (n *Normalizer) EnsureStockAvailable(ctx context.Context, id, restock int) (*models.Book, error) {
	return n.ensureStock(ctx, id, "estoque > 0", restock, func(stock int) bool { return stock > 0 })
}

// EnsureStockAtLeast guarantees stock >= minimum, restocking to
// max(restock, minimum) if needed.
func (n *Normalizer) EnsureStockAtLeast(ctx context.Context, id, minimum, restock int) (*models.Book, error) {
	condition := fmt.Sprintf("estoque >= %d", minimum)
	return n.ensureStock(ctx, id, condition, max(restock, minimum), func(stock int) bool { return stock >= minimum })
}

// EnsureOutOfStock guarantees stock == 0.
func (n *Normalizer) EnsureOutOfStock(ctx context.Context, id int) (*models.Book, error) {
	return n.ensureStock(ctx, id, "estoque == 0", 0, func(stock int) bool { return stock == 0 })
}

// EnsureStockBelow guarantees stock < quantity, lowering it to quantity-1 if needed.
func (n *Normalizer) EnsureStockBelow(ctx context.Context, id, quantity int) (*models.Book, error) {
	condition := fmt.Sprintf("estoque < %d", quantity)
	return n.ensureStock(ctx, id, condition, quantity-1, func(stock int) bool { return stock < quantity })
}

func (n *Normalizer) ensureStock(ctx context.Context, id int, condition string, target int, holds func(int) bool) (*models.Book, error) {
	book, err := n.Book(ctx, id)
	if err != nil {
		return nil, err
	}
	if holds(book.Stock) {
		return book, nil
	}

	n.logger.Info("adjusting stock",
		slog.Int("book_id", id),
		slog.Int("from", book.Stock),
		slog.Int("to", target),
		slog.String("condition", condition))

	book.Stock = target
	_, resp, err := n.api.Books.Update(ctx, id, *book)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &PreconditionError{
			Resource:  bookResource(id),
			Condition: condition,
			Observed:  resp.String(),
		}
	}

	book, err = n.Book(ctx, id)
	if err != nil {
		return nil, err
	}
	if !holds(book.Stock) {
		return nil, &PreconditionError{
			Resource:  bookResource(id),
			Condition: condition,
			Observed:  fmt.Sprintf("estoque %d after update", book.Stock),
		}
	}
	return book, nil
}

// ClearFavorite removes a (user, book) pair that may or may not exist.
func (n *Normalizer) ClearFavorite(ctx context.Context, fav models.Favorite) (*client.Response, error) {
	resp, err := n.api.Favorites.Remove(ctx, fav)
	if err != nil {
		return nil, err
	}
	if !ClearedFavorite.Contains(resp.StatusCode) {
		return resp, &PreconditionError{
			Resource:  fmt.Sprintf("favorite user=%d book=%d", fav.UserID, fav.BookID),
			Condition: "status in " + ClearedFavorite.String(),
			Observed:  resp.String(),
		}
	}
	return resp, nil
}

// CreateBook adds a book and requires a 201 with an id.
func (n *Normalizer) CreateBook(ctx context.Context, book models.Book) (*models.Book, error) {
	created, resp, err := n.api.Books.Create(ctx, book)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated || created == nil || created.ID == 0 {
		return nil, &PreconditionError{
			Resource:  "book " + strconv.Quote(book.Name),
			Condition: "created with 201",
			Observed:  resp.String(),
		}
	}
	n.logger.Info("fixture book created", slog.Int("book_id", created.ID), slog.String("nome", created.Name))
	return created, nil
}

// ProvisionBook returns configuredID when set, otherwise creates template
// and returns the new id.
func (n *Normalizer) ProvisionBook(ctx context.Context, configuredID int, template models.Book) (int, error) {
	if configuredID > 0 {
		return configuredID, nil
	}
	created, err := n.CreateBook(ctx, template)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

func bookResource(id int) string {
	return "book " + strconv.Itoa(id)
}
