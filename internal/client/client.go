// Package client is the HTTP client for the library application's JSON API.
//
// Non-2xx statuses are not errors: every call hands back the raw Response so
// the caller can assert on status and body. Only transport failures and
// undecodable success bodies are returned as errors.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bookshelf-qa/library-e2e/internal/version"
)

// Observer receives one callback per completed HTTP exchange.
type Observer interface {
	ObserveRequest(method string, statusCode int, duration time.Duration)
}

// Config represents client configuration
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Debug     bool
	Transport http.RoundTripper
	Observer  Observer
	Logger    *slog.Logger
}

// Client represents the library API client
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *slog.Logger

	Books        *BooksService
	Rentals      *RentalsService
	Favorites    *FavoritesService
	Purchases    *PurchasesService
	Statistics   *StatisticsService
	Registration *RegistrationService
}

// New creates a new library API client
func New(config Config) *Client {
	if config.UserAgent == "" {
		config.UserAgent = version.UserAgent()
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	if config.Transport != nil {
		httpClient.SetTransport(config.Transport)
	}
	if config.Debug {
		httpClient.SetDebug(true)
	}

	c := &Client{
		http:    httpClient,
		baseURL: config.BaseURL,
		logger:  config.Logger,
	}

	if config.Observer != nil {
		observer := config.Observer
		httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			observer.ObserveRequest(resp.Request.Method, resp.StatusCode(), resp.Time())
			return nil
		})
		httpClient.OnError(func(req *resty.Request, _ error) {
			observer.ObserveRequest(req.Method, 0, 0)
		})
	}

	c.Books = &BooksService{client: c}
	c.Rentals = &RentalsService{client: c}
	c.Favorites = &FavoritesService{client: c}
	c.Purchases = &PurchasesService{client: c}
	c.Statistics = &StatisticsService{client: c}
	c.Registration = &RegistrationService{client: c}

	return c
}

// BaseURL returns the application root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is the raw outcome of one HTTP exchange.
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode %s %s (status %d): %w", r.Method, r.Path, r.StatusCode, err)
	}
	return nil
}

// Message returns the mensagem field of the body, or "" when absent.
func (r *Response) Message() string {
	var m struct {
		Message string `json:"mensagem"`
	}
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return ""
	}
	return m.Message
}

func (r *Response) String() string {
	body := string(r.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s -> %d %s", r.Method, r.Path, r.StatusCode, body)
}

// Do issues a request and returns the raw response. body may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body any, query map[string]string) (*Response, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, &NetworkError{
			Operation: method,
			URL:       c.baseURL + path,
			Err:       err,
		}
	}

	out := &Response{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Duration:   resp.Time(),
	}
	c.logger.Debug("api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", out.StatusCode),
		slog.Duration("duration", out.Duration))
	return out, nil
}

// decodeSuccess decodes the body into a T only for 2xx responses.
func decodeSuccess[T any](resp *Response, err error) (*T, *Response, error) {
	if err != nil {
		return nil, nil, err
	}
	if !resp.IsSuccess() {
		return nil, resp, nil
	}
	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, resp, err
	}
	return &out, resp, nil
}
