// Package libstub is an in-memory stand-in for the library application,
// used to exercise the suite without a live deployment.
package libstub

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookshelf-qa/library-e2e/internal/models"
)

// RequestIDHeader correlates client and stub logs.
const RequestIDHeader = "X-Request-ID"

// Server wires the store to a gin router.
type Server struct {
	store  *Store
	engine *gin.Engine
	logger *slog.Logger
}

// New creates a seeded server. logger may be nil.
func New(logger *slog.Logger) (*Server, error) {
	store := NewStore()
	if err := store.Seed(); err != nil {
		return nil, err
	}
	return NewWithStore(store, logger), nil
}

// NewWithStore creates a server over an existing store.
func NewWithStore(store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{store: store, engine: gin.New(), logger: logger}
	s.engine.Use(gin.Recovery(), requestID(), s.requestLogger())
	s.engine.SetHTMLTemplate(template.Must(template.New("livros.html").Funcs(template.FuncMap{
		"price": models.FormatPrice,
	}).Parse(booksPageTemplate)))
	s.setupRoutes()
	return s
}

// Store exposes the underlying state, mostly for tests.
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	r := s.engine

	r.GET("/livros", s.listBooks)
	r.POST("/livros", s.createBook)
	r.GET("/livros/:id", s.getBook)
	r.PUT("/livros/:id", s.updateBook)
	r.DELETE("/livros/:id", s.deleteBook)

	r.POST("/arrendamentos", s.createRental)
	r.GET("/arrendamentos/me", s.myRentals)
	r.PUT("/arrendamentos/:id/status", s.updateRentalStatus)

	r.POST("/favoritos", s.addFavorite)
	r.DELETE("/favoritos", s.removeFavorite)
	r.GET("/favoritos/:usuarioId", s.listFavorites)

	r.POST("/compras", s.createPurchase)
	r.GET("/estatisticas", s.statistics)
	r.POST("/registro", s.register)

	r.GET("/livros.html", s.booksPage)
	r.POST("/livros.html", s.booksPageCreate)
	r.POST("/livros.html/:id/excluir", s.booksPageDelete)
}

// requestID echoes X-Request-ID, generating one when the caller sent none.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("stub request",
			slog.String("request_id", c.GetString("request_id")),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("library stub listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
