package libstub

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf-qa/library-e2e/internal/client"
	"github.com/bookshelf-qa/library-e2e/internal/logger"
	"github.com/bookshelf-qa/library-e2e/internal/models"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *client.Client) {
	t.Helper()
	srv, err := New(logger.Discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts, client.New(client.Config{BaseURL: ts.URL})
}

func TestAPIOverHTTP(t *testing.T) {
	_, _, api := newTestServer(t)
	ctx := context.Background()

	t.Run("book not found", func(t *testing.T) {
		book, resp, err := api.Books.Get(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, book)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, models.MsgBookNotFound, resp.Message())
	})

	t.Run("create book", func(t *testing.T) {
		book, resp, err := api.Books.Create(ctx, models.Book{Name: "Novo", Author: "Autor", Stock: 3, Price: 10.5})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		require.NotNil(t, book)
		assert.Equal(t, 31, book.ID)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp, err := api.Do(ctx, http.MethodPost, "/livros", map[string]any{"nome": 12}, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.MsgInvalidPayload, resp.Message())
	})

	t.Run("invalid rental status", func(t *testing.T) {
		rental, _, err := api.Rentals.Create(ctx, models.RentalRequest{UserID: 3, BookID: 15, StartDate: "2025-12-20", EndDate: "2025-12-27"})
		require.NoError(t, err)
		require.NotNil(t, rental)

		resp, err := api.Rentals.UpdateStatus(ctx, rental.ID, "EM_ANALISE")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.MsgInvalidStatus, resp.Message())

		list, resp, err := api.Rentals.ListByUser(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, list)
	})

	t.Run("remove absent favorite", func(t *testing.T) {
		resp, err := api.Favorites.Remove(ctx, models.Favorite{UserID: 2, BookID: 7})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("favorites list is never null", func(t *testing.T) {
		resp, err := api.Do(ctx, http.MethodGet, "/favoritos/2", nil, nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(resp.Body))
	})

	t.Run("statistics", func(t *testing.T) {
		st, resp, err := api.Statistics.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, st.Consistent())
	})
}

func TestBooksPage(t *testing.T) {
	srv, ts, _ := newTestServer(t)

	noRedirect := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	t.Run("renders form and cards", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/livros.html")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		html := string(body)
		assert.Contains(t, html, "📚 Gerenciar Livros")
		assert.Contains(t, html, `id="estoque" name="estoque" type="number" min="0" value="1"`)
		assert.Contains(t, html, "Adicionar Livro")
		assert.Contains(t, html, "<h3>Dom Casmurro</h3>")
		assert.Contains(t, html, "Preço: R$ 29.9")
		assert.Contains(t, html, "🗑️ Deletar Livro")
	})

	t.Run("form post creates and redirects", func(t *testing.T) {
		form := url.Values{
			"nome": {"Livro Teste"}, "autor": {"Autor Teste"}, "paginas": {"350"},
			"descricao": {"d"}, "imagemUrl": {""}, "estoque": {"5"}, "preco": {"49.90"},
		}
		resp, err := noRedirect.PostForm(ts.URL+"/livros.html", form)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/livros.html", resp.Header.Get("Location"))

		books := srv.Store().Books()
		last := books[len(books)-1]
		assert.Equal(t, "Livro Teste", last.Name)
		assert.Equal(t, 350, last.Pages)
		assert.Equal(t, "R$ 49.9", last.PriceLabel())
	})

	t.Run("form post without name is rejected", func(t *testing.T) {
		resp, err := noRedirect.Post(ts.URL+"/livros.html", "application/x-www-form-urlencoded", strings.NewReader("autor=x"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete from page", func(t *testing.T) {
		resp, err := noRedirect.PostForm(ts.URL+"/livros.html/1/excluir", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

		_, err = srv.Store().Book(1)
		assert.Error(t, err)
	})
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, err := New(logger.Discard())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	api := client.New(client.Config{BaseURL: "http://" + ln.Addr().String()})
	book, resp, err := api.Books.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, book.ID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRequestID(t *testing.T) {
	srv, err := New(logger.Discard())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/estatisticas", nil)
	srv.Handler().ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/estatisticas", nil)
	req.Header.Set(RequestIDHeader, "run-1-case-5")
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "run-1-case-5", rec.Header().Get(RequestIDHeader))
}
