package scenarios

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf-qa/library-e2e/internal/client"
	"github.com/bookshelf-qa/library-e2e/internal/config"
	"github.com/bookshelf-qa/library-e2e/internal/fixtures"
	"github.com/bookshelf-qa/library-e2e/internal/libstub"
	"github.com/bookshelf-qa/library-e2e/internal/logger"
	"github.com/bookshelf-qa/library-e2e/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func stubEnv(t *testing.T, cfg *config.Config) (*Env, *libstub.Server) {
	t.Helper()
	srv, err := libstub.New(logger.Discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	env, err := NewEnv(cfg, client.New(client.Config{BaseURL: ts.URL}), logger.Discard())
	require.NoError(t, err)
	return env, srv
}

func TestRegistry(t *testing.T) {
	r := Default()

	ids := make(map[string]bool)
	for _, c := range r.All() {
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
		assert.NotNil(t, c.Run, c.ID)
	}
	assert.Len(t, ids, 16)

	assert.Equal(t, []string{
		SuiteBooks, SuiteRegistration, SuiteStatistics, SuiteFavorites, SuiteRentals, SuitePurchases,
	}, r.Suites())
	assert.Len(t, Suite(SuiteRentals), 5)
	assert.Len(t, Suite(SuitePurchases), 2)

	c, ok := r.Get("CT-API-021")
	require.True(t, ok)
	assert.Equal(t, "CT-API-021 Update rental status to invalid status", c.Name())

	selected, err := r.Select(SuiteFavorites, SuiteStatistics)
	require.NoError(t, err)
	assert.Len(t, selected, 5)

	_, err = r.Select("loans")
	assert.ErrorContains(t, err, `unknown suite "loans"`)
}

func TestRegisterReplacesByID(t *testing.T) {
	r := NewRegistry()
	r.Register(Case{ID: "A", Suite: "s", Title: "first"}, Case{ID: "B", Suite: "s"})
	r.Register(Case{ID: "A", Suite: "s", Title: "second"})

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title)
}

func TestAllCasesPassAgainstStub(t *testing.T) {
	env, _ := stubEnv(t, testConfig(t))
	ctx := context.Background()

	// run twice: the second pass starts from the state the first one left
	for pass := 1; pass <= 2; pass++ {
		for _, c := range All() {
			t.Run(c.Name(), func(t *testing.T) {
				require.NoError(t, c.Run(ctx, env))
			})
		}
	}
}

func TestPreconditionsRepairState(t *testing.T) {
	env, srv := stubEnv(t, testConfig(t))
	ctx := context.Background()
	store := srv.Store()

	t.Run("rental book starts empty", func(t *testing.T) {
		_, err := store.UpdateBook(15, models.Book{Name: "Rental Test Book", Author: "a", Stock: 0})
		require.NoError(t, err)

		c, _ := Default().Get("CT-API-018")
		require.NoError(t, c.Run(ctx, env))

		book, _ := store.Book(15)
		assert.Equal(t, 5, book.Stock)
	})

	t.Run("favorite already present", func(t *testing.T) {
		require.NoError(t, store.AddFavorite(models.Favorite{UserID: 1, BookID: 20}))

		c, _ := Default().Get("CT-API-014")
		require.NoError(t, c.Run(ctx, env))
	})

	t.Run("short stock book equal to quantity", func(t *testing.T) {
		_, err := store.UpdateBook(4, models.Book{Name: "x", Author: "y", Stock: 5})
		require.NoError(t, err)

		c, _ := Default().Get("CT-API-024")
		require.NoError(t, c.Run(ctx, env))

		book, _ := store.Book(4)
		assert.Equal(t, 4, book.Stock)
	})

	t.Run("purchase book below quantity", func(t *testing.T) {
		_, err := store.UpdateBook(3, models.Book{Name: "x", Author: "y", Stock: 1, Price: 57})
		require.NoError(t, err)

		c, _ := Default().Get("CT-API-023")
		require.NoError(t, c.Run(ctx, env))

		book, _ := store.Book(3)
		assert.Equal(t, 8, book.Stock)
	})
}

func TestSelfProvisionedFixtures(t *testing.T) {
	cfg := testConfig(t)
	cfg.Fixtures.FavoriteBookID = 0
	cfg.Fixtures.RentalBookID = 0
	env, srv := stubEnv(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"CT-API-014", "CT-API-018"} {
		c, _ := Default().Get(id)
		require.NoError(t, c.Run(ctx, env), id)
	}

	books := srv.Store().Books()
	assert.Len(t, books, 32)
	assert.Equal(t, "Favorites Test Book", books[30].Name)
	assert.Equal(t, "Rental Test Book", books[31].Name)
}

func TestDeviationsAreReported(t *testing.T) {
	const baseURL = "http://library.test"
	ctx := context.Background()

	newEnv := func(t *testing.T) (*Env, *httpmock.MockTransport) {
		mock := httpmock.NewMockTransport()
		env, err := NewEnv(testConfig(t), client.New(client.Config{BaseURL: baseURL, Transport: mock}), logger.Discard())
		require.NoError(t, err)
		return env, mock
	}

	t.Run("wrong rejection message", func(t *testing.T) {
		env, mock := newEnv(t)
		mock.RegisterResponder(http.MethodGet, baseURL+"/livros/4",
			httpmock.NewJsonResponderOrPanic(http.StatusOK, models.Book{ID: 4, Name: "x", Author: "y", Stock: 1}))
		mock.RegisterResponder(http.MethodPost, baseURL+"/compras",
			httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, models.Message{Message: "Quantidade inválida"}))

		c, _ := Default().Get("CT-API-024")
		err := c.Run(ctx, env)

		var ee *ExpectationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "purchase above stock", ee.Step)
		assert.Contains(t, ee.Expected, models.MsgInsufficientStock)
	})

	t.Run("inconsistent statistics", func(t *testing.T) {
		env, mock := newEnv(t)
		mock.RegisterResponder(http.MethodGet, baseURL+"/estatisticas",
			httpmock.NewJsonResponderOrPanic(http.StatusOK, models.Statistics{
				TotalUsers:  10,
				UsersByType: models.UsersByType{Students: 5, Employees: 2, Admins: 1},
			}))

		c, _ := Default().Get("CT-API-005")
		err := c.Run(ctx, env)

		var ee *ExpectationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "8", ee.Actual)
	})

	t.Run("approval that does not touch stock", func(t *testing.T) {
		env, mock := newEnv(t)
		mock.RegisterResponder(http.MethodGet, baseURL+"/livros/26",
			httpmock.NewJsonResponderOrPanic(http.StatusOK, models.Book{ID: 26, Name: "x", Author: "y", Stock: 3}))
		mock.RegisterResponder(http.MethodPost, baseURL+"/arrendamentos",
			httpmock.NewJsonResponderOrPanic(http.StatusCreated, models.Rental{ID: 9, UserID: 3, BookID: 26, Status: models.RentalPending}))
		mock.RegisterResponder(http.MethodPut, baseURL+"/arrendamentos/9/status",
			httpmock.NewJsonResponderOrPanic(http.StatusOK, models.Rental{ID: 9, Status: models.RentalApproved}))

		c, _ := Default().Get("CT-API-020")
		err := c.Run(ctx, env)

		var ee *ExpectationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "stock after status update", ee.Step)
		assert.Equal(t, "3", ee.Actual)
	})

	t.Run("missing fixture book", func(t *testing.T) {
		env, mock := newEnv(t)
		mock.RegisterResponder(http.MethodGet, baseURL+"/livros/15",
			httpmock.NewJsonResponderOrPanic(http.StatusNotFound, models.Message{Message: models.MsgBookNotFound}))

		c, _ := Default().Get("CT-API-019")
		err := c.Run(ctx, env)

		var pe *fixtures.PreconditionError
		require.ErrorAs(t, err, &pe)
		var ee *ExpectationError
		assert.False(t, errors.As(err, &ee))
	})

	t.Run("transport failure", func(t *testing.T) {
		env, mock := newEnv(t)
		mock.RegisterResponder(http.MethodGet, baseURL+"/estatisticas",
			httpmock.NewErrorResponder(errors.New("connection refused")))

		c, _ := Default().Get("CT-API-005")
		assert.True(t, client.IsNetworkError(c.Run(ctx, env)))
	})
}

func TestMinimalBodiesPass(t *testing.T) {
	const baseURL = "http://library.test"
	ctx := context.Background()

	newEnv := func(t *testing.T) (*Env, *httpmock.MockTransport) {
		mock := httpmock.NewMockTransport()
		env, err := NewEnv(testConfig(t), client.New(client.Config{BaseURL: baseURL, Transport: mock}), logger.Discard())
		require.NoError(t, err)
		return env, mock
	}

	t.Run("purchase without id", func(t *testing.T) {
		env, mock := newEnv(t)
		mock.RegisterResponder(http.MethodGet, baseURL+"/livros/3",
			httpmock.NewStringResponder(http.StatusOK, `{"id":3,"nome":"x","autor":"y","estoque":10,"preco":57}`))
		mock.RegisterResponder(http.MethodPost, baseURL+"/compras",
			httpmock.NewStringResponder(http.StatusCreated, `{"status":"PENDENTE","total":114}`))

		c, _ := Default().Get("CT-API-023")
		require.NoError(t, c.Run(ctx, env))
	})

	t.Run("registration with id only", func(t *testing.T) {
		env, mock := newEnv(t)
		mock.RegisterResponder(http.MethodPost, baseURL+"/registro",
			httpmock.NewStringResponder(http.StatusCreated, `{"usuario":{"id":42}}`))

		c, _ := Default().Get("CT-API-004")
		require.NoError(t, c.Run(ctx, env))
	})

	t.Run("rental list with terminal states", func(t *testing.T) {
		env, mock := newEnv(t)
		mock.RegisterResponder(http.MethodGet, baseURL+"/arrendamentos/me",
			httpmock.NewStringResponder(http.StatusOK, `[
				{"id":1,"usuarioId":3,"livroId":15,"status":"CANCELADO"},
				{"id":2,"usuarioId":3,"livroId":26,"status":"FINALIZADO"}
			]`))

		c, _ := Default().Get("CT-API-022")
		require.NoError(t, c.Run(ctx, env))
	})

	t.Run("date-only registration date", func(t *testing.T) {
		env, mock := newEnv(t)
		mock.RegisterResponder(http.MethodGet, baseURL+"/livros/15",
			httpmock.NewStringResponder(http.StatusOK, `{"id":15,"nome":"x","autor":"y","estoque":5,"dataCadastro":"2025-01-15"}`))
		mock.RegisterResponder(http.MethodPost, baseURL+"/arrendamentos",
			httpmock.NewStringResponder(http.StatusCreated, `{"id":7,"usuarioId":3,"livroId":15,"status":"PENDENTE","criadoEm":"2025-01-15"}`))

		c, _ := Default().Get("CT-API-018")
		require.NoError(t, c.Run(ctx, env))
	})
}

func TestApprovalMeasuredFromCreatedRental(t *testing.T) {
	const baseURL = "http://library.test"
	mock := httpmock.NewMockTransport()
	env, err := NewEnv(testConfig(t), client.New(client.Config{BaseURL: baseURL, Transport: mock}), logger.Discard())
	require.NoError(t, err)

	// the deployment reserves one copy on create and another on approval
	stock := 3
	mock.RegisterResponder(http.MethodGet, baseURL+"/livros/26",
		func(*http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(http.StatusOK, models.Book{ID: 26, Name: "x", Author: "y", Stock: stock})
		})
	mock.RegisterResponder(http.MethodPost, baseURL+"/arrendamentos",
		func(*http.Request) (*http.Response, error) {
			stock--
			return httpmock.NewJsonResponse(http.StatusCreated, models.Rental{ID: 9, UserID: 3, BookID: 26, Status: models.RentalPending})
		})
	mock.RegisterResponder(http.MethodPut, baseURL+"/arrendamentos/9/status",
		func(*http.Request) (*http.Response, error) {
			stock--
			return httpmock.NewJsonResponse(http.StatusOK, models.Rental{ID: 9, Status: models.RentalApproved})
		})

	c, _ := Default().Get("CT-API-020")
	require.NoError(t, c.Run(context.Background(), env))
	assert.Equal(t, 1, stock)
}
