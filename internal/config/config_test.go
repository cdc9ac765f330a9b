package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "/livros.html", cfg.Browser.BooksPath)

	assert.Equal(t, 15, cfg.Fixtures.RentalBookID)
	assert.Equal(t, 26, cfg.Fixtures.ApprovalBookID)
	assert.Equal(t, 3, cfg.Fixtures.PurchaseBookID)
	assert.Equal(t, 4, cfg.Fixtures.ShortStockBookID)
	assert.Equal(t, 20, cfg.Fixtures.FavoriteBookID)
	assert.Equal(t, 3, cfg.Fixtures.RentalUserID)
	assert.Equal(t, 1, cfg.Fixtures.FavoriteUserID)

	assert.Equal(t, "2025-12-20", cfg.Rental.StartDate)
	assert.Equal(t, "2025-12-27", cfg.Rental.EndDate)
	assert.Equal(t, "random", cfg.Identity.Suffix)
	assert.Equal(t, "123456", cfg.Identity.Password)
	assert.Equal(t, []string{"json"}, cfg.Report.Formats)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Run("prefixed variables", func(t *testing.T) {
		t.Setenv("LIBRARY_E2E_FIXTURES_RENTAL_BOOK_ID", "99")
		t.Setenv("LIBRARY_E2E_IDENTITY_SUFFIX", "uuid")
		t.Setenv("LIBRARY_E2E_RUNNER_PARALLEL", "4")
		t.Setenv("LIBRARY_E2E_API_TIMEOUT", "5s")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 99, cfg.Fixtures.RentalBookID)
		assert.Equal(t, "uuid", cfg.Identity.Suffix)
		assert.Equal(t, 4, cfg.Runner.Parallel)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	})

	t.Run("legacy unprefixed variables", func(t *testing.T) {
		t.Setenv("BASE_URL", "http://library.internal:8080/")
		t.Setenv("HEADLESS", "false")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "http://library.internal:8080", cfg.API.BaseURL)
		assert.False(t, cfg.Browser.Headless)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("Load valid YAML config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "e2e.yaml")

		configContent := `
api:
  base_url: http://staging.library.test
fixtures:
  favorite_book_id: 0
rental:
  dynamic: true
  length_days: 3
  holidays:
    - name: Natal
      month: 12
      day: 25
report:
  formats: [json, xlsx, html]
`
		require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

		cfg, err := Load(configFile)
		require.NoError(t, err)
		assert.Equal(t, "http://staging.library.test", cfg.API.BaseURL)
		assert.Equal(t, 0, cfg.Fixtures.FavoriteBookID)
		assert.True(t, cfg.Rental.Dynamic)
		require.Len(t, cfg.Rental.Holidays, 1)
		assert.Equal(t, "Natal", cfg.Rental.Holidays[0].Name)
		assert.Equal(t, []string{"json", "xlsx", "html"}, cfg.Report.Formats)
	})

	t.Run("Error on non-existent file", func(t *testing.T) {
		_, err := Load("/non/existent/e2e.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("Error on invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "invalid.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("api:\n  base_url: [broken\n"), 0644))

		_, err := Load(configFile)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		message string
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url cannot be empty"},
		{"base url without host", func(c *Config) { c.API.BaseURL = "/livros" }, "must include a host"},
		{"bad suffix mode", func(c *Config) { c.Identity.Suffix = "counter" }, "identity.suffix"},
		{"domain with at sign", func(c *Config) { c.Identity.Domain = "a@b.com" }, "identity.domain"},
		{"reversed rental window", func(c *Config) { c.Rental.EndDate = "2025-12-01" }, "before rental.start_date"},
		{"bad rental date", func(c *Config) { c.Rental.StartDate = "20/12/2025" }, "rental.start_date"},
		{"restock below purchase", func(c *Config) { c.Fixtures.PurchaseRestock = 1 }, "must cover purchase_quantity"},
		{"unknown report format", func(c *Config) { c.Report.Formats = []string{"pdf"} }, "unknown format"},
		{"zero parallel", func(c *Config) { c.Runner.Parallel = 0 }, "runner.parallel"},
		{"bad holiday", func(c *Config) { c.Rental.Holidays = []HolidayConfig{{Name: "x", Month: 13, Day: 1}} }, "rental.holidays"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}

	t.Run("dynamic window ignores fixed dates", func(t *testing.T) {
		cfg := valid(t)
		cfg.Rental.Dynamic = true
		cfg.Rental.StartDate = "garbage"
		assert.NoError(t, cfg.Validate())
	})
}

func TestReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.True(t, Reachable(server.URL))
	assert.Equal(t, server.URL, DetectReachableBaseURL(server.URL))
	assert.False(t, Reachable("http://127.0.0.1:1"))
	assert.False(t, Reachable("::not a url"))
}
