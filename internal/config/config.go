// Package config resolves the suite configuration from defaults, an optional
// e2e.yaml file, a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override (LIBRARY_E2E_API_BASE_URL, ...).
const EnvPrefix = "LIBRARY_E2E"

var (
	cfg     *Config
	cfgErr  error
	envOnce sync.Once
	mu      sync.RWMutex
)

// Config represents the suite configuration
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Fixtures FixturesConfig `mapstructure:"fixtures"`
	Rental   RentalConfig   `mapstructure:"rental"`
	Identity IdentityConfig `mapstructure:"identity"`
	Runner   RunnerConfig   `mapstructure:"runner"`
	Report   ReportConfig   `mapstructure:"report"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Stub     StubConfig     `mapstructure:"stub"`
}

type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Autodetect bool          `mapstructure:"autodetect"`
	Debug      bool          `mapstructure:"debug"`
}

type BrowserConfig struct {
	Headless     bool          `mapstructure:"headless"`
	SlowMo       int           `mapstructure:"slow_mo"`
	Screenshots  bool          `mapstructure:"screenshots"`
	Videos       bool          `mapstructure:"videos"`
	Timeout      time.Duration `mapstructure:"timeout"`
	BooksPath    string        `mapstructure:"books_path"`
	ArtifactsDir string        `mapstructure:"artifacts_dir"`
	Preinstalled bool          `mapstructure:"preinstalled"`
}

// FixturesConfig names the shared records the API cases run against.
// A book id of 0 makes the case create its own book.
type FixturesConfig struct {
	RentalBookID       int `mapstructure:"rental_book_id"`
	ApprovalBookID     int `mapstructure:"approval_book_id"`
	PurchaseBookID     int `mapstructure:"purchase_book_id"`
	ShortStockBookID   int `mapstructure:"short_stock_book_id"`
	FavoriteBookID     int `mapstructure:"favorite_book_id"`
	RentalUserID       int `mapstructure:"rental_user_id"`
	FavoriteUserID     int `mapstructure:"favorite_user_id"`
	RentalRestock      int `mapstructure:"rental_restock"`
	PurchaseRestock    int `mapstructure:"purchase_restock"`
	PurchaseQuantity   int `mapstructure:"purchase_quantity"`
	ShortStockQuantity int `mapstructure:"short_stock_quantity"`
}

type RentalConfig struct {
	StartDate  string          `mapstructure:"start_date"`
	EndDate    string          `mapstructure:"end_date"`
	Dynamic    bool            `mapstructure:"dynamic"`
	LengthDays int             `mapstructure:"length_days"`
	Holidays   []HolidayConfig `mapstructure:"holidays"`
}

type HolidayConfig struct {
	Name  string `mapstructure:"name"`
	Month int    `mapstructure:"month"`
	Day   int    `mapstructure:"day"`
}

type IdentityConfig struct {
	Suffix   string `mapstructure:"suffix"`
	Domain   string `mapstructure:"domain"`
	Password string `mapstructure:"password"`
}

type RunnerConfig struct {
	Suites      []string      `mapstructure:"suites"`
	Parallel    int           `mapstructure:"parallel"`
	Schedule    string        `mapstructure:"schedule"`
	CaseTimeout time.Duration `mapstructure:"case_timeout"`
}

type ReportConfig struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type HistoryConfig struct {
	Path        string `mapstructure:"path"`
	FlakyWindow int    `mapstructure:"flaky_window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StubConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:3000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.autodetect", false)
	v.SetDefault("api.debug", false)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", 0)
	v.SetDefault("browser.screenshots", true)
	v.SetDefault("browser.videos", false)
	v.SetDefault("browser.timeout", 30*time.Second)
	v.SetDefault("browser.books_path", "/livros.html")
	v.SetDefault("browser.artifacts_dir", "./test-results")
	v.SetDefault("browser.preinstalled", false)

	v.SetDefault("fixtures.rental_book_id", 15)
	v.SetDefault("fixtures.approval_book_id", 26)
	v.SetDefault("fixtures.purchase_book_id", 3)
	v.SetDefault("fixtures.short_stock_book_id", 4)
	v.SetDefault("fixtures.favorite_book_id", 20)
	v.SetDefault("fixtures.rental_user_id", 3)
	v.SetDefault("fixtures.favorite_user_id", 1)
	v.SetDefault("fixtures.rental_restock", 5)
	v.SetDefault("fixtures.purchase_restock", 10)
	v.SetDefault("fixtures.purchase_quantity", 2)
	v.SetDefault("fixtures.short_stock_quantity", 5)

	v.SetDefault("rental.start_date", "2025-12-20")
	v.SetDefault("rental.end_date", "2025-12-27")
	v.SetDefault("rental.dynamic", false)
	v.SetDefault("rental.length_days", 7)
	v.SetDefault("rental.holidays", []HolidayConfig{})

	v.SetDefault("identity.suffix", "random")
	v.SetDefault("identity.domain", "teste.com")
	v.SetDefault("identity.password", "123456")

	v.SetDefault("runner.suites", []string{})
	v.SetDefault("runner.parallel", 1)
	v.SetDefault("runner.schedule", "@every 15m")
	v.SetDefault("runner.case_timeout", 60*time.Second)

	v.SetDefault("report.dir", "./test-results/reports")
	v.SetDefault("report.formats", []string{"json"})

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("history.path", "")
	v.SetDefault("history.flaky_window", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("stub.enabled", false)
	v.SetDefault("stub.addr", ":3000")
}

// bindLegacyEnv keeps the unprefixed variable names used by existing CI jobs.
func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string]string{
		"api.base_url":         "BASE_URL",
		"browser.headless":     "HEADLESS",
		"browser.slow_mo":      "SLOW_MO",
		"browser.screenshots":  "SCREENSHOTS",
		"browser.videos":       "VIDEOS",
		"browser.preinstalled": "PLAYWRIGHT_PREINSTALLED",
	}
	for key, env := range legacy {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// Load reads configuration. configFile may be empty, in which case an
// optional e2e.yaml in the working directory is used.
func Load(configFile string) (*Config, error) {
	loadDotEnv(".env")

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("e2e")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")

	if c.API.Autodetect {
		c.API.BaseURL = DetectReachableBaseURL(c.API.BaseURL)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromEnv loads the configuration once per process; test packages share it.
func FromEnv() (*Config, error) {
	envOnce.Do(func() {
		loaded, err := Load(os.Getenv(EnvPrefix + "_CONFIG"))
		mu.Lock()
		cfg, cfgErr = loaded, err
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return cfg, cfgErr
}

// loadDotEnv loads KEY=VALUE lines from path if present.
// Existing environment variables take precedence and are not overwritten.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}
