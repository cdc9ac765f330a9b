package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bookshelf-qa/library-e2e/internal/client"
	"github.com/bookshelf-qa/library-e2e/internal/config"
	"github.com/bookshelf-qa/library-e2e/internal/libstub"
	"github.com/bookshelf-qa/library-e2e/internal/logger"
	"github.com/bookshelf-qa/library-e2e/internal/metrics"
	"github.com/bookshelf-qa/library-e2e/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "library-e2e",
	Short: "End-to-end checks for the library application",
	Long: `library-e2e drives the library application's JSON API through its
documented scenarios (books, registration, statistics, favorites, rentals,
purchases), writes run reports and keeps a run history.`,
	Version:       version.GetInfo().String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configFileFlag string
	baseURLFlag    string
	stubFlag       bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFileFlag, "config", "", "Path to an e2e.yaml config file")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Application root, overrides api.base_url")
	rootCmd.PersistentFlags().BoolVar(&stubFlag, "stub", false, "Run against an in-process library stub")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.GetInfo()
		fmt.Printf("library-e2e %s\n", info)
		fmt.Printf("go: %s\n", info.GoVersion)
	},
}

// app is what every command needs once flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	api     *client.Client
}

// setup loads configuration, starts the stub when asked and builds the client.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configFileFlag)
	if err != nil {
		return nil, err
	}
	log := logger.Initialize(cfg.Logging.Level, cfg.Logging.Format)

	if baseURLFlag != "" {
		cfg.API.BaseURL = strings.TrimRight(baseURLFlag, "/")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if stubFlag || cfg.Stub.Enabled {
		url, err := startStub(ctx, log)
		if err != nil {
			return nil, err
		}
		cfg.API.BaseURL = url
	}

	m := metrics.New()
	api := client.New(client.Config{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		Debug:    cfg.API.Debug,
		Observer: m,
		Logger:   log,
	})
	return &app{cfg: cfg, logger: log, metrics: m, api: api}, nil
}

// startStub serves a seeded stub on an ephemeral port until ctx ends.
func startStub(ctx context.Context, log *slog.Logger) (string, error) {
	srv, err := libstub.New(log)
	if err != nil {
		return "", err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to start stub: %w", err)
	}
	go func() {
		if err := srv.Serve(ctx, ln); err != nil {
			log.Error("stub stopped", slog.String("error", err.Error()))
		}
	}()
	return "http://" + ln.Addr().String(), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
