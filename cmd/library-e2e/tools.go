package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bookshelf-qa/library-e2e/internal/config"
	"github.com/bookshelf-qa/library-e2e/internal/factory"
	"github.com/bookshelf-qa/library-e2e/internal/history"
	"github.com/bookshelf-qa/library-e2e/internal/libstub"
	"github.com/bookshelf-qa/library-e2e/internal/logger"
)

var registerUserCmd = &cobra.Command{
	Use:   "register-user",
	Short: "Register a disposable test user and print its credentials",
	RunE:  runRegisterUser,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the library statistics and check the per-type breakdown",
	RunE:  runStats,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs and flaky cases from the history database",
	RunE:  runHistory,
}

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve the in-memory library stub",
	Long: `Stub serves a seeded, in-memory implementation of the library API and
the livros.html page, for local runs of the suite and the UI tests.`,
	RunE: runStub,
}

var (
	limitFlag  int
	windowFlag int
	addrFlag   string
)

func init() {
	historyCmd.Flags().IntVar(&limitFlag, "limit", 10, "Number of recent runs to show")
	historyCmd.Flags().IntVar(&windowFlag, "window", 0, "Runs considered for flaky detection, overrides history.flaky_window")
	stubCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address, overrides stub.addr")

	rootCmd.AddCommand(registerUserCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(stubCmd)
}

func runRegisterUser(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	suffix, err := factory.SuffixByName(a.cfg.Identity.Suffix)
	if err != nil {
		return err
	}
	users := factory.NewUserFactory(a.api,
		factory.WithSuffix(suffix),
		factory.WithDomain(a.cfg.Identity.Domain),
		factory.WithPassword(a.cfg.Identity.Password),
	)

	reg, err := users.RegisterTestUser(cmd.Context())
	if err != nil {
		return err
	}
	if !reg.Registered() {
		return fmt.Errorf("registration rejected: %s", reg.Response)
	}

	fmt.Printf("✅ Registered user %d\n", reg.UserID)
	fmt.Printf("   Name:     %s\n", reg.FullName)
	fmt.Printf("   Email:    %s\n", reg.Email)
	fmt.Printf("   Password: %s\n", reg.Password)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	stats, resp, err := a.api.Statistics.Get(cmd.Context())
	if err != nil {
		return err
	}
	if stats == nil {
		return fmt.Errorf("statistics unavailable: %s", resp)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Books\t%d\n", stats.TotalBooks)
	fmt.Fprintf(w, "Pages\t%d\n", stats.TotalPages)
	fmt.Fprintf(w, "Available books\t%d\n", stats.AvailableBooks)
	fmt.Fprintf(w, "Pending rentals\t%d\n", stats.PendingRentals)
	fmt.Fprintf(w, "Pending purchases\t%d\n", stats.PendingPurchases)
	fmt.Fprintf(w, "Users\t%d\n", stats.TotalUsers)
	fmt.Fprintf(w, "  alunos\t%d\n", stats.UsersByType.Students)
	fmt.Fprintf(w, "  funcionarios\t%d\n", stats.UsersByType.Employees)
	fmt.Fprintf(w, "  admins\t%d\n", stats.UsersByType.Admins)
	if err := w.Flush(); err != nil {
		return err
	}

	if !stats.Consistent() {
		return fmt.Errorf("users by type add up to %d, totalUsuarios is %d", stats.UsersByType.Sum(), stats.TotalUsers)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFileFlag)
	if err != nil {
		return err
	}
	logger.Initialize(cfg.Logging.Level, cfg.Logging.Format)
	if cfg.History.Path == "" {
		return fmt.Errorf("history.path is not configured")
	}
	window := cfg.History.FlakyWindow
	if windowFlag > 0 {
		window = windowFlag
	}

	ctx := cmd.Context()
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(ctx, limitFlag)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tPASSED\tFAILED\tRATE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\n", r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Passed, r.Failed, r.SuccessRate)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	flaky, err := store.Flaky(ctx, window)
	if err != nil {
		return err
	}
	if len(flaky) == 0 {
		fmt.Printf("\n✅ No flaky cases in the last %d runs\n", window)
		return nil
	}
	fmt.Printf("\n⚠️  Flaky cases in the last %d runs:\n", window)
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tSUITE\tRUNS\tPASSES\tFAILURES")
	for _, f := range flaky {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", f.CaseID, f.Suite, f.Runs, f.Passes, f.Failures)
	}
	return w.Flush()
}

func runStub(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFileFlag)
	if err != nil {
		return err
	}
	log := logger.Initialize(cfg.Logging.Level, cfg.Logging.Format)
	addr := cfg.Stub.Addr
	if addrFlag != "" {
		addr = addrFlag
	}

	srv, err := libstub.New(log)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Library stub on %s (Ctrl+C to stop)\n", addr)
	return srv.ListenAndServe(cmd.Context(), addr)
}
