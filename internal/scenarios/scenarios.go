// Package scenarios holds the API cases of the suite as data, so the same
// registry drives both `go test` and the library-e2e runner.
package scenarios

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bookshelf-qa/library-e2e/internal/client"
	"github.com/bookshelf-qa/library-e2e/internal/config"
	"github.com/bookshelf-qa/library-e2e/internal/factory"
	"github.com/bookshelf-qa/library-e2e/internal/fixtures"
	"github.com/bookshelf-qa/library-e2e/internal/schema"
)

// Suite names.
const (
	SuiteBooks        = "books"
	SuiteRegistration = "registration"
	SuiteStatistics   = "statistics"
	SuiteFavorites    = "favorites"
	SuiteRentals      = "rentals"
	SuitePurchases    = "purchases"
)

// Case is one API test.
type Case struct {
	ID    string
	Suite string
	Title string
	Run   func(ctx context.Context, env *Env) error
}

// Name is the label used for subtests and reports.
func (c Case) Name() string {
	return c.ID + " " + c.Title
}

// Env is everything a case needs to talk to the application.
type Env struct {
	API      *client.Client
	Fixtures *fixtures.Normalizer
	Users    *factory.UserFactory
	Schemas  *schema.Registry
	Window   *fixtures.WindowPlanner
	Config   config.FixturesConfig
	Logger   *slog.Logger
}

// NewEnv builds an Env from configuration and a client.
func NewEnv(cfg *config.Config, api *client.Client, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.Default()
	}
	suffix, err := factory.SuffixByName(cfg.Identity.Suffix)
	if err != nil {
		return nil, err
	}
	return &Env{
		API:      api,
		Fixtures: fixtures.NewNormalizer(api, logger),
		Users: factory.NewUserFactory(api,
			factory.WithSuffix(suffix),
			factory.WithDomain(cfg.Identity.Domain),
			factory.WithPassword(cfg.Identity.Password),
		),
		Schemas: schema.Default(),
		Window:  fixtures.NewWindowPlanner(cfg.Rental),
		Config:  cfg.Fixtures,
		Logger:  logger,
	}, nil
}

// Registry is an ordered set of cases.
type Registry struct {
	cases []Case
	byID  map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// Register adds cases. A repeated ID replaces the earlier case.
func (r *Registry) Register(cases ...Case) {
	for _, c := range cases {
		if i, ok := r.byID[c.ID]; ok {
			r.cases[i] = c
			continue
		}
		r.byID[c.ID] = len(r.cases)
		r.cases = append(r.cases, c)
	}
}

// Get returns a case by ID.
func (r *Registry) Get(id string) (Case, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Case{}, false
	}
	return r.cases[i], true
}

// All returns every case in registration order.
func (r *Registry) All() []Case {
	return slices.Clone(r.cases)
}

// Suite returns the cases of one suite.
func (r *Registry) Suite(name string) []Case {
	var out []Case
	for _, c := range r.cases {
		if c.Suite == name {
			out = append(out, c)
		}
	}
	return out
}

// Suites lists suite names in first-seen order.
func (r *Registry) Suites() []string {
	var out []string
	for _, c := range r.cases {
		if !slices.Contains(out, c.Suite) {
			out = append(out, c.Suite)
		}
	}
	return out
}

// Select returns the cases of the named suites, or every case when names is empty.
func (r *Registry) Select(names ...string) ([]Case, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	known := r.Suites()
	var out []Case
	for _, name := range names {
		if !slices.Contains(known, name) {
			return nil, fmt.Errorf("unknown suite %q (known: %v)", name, known)
		}
		out = append(out, r.Suite(name)...)
	}
	return out, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry with every built-in case.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		r.Register(bookCases()...)
		r.Register(registrationCases()...)
		r.Register(statisticsCases()...)
		r.Register(favoriteCases()...)
		r.Register(rentalCases()...)
		r.Register(purchaseCases()...)
		defaultRegistry = r
	})
	return defaultRegistry
}

// All returns every built-in case.
func All() []Case {
	return Default().All()
}

// Suite returns the built-in cases of one suite.
func Suite(name string) []Case {
	return Default().Suite(name)
}
