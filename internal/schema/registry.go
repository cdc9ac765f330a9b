// Package schema checks response bodies against JSON-schema contracts.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Kind names a response contract.
type Kind string

const (
	KindBook         Kind = "book"
	KindBookList     Kind = "book-list"
	KindFavoriteList Kind = "favorite-list"
	KindRental       Kind = "rental"
	KindRentalList   Kind = "rental-list"
	KindPurchase     Kind = "purchase"
	KindStatistics   Kind = "statistics"
	KindMessage      Kind = "message"
	KindRegistered   Kind = "registered"
)

// Violation is one failed constraint.
type Violation struct {
	Field       string
	Description string
	Type        string
}

// Result is the outcome of validating a document.
type Result struct {
	Valid      bool
	Violations []Violation
}

// Error renders violations for a failure message.
func (r *Result) Error() string {
	parts := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		parts = append(parts, v.Field+": "+v.Description)
	}
	return strings.Join(parts, "; ")
}

// Registry holds compiled contracts by kind.
type Registry struct {
	mu      sync.RWMutex
	schemas map[Kind]*gojsonschema.Schema
}

// NewRegistry returns a registry with the built-in contracts.
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[Kind]*gojsonschema.Schema)}
	for kind, doc := range builtin() {
		if err := r.Register(kind, doc); err != nil {
			panic(fmt.Sprintf("schema %s: %v", kind, err))
		}
	}
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns a shared registry with the built-in contracts.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register compiles and stores a schema document.
func (r *Registry) Register(kind Kind, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[kind] = compiled
	return nil
}

// Validate checks a raw JSON body against the contract for kind.
func (r *Registry) Validate(kind Kind, body []byte) (*Result, error) {
	r.mu.RLock()
	compiled, ok := r.schemas[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no schema registered for kind: %s", kind)
	}

	res, err := compiled.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &Result{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Violations = append(out.Violations, Violation{
			Field:       e.Field(),
			Description: e.Description(),
			Type:        e.Type(),
		})
	}
	return out, nil
}

// Check is Validate folded into a single error.
func (r *Registry) Check(kind Kind, body []byte) error {
	res, err := r.Validate(kind, body)
	if err != nil {
		return err
	}
	if !res.Valid {
		return fmt.Errorf("%s contract: %s", kind, res.Error())
	}
	return nil
}
