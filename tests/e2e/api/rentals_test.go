//go:build e2e

package api

import (
	"testing"

	"github.com/bookshelf-qa/library-e2e/internal/scenarios"
)

func TestRentals(t *testing.T) {
	runSuite(t, scenarios.SuiteRentals)
}

func TestPurchases(t *testing.T) {
	runSuite(t, scenarios.SuitePurchases)
}
