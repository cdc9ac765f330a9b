// Package report collects case outcomes of a run and renders them.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Outcome values.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
)

// Failure kinds, used to tell an application deviation from a broken fixture
// or an unreachable host.
const (
	KindExpectation  = "expectation"
	KindPrecondition = "precondition"
	KindNetwork      = "network"
	KindOther        = "other"
)

// CaseResult is the outcome of one case.
type CaseResult struct {
	ID       string        `json:"id" yaml:"id"`
	Suite    string        `json:"suite" yaml:"suite"`
	Title    string        `json:"title" yaml:"title"`
	Passed   bool          `json:"passed" yaml:"passed"`
	Duration time.Duration `json:"duration_ns" yaml:"duration"`
	Kind     string        `json:"kind,omitempty" yaml:"kind,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Outcome returns OutcomePassed or OutcomeFailed.
func (r CaseResult) Outcome() string {
	if r.Passed {
		return OutcomePassed
	}
	return OutcomeFailed
}

// Report is the result of one run.
type Report struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	Timestamp   time.Time     `json:"timestamp" yaml:"timestamp"`
	Duration    time.Duration `json:"duration_ns" yaml:"duration"`
	TotalTests  int           `json:"total_tests" yaml:"total_tests"`
	Passed      int           `json:"passed" yaml:"passed"`
	Failed      int           `json:"failed" yaml:"failed"`
	SuccessRate float64       `json:"success_rate" yaml:"success_rate"`
	Results     []CaseResult  `json:"results" yaml:"results"`
}

// New starts an empty report.
func New(runID, baseURL string, started time.Time) *Report {
	return &Report{
		RunID:     runID,
		BaseURL:   baseURL,
		Timestamp: started,
		Results:   []CaseResult{},
	}
}

// Add appends a result and updates the counters.
func (r *Report) Add(res CaseResult) {
	r.Results = append(r.Results, res)
	r.TotalTests++
	if res.Passed {
		r.Passed++
	} else {
		r.Failed++
	}
	r.SuccessRate = float64(r.Passed) / float64(r.TotalTests) * 100
}

// HasFailures reports whether any case failed.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

// Failures returns only the failed results.
func (r *Report) Failures() []CaseResult {
	var out []CaseResult
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// Print writes the console summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(w, "                 LIBRARY E2E REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Run: %s\n", r.RunID)
	fmt.Fprintf(w, "Target: %s\n", r.BaseURL)
	fmt.Fprintf(w, "Timestamp: %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Total Tests: %d\n", r.TotalTests)
	fmt.Fprintf(w, "Passed: %d\n", r.Passed)
	fmt.Fprintf(w, "Failed: %d\n", r.Failed)
	fmt.Fprintf(w, "Success Rate: %.1f%%\n", r.SuccessRate)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, res := range r.Results {
		status := "✅ PASS"
		if !res.Passed {
			status = "❌ FAIL"
		}
		fmt.Fprintf(w, "%s %s [%s] %s (%s)\n", status, res.ID, res.Suite, res.Title, res.Duration.Round(time.Millisecond))
		if res.Error != "" {
			fmt.Fprintf(w, "   %s: %s\n", res.Kind, res.Error)
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	if r.Failed > 0 {
		fmt.Fprintf(w, "\n⚠️  %d case(s) failed\n", r.Failed)
	} else {
		fmt.Fprintln(w, "\n✅ All cases passed!")
	}
}
