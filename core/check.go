package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
)

// checkFailure is one sample at or above the fail-on category.
type checkFailure struct {
	SampleID   string
	Overall    schema.Category
	HPI        float64
	Violations []string
}

// checkResult is the outcome of a policy check over a batch.
type checkResult struct {
	FailOn   schema.Category
	Total    int
	Failures []checkFailure
	Summary  schema.BatchSummary
}

func (r checkResult) passed() bool {
	return len(r.Failures) == 0
}

// ExecuteCheck runs the check command for CI/CD gating.
// It calculates every sample and exits with a non-zero code if any sample's overall
// classification is at or above the fail-on category.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	samples, err := LoadSamples(cfg.InputPath)
	if err != nil {
		return err
	}
	// Runs are not recorded for checks
	resolved, err := resolveParams(cfg, runStore(mgr), cfg.SchemeName)
	if err != nil {
		return err
	}
	results, err := calculateBatch(ctx, samples, resolved.Params, cfg.Workers)
	if err != nil {
		return err
	}

	result := evaluateCheck(results, cfg.FailOn)
	printCheckResult(os.Stdout, result, cfg, time.Since(start))
	if !result.passed() {
		fmt.Printf("%d sample(s) failed\n", len(result.Failures))
		os.Exit(1)
	}
	return nil
}

// evaluateCheck collects the samples whose overall category reaches failOn.
func evaluateCheck(results []schema.SampleResult, failOn schema.Category) checkResult {
	if !failOn.Defined() {
		failOn = schema.Unsuitable
	}
	r := checkResult{FailOn: failOn, Total: len(results), Summary: schema.Summarize(results)}
	for _, res := range results {
		if res.Overall.Severity() >= failOn.Severity() {
			r.Failures = append(r.Failures, checkFailure{
				SampleID:   res.SampleID,
				Overall:    res.Overall,
				HPI:        res.Value(schema.HPIIndex),
				Violations: res.Violations,
			})
		}
	}
	return r
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result checkResult, cfg *contract.Config, duration time.Duration) {
	_, _ = fmt.Fprintln(w, "Policy Check Results:")
	_, _ = fmt.Fprintf(w, "  Fail on: %s or worse\n", result.FailOn)
	_, _ = fmt.Fprintf(w, "Checked %d samples in %v\n\n", result.Total, duration)

	if result.passed() {
		_, _ = fmt.Fprintf(w, "✅ All samples passed policy checks\n")
		for _, c := range schema.AllCategories {
			if n := result.Summary.ByCategory[c]; n > 0 {
				_, _ = fmt.Fprintf(w, "  %s: %d\n", c, n)
			}
		}
		return
	}

	_, _ = fmt.Fprintf(w, "❌ Policy check failed: %d of %d samples\n\n", len(result.Failures), result.Total)
	maxToShow := 10
	for i, f := range result.Failures {
		if i >= maxToShow {
			_, _ = fmt.Fprintf(w, "  ... and %d more\n", len(result.Failures)-maxToShow)
			break
		}
		_, _ = fmt.Fprintf(w, "  - %s: %s (HPI %s, %d violation(s))\n",
			f.SampleID, f.Overall, contract.FormatValue(f.HPI, cfg.Precision), len(f.Violations))
	}
	_, _ = fmt.Fprintln(w)
}
