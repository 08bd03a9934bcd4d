package algo

import (
	"cmp"
	"math"
	"slices"

	"github.com/hydrolab/hmpi/schema"
)

// RankSamples sorts results by overall severity, then HPI, both descending,
// and returns the top 'limit' results. Undefined HPI values sort last within a category.
// A non-positive limit keeps every result.
func RankSamples(results []schema.SampleResult, limit int) []schema.SampleResult {
	slices.SortStableFunc(results, func(a, b schema.SampleResult) int {
		if c := cmp.Compare(b.Overall.Severity(), a.Overall.Severity()); c != 0 {
			return c
		}
		return cmp.Compare(hpiKey(b), hpiKey(a))
	})
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

func hpiKey(r schema.SampleResult) float64 {
	v := r.Value(schema.HPIIndex)
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}
