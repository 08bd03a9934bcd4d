package agg

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/hydrolab/hmpi/schema"
)

// ThresholdViolations lists every metal whose reading is above its permissible limit as
// "<metal>: <value> <unit> (limit: <limit> <unit>)", sorted by symbol.
// Metals without a valid reading or a usable limit are skipped.
func ThresholdViolations(conc schema.Concentrations, std schema.Standards, units map[string]string) []string {
	out := []string{}
	for _, symbol := range slices.Sorted(maps.Keys(conc)) {
		c := conc[symbol]
		s, ok := std[symbol]
		if !schema.ValidReading(c) || !ok || math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
			continue
		}
		if c > s {
			unit := schema.UnitFor(units, symbol)
			out = append(out, fmt.Sprintf("%s: %s %s (limit: %s %s)",
				symbol, schema.FormatConcentration(c), unit, schema.FormatConcentration(s), unit))
		}
	}
	return out
}
