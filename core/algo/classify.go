package algo

import "github.com/hydrolab/hmpi/schema"

// ClassifyHPI maps an HPI value to its band: <25 Excellent, [25,50) Good, [50,75) Poor,
// [75,100) Very Poor, >=100 Unsuitable. NaN and infinities are Insufficient Data.
func ClassifyHPI(v float64) schema.Category {
	return schema.GetBands(schema.HPIIndex).Lookup(v)
}

// Classify maps a value of any index to its band.
func Classify(index schema.IndexName, v float64) schema.Category {
	return schema.GetBands(index).Lookup(v)
}

// Worst returns the most severe defined category, or Insufficient Data when none is defined.
func Worst(categories ...schema.Category) schema.Category {
	worst := schema.InsufficientData
	for _, c := range categories {
		if c.Severity() > worst.Severity() {
			worst = c
		}
	}
	return worst
}
