package schema

import (
	"fmt"
	"math"
	"strings"
)

// Category is a water quality class assigned to an index value.
type Category string

// Categories in ascending order of severity.
const (
	InsufficientData Category = "Insufficient Data"
	Excellent        Category = "Excellent"
	Good             Category = "Good"
	Poor             Category = "Poor"
	VeryPoor         Category = "Very Poor"
	Unsuitable       Category = "Unsuitable"
)

// severity orders defined categories; InsufficientData ranks below all of them.
var severity = map[Category]int{
	InsufficientData: 0,
	Excellent:        1,
	Good:             2,
	Poor:             3,
	VeryPoor:         4,
	Unsuitable:       5,
}

// AllCategories lists every category in ascending severity.
var AllCategories = []Category{InsufficientData, Excellent, Good, Poor, VeryPoor, Unsuitable}

// Severity returns the rank of the category. Unknown values rank as InsufficientData.
func (c Category) Severity() int {
	return severity[c]
}

// Defined reports whether the category reflects a computed value.
func (c Category) Defined() bool {
	return c.Severity() > 0
}

// ParseCategory matches a category name case-insensitively.
// Separators are flexible so "very-poor", "very_poor" and "Very Poor" are equal.
func ParseCategory(s string) (Category, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, c := range AllCategories {
		if strings.EqualFold(string(c), norm) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: category %q must be one of excellent, good, poor, very-poor, unsuitable", ErrInvalidInput, s)
}

// Band assigns Category to values strictly below Upper and at or above the previous band's Upper.
type Band struct {
	Upper    float64  `json:"upper"`
	Category Category `json:"category"`
}

// BandTable is an ascending list of bands whose last Upper is +Inf.
type BandTable []Band

// Lookup returns the category of a value. Non-finite values are InsufficientData.
func (t BandTable) Lookup(v float64) Category {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return InsufficientData
	}
	for _, b := range t {
		if v < b.Upper {
			return b.Category
		}
	}
	return InsufficientData
}

var (
	hpiBands = BandTable{
		{25, Excellent},
		{50, Good},
		{75, Poor},
		{100, VeryPoor},
		{math.Inf(1), Unsuitable},
	}
	ratioBands = BandTable{
		{0.3, Excellent},
		{1, Good},
		{2, Poor},
		{math.Inf(1), Unsuitable},
	}
	percentBands = BandTable{
		{30, Excellent},
		{100, Good},
		{200, Poor},
		{math.Inf(1), Unsuitable},
	}
	pliBands = BandTable{
		{1, Excellent},
		{2, Good},
		{3, Poor},
		{math.Inf(1), Unsuitable},
	}
	heiBands = BandTable{
		{10, Good},
		{20, Poor},
		{math.Inf(1), Unsuitable},
	}
	cdBands = BandTable{
		{1, Good},
		{3, Poor},
		{math.Inf(1), Unsuitable},
	}
)

// GetBands returns the classification bands for an index.
func GetBands(index IndexName) BandTable {
	switch index {
	case HPIIndex, HPISimpleIndex:
		return hpiBands
	case HCIIndex:
		return percentBands
	case PLIIndex:
		return pliBands
	case HEIIndex:
		return heiBands
	case CdIndex:
		return cdBands
	default: // HMPI, PI, SI, MI, HMI
		return ratioBands
	}
}

var formulas = map[IndexName]string{
	HPIIndex:       "HPI = Σ(Qi × Wi), Qi = |Ci − Ii| / (Si − Ii) × 100, Wi = (1/Si) / Σ(1/Si)",
	HEIIndex:       "HEI = Σ(Ci / Si)",
	HMPIIndex:      "HMPI = (1/n) × Σ(Ci / Si)",
	HCIIndex:       "HCI = (1/n) × Σ((Ci / Si) × 100)",
	PIIndex:        "PI = (1/n) × Σ(Ci / Si)",
	PLIIndex:       "PLI = (CF1 × CF2 × ... × CFn)^(1/n), CFi = Ci / Refi",
	CdIndex:        "Cd = Σ max(0, Ci / Si − 1)",
	SIIndex:        "SIi = Ci / Si",
	HPISimpleIndex: "HPI = Σ(Qi × Wi) / ΣWi, Qi = Ci / Si × 100",
	MIIndex:        "MI = (1/n) × Σ(Ci / Si)",
	HMIIndex:       "HMI = (Π(Ci / Si))^(1/n)",
}

// Formula returns the human-readable formula of an index.
func Formula(index IndexName) string {
	return formulas[index]
}

var descriptions = map[IndexName]string{
	HPIIndex:       "Weighted composite of per-metal quality ratings",
	HEIIndex:       "Unweighted sum of concentration/standard ratios",
	HMPIIndex:      "Arithmetic mean of concentration/standard ratios",
	HCIIndex:       "Mean of percentage ratios",
	PIIndex:        "Metal-count normalized mean of ratios",
	PLIIndex:       "Geometric mean of contamination factors",
	CdIndex:        "Sum of positive excess contamination factors",
	SIIndex:        "Single-metal concentration/standard ratio",
	HPISimpleIndex: "Percent-ratio HPI weighted by the active scheme",
	MIIndex:        "Mean ratio over every metal with a known standard",
	HMIIndex:       "Geometric mean of concentration/standard ratios",
}

// Description returns a one-line description of an index.
func Description(index IndexName) string {
	return descriptions[index]
}
