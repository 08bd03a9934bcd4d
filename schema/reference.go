package schema

import (
	"maps"
	"slices"
	"strings"
)

// Concentrations maps a metal symbol to a measured concentration in mg/L.
// An absent symbol means the metal was not measured.
type Concentrations map[string]float64

// Standards maps a metal symbol to its permissible limit in mg/L.
type Standards map[string]float64

// IdealValues maps a metal symbol to its ideal concentration in mg/L.
type IdealValues map[string]float64

// Weights maps a metal symbol to a relative importance weight.
type Weights map[string]float64

// WHO/BIS drinking water limits in mg/L.
var defaultStandards = map[string]float64{
	"Pb": 0.01,
	"Cd": 0.003,
	"Cr": 0.05,
	"As": 0.01,
	"Hg": 0.001,
	"Co": 0.05,
	"Cu": 0.05,
	"Fe": 0.3,
	"Mn": 0.1,
	"Ni": 0.02,
	"Zn": 5,
}

// MetalNames maps the default metal symbols to their element names.
var MetalNames = map[string]string{
	"Pb": "Lead",
	"Cd": "Cadmium",
	"Cr": "Chromium",
	"As": "Arsenic",
	"Hg": "Mercury",
	"Co": "Cobalt",
	"Cu": "Copper",
	"Fe": "Iron",
	"Mn": "Manganese",
	"Ni": "Nickel",
	"Zn": "Zinc",
}

// DefaultStandardType labels the built-in limits when they are persisted.
const DefaultStandardType = "WHO/BIS"

// DefaultStandards returns a fresh copy of the built-in permissible limits.
func DefaultStandards() Standards {
	return maps.Clone(defaultStandards)
}

// DefaultIdealValues returns a fresh map with a zero ideal value for every default metal.
func DefaultIdealValues() IdealValues {
	ideal := make(IdealValues, len(defaultStandards))
	for symbol := range defaultStandards {
		ideal[symbol] = 0
	}
	return ideal
}

// DefaultMetalStandards returns the built-in limits as persistable rows, sorted by symbol.
func DefaultMetalStandards() []MetalStandard {
	symbols := slices.Sorted(maps.Keys(defaultStandards))
	rows := make([]MetalStandard, 0, len(symbols))
	for _, symbol := range symbols {
		rows = append(rows, MetalStandard{
			Symbol:       symbol,
			Name:         MetalNames[symbol],
			Limit:        defaultStandards[symbol],
			Unit:         DefaultUnit,
			StandardType: DefaultStandardType,
			Version:      1,
		})
	}
	return rows
}

// CanonicalSymbol normalizes a metal symbol so "pb", "PB" and "Pb" are one key.
// Config keys pass through viper, which lowercases them.
func CanonicalSymbol(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	for symbol := range defaultStandards {
		if strings.EqualFold(symbol, s) {
			return symbol
		}
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// MetalName returns the element name for a symbol, or the symbol itself when unknown.
func MetalName(symbol string) string {
	if name, ok := MetalNames[symbol]; ok {
		return name
	}
	return symbol
}
