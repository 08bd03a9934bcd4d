package agg

import (
	"math"
	"testing"

	"github.com/hydrolab/hmpi/schema"
	"github.com/stretchr/testify/assert"
)

func TestThresholdViolations(t *testing.T) {
	std := schema.DefaultStandards()
	tests := []struct {
		name  string
		conc  schema.Concentrations
		units map[string]string
		want  []string
	}{
		{
			name: "above limit",
			conc: schema.Concentrations{"Pb": 0.05, "Zn": 1},
			want: []string{"Pb: 0.05 mg/L (limit: 0.01 mg/L)"},
		},
		{
			name: "sorted by symbol",
			conc: schema.Concentrations{"Zn": 7.5, "As": 0.02, "Fe": 0.31},
			want: []string{"As: 0.02 mg/L (limit: 0.01 mg/L)", "Fe: 0.31 mg/L (limit: 0.3 mg/L)", "Zn: 7.5 mg/L (limit: 5 mg/L)"},
		},
		{
			name:  "custom unit",
			conc:  schema.Concentrations{"Hg": 0.002},
			units: map[string]string{"Hg": "ppm"},
			want:  []string{"Hg: 0.002 ppm (limit: 0.001 ppm)"},
		},
		{
			name: "equal to limit is not a violation",
			conc: schema.Concentrations{"Cd": 0.003},
			want: []string{},
		},
		{
			name: "invalid readings and unknown metals are skipped",
			conc: schema.Concentrations{"Pb": math.NaN(), "Cd": -1, "Xx": 100},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThresholdViolations(tt.conc, std, tt.units))
		})
	}
}
