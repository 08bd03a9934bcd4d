package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStandards(t *testing.T) {
	std := DefaultStandards()
	require.Len(t, std, 11)
	assert.Equal(t, 0.01, std["Pb"])
	assert.Equal(t, 0.003, std["Cd"])
	assert.Equal(t, 5.0, std["Zn"])

	// Each call returns an independent copy.
	std["Pb"] = 99
	assert.Equal(t, 0.01, DefaultStandards()["Pb"])
}

func TestDefaultIdealValues(t *testing.T) {
	ideal := DefaultIdealValues()
	require.Len(t, ideal, 11)
	for symbol, v := range ideal {
		assert.Zero(t, v, symbol)
	}
}

func TestDefaultMetalStandards(t *testing.T) {
	rows := DefaultMetalStandards()
	require.Len(t, rows, 11)
	assert.Equal(t, "As", rows[0].Symbol)
	assert.Equal(t, "Arsenic", rows[0].Name)
	assert.Equal(t, DefaultUnit, rows[0].Unit)
	assert.Equal(t, "Zn", rows[len(rows)-1].Symbol)
}

func TestCanonicalSymbol(t *testing.T) {
	tests := map[string]string{
		"pb":  "Pb",
		"PB":  "Pb",
		"Cd":  "Cd",
		" hg": "Hg",
		"SE":  "Se",
		"u":   "U",
		"":    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalSymbol(in), in)
	}
}

func TestBandTableLookup(t *testing.T) {
	hpi := GetBands(HPIIndex)
	tests := []struct {
		value float64
		want  Category
	}{
		{0, Excellent},
		{24.999, Excellent},
		{25.0, Good},
		{49.999, Good},
		{50.0, Poor},
		{74.999, Poor},
		{75.0, VeryPoor},
		{99.999, VeryPoor},
		{100.0, Unsuitable},
		{1e9, Unsuitable},
		{math.NaN(), InsufficientData},
		{math.Inf(1), InsufficientData},
		{math.Inf(-1), InsufficientData},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hpi.Lookup(tt.value), "value %v", tt.value)
	}
}

func TestGetBands(t *testing.T) {
	assert.Equal(t, Excellent, GetBands(PLIIndex).Lookup(0.5))
	assert.Equal(t, Poor, GetBands(PLIIndex).Lookup(2.5))
	assert.Equal(t, Excellent, GetBands(HMPIIndex).Lookup(0.29))
	assert.Equal(t, Good, GetBands(PIIndex).Lookup(0.3))
	assert.Equal(t, Unsuitable, GetBands(MIIndex).Lookup(2))
	assert.Equal(t, Good, GetBands(HCIIndex).Lookup(30))
	assert.Equal(t, Poor, GetBands(HEIIndex).Lookup(10))
	assert.Equal(t, Good, GetBands(CdIndex).Lookup(0))
	assert.Equal(t, Unsuitable, GetBands(CdIndex).Lookup(3))
	assert.Equal(t, GetBands(HPIIndex), GetBands(HPISimpleIndex))
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"excellent":  Excellent,
		"Very Poor":  VeryPoor,
		"very-poor":  VeryPoor,
		"VERY_POOR":  VeryPoor,
		"unsuitable": Unsuitable,
	} {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseCategory("terrible")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCategorySeverity(t *testing.T) {
	for i := 1; i < len(AllCategories); i++ {
		assert.Greater(t, AllCategories[i].Severity(), AllCategories[i-1].Severity())
	}
	assert.False(t, InsufficientData.Defined())
	assert.True(t, Excellent.Defined())
	assert.False(t, Category("bogus").Defined())
}

func TestFormulaCoversAllIndices(t *testing.T) {
	for _, name := range AllIndices {
		assert.NotEmpty(t, Formula(name), name)
		assert.NotEmpty(t, Description(name), name)
	}
}

func TestIndexValueJSON(t *testing.T) {
	t.Run("undefined value encodes as null", func(t *testing.T) {
		data, err := json.Marshal(IndexValue{Name: HPIIndex, Value: math.NaN(), Classification: InsufficientData})
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Contains(t, raw, "value")
		assert.Nil(t, raw["value"])
		assert.Equal(t, "HPI", raw["name"])
		assert.NotContains(t, raw, "metal")

		var back IndexValue
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, math.IsNaN(back.Value))
		assert.Equal(t, InsufficientData, back.Classification)
	})

	t.Run("defined value survives", func(t *testing.T) {
		in := IndexValue{Name: SIIndex, Metal: "Pb", Value: 1.5, Classification: Poor, Contributing: 1}
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var back IndexValue
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, in, back)
	})
}

func TestSampleResultValue(t *testing.T) {
	r := SampleResult{Indices: []IndexValue{{Name: HEIIndex, Value: 3}}}
	assert.Equal(t, 3.0, r.Value(HEIIndex))
	assert.True(t, math.IsNaN(r.Value(HPIIndex)))
}
