package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConcentrations(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Concentrations
		wantErr bool
	}{
		{
			name:  "plain numbers",
			input: `{"Pb": 0.01, "zn": 5}`,
			want:  Concentrations{"Pb": 0.01, "Zn": 5},
		},
		{
			name:  "null and bad readings are dropped",
			input: `{"Pb": null, "Cd": "abc", "Cr": -0.2, "As": "0.02", "Hg": true, "Fe": 0}`,
			want:  Concentrations{"As": 0.02, "Fe": 0},
		},
		{
			name:  "empty object",
			input: `{}`,
			want:  Concentrations{},
		},
		{name: "array rejected", input: `[1, 2]`, wantErr: true},
		{name: "null rejected", input: `null`, wantErr: true},
		{name: "scalar rejected", input: `42`, wantErr: true},
		{name: "garbage rejected", input: `{"Pb":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConcentrations([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSamplesJSON(t *testing.T) {
	t.Run("bare concentration object", func(t *testing.T) {
		samples, err := ParseSamplesJSON([]byte(`{"Pb": 0.02, "Cd": 0.001}`))
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.Empty(t, samples[0].ID)
		assert.Equal(t, Concentrations{"Pb": 0.02, "Cd": 0.001}, samples[0].Concentrations)
	})

	t.Run("array of sample records", func(t *testing.T) {
		input := `[
			{"sample_id": "w-1", "location_name": "Well 1", "latitude": 12.5, "sampling_date": "2024-03-01",
			 "metal_concentrations": {"Pb": 0.05}},
			{"sample_id": "w-2", "concentrations": {"Fe": "0.4"}}
		]`
		samples, err := ParseSamplesJSON([]byte(input))
		require.NoError(t, err)
		require.Len(t, samples, 2)

		assert.Equal(t, "w-1", samples[0].ID)
		assert.Equal(t, "Well 1", samples[0].Location)
		require.NotNil(t, samples[0].Latitude)
		assert.Equal(t, 12.5, *samples[0].Latitude)
		require.NotNil(t, samples[0].SamplingDate)
		assert.Equal(t, "2024-03-01", samples[0].SamplingDate.Format("2006-01-02"))
		assert.Equal(t, Concentrations{"Pb": 0.05}, samples[0].Concentrations)

		assert.Equal(t, Concentrations{"Fe": 0.4}, samples[1].Concentrations)
	})

	t.Run("record with non-object concentrations", func(t *testing.T) {
		_, err := ParseSamplesJSON([]byte(`{"sample_id": "x", "metal_concentrations": [1]}`))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("bad sampling date", func(t *testing.T) {
		_, err := ParseSamplesJSON([]byte(`{"sample_id": "x", "sampling_date": "yesterday", "metal_concentrations": {}}`))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseSamplesJSON([]byte(`Pb=0.01`))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("array of scalars", func(t *testing.T) {
		_, err := ParseSamplesJSON([]byte(`[1]`))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestParseSamplesCSV(t *testing.T) {
	input := strings.Join([]string{
		"sample_id,location_name,ph_value,Pb,cd,Zn",
		"s1,River A,7.2,0.02,,5",
		"s2,River B,,abc,0.004,",
	}, "\n")

	samples, err := ParseSamplesCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, "s1", samples[0].ID)
	assert.Equal(t, "River A", samples[0].Location)
	require.NotNil(t, samples[0].PH)
	assert.Equal(t, 7.2, *samples[0].PH)
	assert.Equal(t, Concentrations{"Pb": 0.02, "Zn": 5}, samples[0].Concentrations)

	assert.Nil(t, samples[1].PH)
	assert.Equal(t, Concentrations{"Cd": 0.004}, samples[1].Concentrations)
}

func TestParseSamplesCSV_Errors(t *testing.T) {
	_, err := ParseSamplesCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseSamplesCSV(strings.NewReader("sample_id,latitude\ns1,north"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
