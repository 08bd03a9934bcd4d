package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *contract.Config {
	return &contract.Config{
		Precision:  3,
		Output:     schema.TextOut,
		Width:      120,
		Workers:    2,
		Indices:    []schema.IndexName{schema.HPIIndex, schema.PLIIndex, schema.SIIndex},
		RunBackend: schema.SQLiteBackend,
	}
}

func testResponse() schema.CalculateResponse {
	return schema.CalculateResponse{
		RunID:    7,
		SampleID: "well-1",
		Results: []schema.IndexValue{
			{Name: schema.HPIIndex, Value: 120.5, Classification: schema.Unsuitable, Formula: "HPI = Σ(WiQi)/ΣWi", Contributing: 2},
			{Name: schema.PLIIndex, Value: math.NaN(), Classification: schema.InsufficientData, Formula: "PLI", Contributing: 0},
			{Name: schema.SIIndex, Metal: "Pb", Value: 2, Classification: schema.Unsuitable, Formula: "SI = Ci/Si", Contributing: 1},
		},
		Classification:        schema.Unsuitable,
		OverallClassification: schema.Unsuitable,
		ThresholdViolations:   []string{"Pb exceeds standard (0.02 > 0.01 mg/L)"},
		IntermediateValues: []schema.MetalContribution{
			{Symbol: "Pb", Concentration: 0.02, Standard: 0.01, Ratio: 2, QualityRating: 200, Weight: 1, Excess: 1, Exceeds: true},
		},
	}
}

func TestWriteResultTable(t *testing.T) {
	cfg := testConfig()
	cfg.Explain = true
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeResultTable(&buf, testResponse(), cfg, fmtFloat, intFmt, time.Second))

	out := buf.String()
	assert.Contains(t, out, "Sample well-1")
	assert.Contains(t, out, "120.500")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "SI (Pb)")
	assert.Contains(t, out, "Per-metal intermediates")
	assert.Contains(t, out, "HPI classification: Unsuitable | Overall: Unsuitable")
	assert.Contains(t, out, "Pb exceeds standard")
	assert.Contains(t, out, "Recorded as run 7. Backend: sqlite")
	assert.Contains(t, out, "Calculated 3 indices")
}

func TestWriteResultTable_NoViolations(t *testing.T) {
	cfg := testConfig()
	resp := testResponse()
	resp.RunID = 0
	resp.ThresholdViolations = nil
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeResultTable(&buf, resp, cfg, fmtFloat, intFmt, time.Second))

	out := buf.String()
	assert.Contains(t, out, "No threshold violations")
	assert.NotContains(t, out, "Recorded as run")
	assert.NotContains(t, out, "Per-metal intermediates")
}

func TestWriteResultCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(3)
	var buf bytes.Buffer
	require.NoError(t, writeResultCSV(&buf, testResponse(), fmtFloat, intFmt))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"sample_id", "index", "metal", "value", "classification", "contributing", "formula"}, records[0])
	assert.Equal(t, []string{"well-1", "HPI", "", "120.500", "Unsuitable", "2", "HPI = Σ(WiQi)/ΣWi"}, records[1])
	assert.Equal(t, "N/A", records[2][3])
	assert.Equal(t, "Pb", records[3][2])
}

func testBatch() ([]schema.EnrichedSampleResult, schema.BatchSummary) {
	results := []schema.EnrichedSampleResult{
		{Rank: 1, SampleResult: schema.SampleResult{
			SampleID:       "b",
			Indices:        []schema.IndexValue{{Name: schema.HPIIndex, Value: 150}, {Name: schema.PLIIndex, Value: 2.5}},
			Classification: schema.Unsuitable,
			Overall:        schema.Unsuitable,
			Violations:     []string{"Pb exceeds", "As exceeds"},
		}},
		{Rank: 2, SampleResult: schema.SampleResult{
			SampleID:       "a",
			Indices:        []schema.IndexValue{{Name: schema.HPIIndex, Value: 10}},
			Classification: schema.Excellent,
			Overall:        schema.Good,
		}},
	}
	summary := schema.BatchSummary{
		Total:      2,
		ByCategory: map[schema.Category]int{schema.Unsuitable: 1, schema.Excellent: 1},
		Violating:  1,
	}
	return results, summary
}

func TestWriteBatchCSV(t *testing.T) {
	results, _ := testBatch()
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeBatchCSV(&buf, results, testConfig(), fmtFloat))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"rank", "sample_id", "HPI", "PLI", "classification", "overall_classification", "violations"}, records[0])
	assert.Equal(t, []string{"1", "b", "150.00", "2.50", "Unsuitable", "Unsuitable", "Pb exceeds; As exceeds"}, records[1])
	assert.Equal(t, []string{"2", "a", "10.00", "N/A", "Excellent", "Good", ""}, records[2])
}

func TestWriteBatchTable(t *testing.T) {
	results, summary := testBatch()
	cfg := testConfig()
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeBatchTable(&buf, results, summary, cfg, fmtFloat, intFmt, time.Second))

	out := buf.String()
	assert.Contains(t, out, "150.000")
	assert.Contains(t, out, "Showing 2 of 2 samples (1 with threshold violations)")
	assert.Contains(t, out, "  Excellent: 1")
	assert.Contains(t, out, "  Unsuitable: 1")
	assert.NotContains(t, out, "  Poor:")
	assert.Contains(t, out, "with 2 workers")
}

func TestBatchIndices(t *testing.T) {
	assert.Equal(t, []schema.IndexName{schema.HPIIndex, schema.PLIIndex}, batchIndices(testConfig()))
}

func TestWriteStandardsOutputs(t *testing.T) {
	weight := 2.0
	view := schema.StandardsView{
		Scheme: "lab",
		Metals: []schema.MetalReference{
			{Symbol: "Pb", Name: "Lead", Limit: 0.01, Unit: "mg/L", Weight: &weight},
		},
		Indices: []schema.IndexInfo{schema.NewIndexInfo(schema.HPIIndex)},
	}

	var buf bytes.Buffer
	require.NoError(t, writeStandardsCSV(&buf, view))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Pb", "Lead", "0.01", "mg/L", "0", "", "2"}, records[1])

	buf.Reset()
	require.NoError(t, writeStandardsTable(&buf, view, testConfig()))
	out := buf.String()
	assert.Contains(t, out, "Permissible limits (weighting scheme: lab)")
	assert.Contains(t, out, "Lead")
	assert.Contains(t, out, "Indices")
}

func TestFormatBands(t *testing.T) {
	below := 25.0
	bands := []schema.BandView{
		{Below: &below, Category: schema.Excellent},
		{Category: schema.Unsuitable},
	}
	assert.Equal(t, "<25 Excellent, else Unsuitable", formatBands(bands))
}

func TestFormatSchemeWeights(t *testing.T) {
	assert.Equal(t, "As=3, Pb=1.5", formatSchemeWeights(schema.Weights{"Pb": 1.5, "As": 3}))
	assert.Equal(t, "", formatSchemeWeights(nil))
}

func TestRunRow(t *testing.T) {
	scheme := "lab"
	run := schema.RunRecord{
		RunID:          3,
		SampleID:       "s1",
		CalculatedAt:   time.Now(),
		Scheme:         &scheme,
		Classification: string(schema.Poor),
		Overall:        string(schema.VeryPoor),
	}
	row := runRow(run, contract.GetPlainLabel)
	assert.Equal(t, "3", row[0])
	assert.Equal(t, "s1", row[1])
	assert.Equal(t, "Poor", row[3])
	assert.Equal(t, "Very Poor", row[4])
	assert.Equal(t, "lab", row[5])

	run.Scheme = nil
	assert.Equal(t, "", runRow(run, contract.GetPlainLabel)[5])
}

func TestWriteSampleResult_JSONToFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = t.TempDir() + "/result.json"

	require.NoError(t, WriteSampleResult(testResponse(), cfg, time.Second))

	var decoded map[string]any
	data := readFile(t, cfg.OutputFile)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "well-1", decoded["sampleId"])
	assert.Equal(t, float64(7), decoded["calculationRunId"])
	results := decoded["results"].([]any)
	assert.Nil(t, results[1].(map[string]any)["value"])
}

func TestWriteClassification_Text(t *testing.T) {
	cfg := testConfig()
	cfg.OutputFile = t.TempDir() + "/class.txt"
	require.NoError(t, WriteClassification(schema.HPIIndex, 42, schema.Good, cfg))
	assert.Equal(t, "HPI 42.000 → Good\n", string(readFile(t, cfg.OutputFile)))

	cfg.Output = schema.CSVOut
	require.NoError(t, WriteClassification(schema.HPIIndex, math.NaN(), schema.InsufficientData, cfg))
	assert.True(t, strings.HasSuffix(string(readFile(t, cfg.OutputFile)), "HPI,N/A,Insufficient Data\n"))
}
