package core

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/internal/iostore"
	"github.com/hydrolab/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *contract.Config {
	return &contract.Config{
		Indices:     append([]schema.IndexName(nil), schema.DefaultIndices...),
		Standards:   schema.DefaultStandards(),
		IdealValues: schema.DefaultIdealValues(),
		Units:       map[string]string{},
		Precision:   3,
		Workers:     2,
		Output:      schema.TextOut,
		FailOn:      schema.Unsuitable,
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSamples(t *testing.T) {
	t.Run("json file", func(t *testing.T) {
		path := writeTemp(t, "s.json", `[{"sample_id":"a","metal_concentrations":{"Pb":0.02}},{"Cd":0.001}]`)
		samples, err := LoadSamples(path)
		require.NoError(t, err)
		require.Len(t, samples, 2)
		assert.Equal(t, "a", samples[0].ID)
		_, err = uuid.Parse(samples[1].ID)
		assert.NoError(t, err, "missing IDs are filled with a UUID")
	})

	t.Run("csv file", func(t *testing.T) {
		path := writeTemp(t, "s.csv", "sample_id,Pb,cd\nw1,0.02,0.001\n")
		samples, err := LoadSamples(path)
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.Equal(t, schema.Concentrations{"Pb": 0.02, "Cd": 0.001}, samples[0].Concentrations)
	})

	t.Run("csv sniffed without extension", func(t *testing.T) {
		path := writeTemp(t, "samples", "sample_id,Zn\nw2,1\n")
		samples, err := LoadSamples(path)
		require.NoError(t, err)
		assert.Equal(t, "w2", samples[0].ID)
	})

	t.Run("stdin", func(t *testing.T) {
		old := stdin
		stdin = strings.NewReader(`{"Pb": 0.005}`)
		defer func() { stdin = old }()

		samples, err := LoadSamples("-")
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.InDelta(t, 0.005, samples[0].Concentrations["Pb"], 1e-12)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := LoadSamples(writeTemp(t, "bad.json", `"nope"`))
		assert.ErrorIs(t, err, schema.ErrInvalidInput)

		_, err = LoadSamples(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)

		_, err = LoadSamples(writeTemp(t, "empty.json", `[]`))
		assert.ErrorIs(t, err, schema.ErrInvalidInput)
	})
}

func TestSelectSample(t *testing.T) {
	samples := []schema.Sample{{ID: "a"}, {ID: "b"}}

	s, err := selectSample(samples, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", s.ID)

	_, err = selectSample(samples, "c")
	assert.Error(t, err)

	_, err = selectSample(samples, "")
	assert.Error(t, err, "several samples need an explicit ID")

	s, err = selectSample(samples[:1], "")
	require.NoError(t, err)
	assert.Equal(t, "a", s.ID)
}

func TestParseRequestIndices(t *testing.T) {
	got, err := parseRequestIndices([]string{"pli", "HPI", "hpi"})
	require.NoError(t, err)
	assert.Equal(t, []schema.IndexName{schema.HPIIndex, schema.PLIIndex}, got)

	_, err = parseRequestIndices([]string{"XYZ"})
	assert.ErrorIs(t, err, schema.ErrUnknownIndex)
}

func TestResolveParams_NoStore(t *testing.T) {
	r, err := resolveParams(testConfig(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultStandards(), r.Params.Standards)
	assert.Nil(t, r.Params.Weights)
	assert.Empty(t, r.SchemeName)
	assert.Equal(t, 1, r.StandardsVersion)

	_, err = resolveParams(testConfig(), nil, "lab")
	assert.Error(t, err, "a named scheme needs a store")
}

func TestResolveParams_WithStore(t *testing.T) {
	store := &iostore.MockRunStore{}
	store.On("GetStandards").Return([]schema.MetalStandard{
		{Symbol: "Pb", Limit: 0.02, Unit: "mg/L", Version: 3},
		{Symbol: "Cd", Limit: 0.003, Unit: "ug/L", Version: 1},
	}, nil)
	store.On("GetScheme", "").Return(schema.WeightingScheme{Name: "lab", Weights: schema.Weights{"Pb": 5}}, true, nil)

	cfg := testConfig()
	cfg.StandardOverrides = schema.Standards{"Cd": 0.005}
	cfg.Units = map[string]string{"Cd": "mg/L"}

	r, err := resolveParams(cfg, store, "")
	require.NoError(t, err)
	assert.Equal(t, schema.Standards{"Pb": 0.02, "Cd": 0.005}, r.Params.Standards)
	assert.Equal(t, "mg/L", r.Params.Units["Cd"], "config units win over stored units")
	assert.Equal(t, "lab", r.SchemeName)
	assert.Equal(t, schema.Weights{"Pb": 5}, r.Params.Weights)
	assert.Equal(t, 3, r.StandardsVersion)
	store.AssertExpectations(t)
}

func TestResolveScheme(t *testing.T) {
	store := &iostore.MockRunStore{}
	store.On("GetScheme", "missing").Return(schema.WeightingScheme{}, false, nil)
	store.On("GetScheme", "toxic").Return(schema.WeightingScheme{Name: "toxic", Weights: schema.Weights{"As": 1}}, true, nil)
	store.On("GetScheme", "").Return(schema.WeightingScheme{}, false, nil)

	_, err := resolveScheme(testConfig(), store, "missing")
	assert.ErrorIs(t, err, schema.ErrInvalidInput)

	s, err := resolveScheme(testConfig(), store, "toxic")
	require.NoError(t, err)
	assert.Equal(t, "toxic", s.Name)

	cfg := testConfig()
	cfg.Weights = schema.Weights{"Pb": 2}
	s, err = resolveScheme(cfg, store, "")
	require.NoError(t, err)
	assert.Equal(t, "config", s.Name)

	s, err = resolveScheme(testConfig(), store, "")
	require.NoError(t, err)
	assert.Nil(t, s.Weights, "no default scheme falls back to 1/Si")
}

func TestCalculateBatch(t *testing.T) {
	samples := []schema.Sample{
		{ID: "clean", Concentrations: schema.Concentrations{"Pb": 0.001}},
		{ID: "dirty", Concentrations: schema.Concentrations{"Pb": 0.05}},
		{ID: "empty", Concentrations: schema.Concentrations{}},
	}
	r, err := resolveParams(testConfig(), nil, "")
	require.NoError(t, err)

	results, err := calculateBatch(context.Background(), samples, r.Params, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, s := range samples {
		assert.Equal(t, s.ID, results[i].SampleID, "results keep input order")
	}
	assert.Equal(t, schema.Excellent, results[0].Classification)
	assert.Equal(t, schema.Unsuitable, results[1].Classification)
	assert.Equal(t, schema.InsufficientData, results[2].Classification)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = calculateBatch(ctx, samples, r.Params, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateCheck(t *testing.T) {
	results := []schema.SampleResult{
		{SampleID: "a", Overall: schema.Good},
		{SampleID: "b", Overall: schema.Poor, Violations: []string{"x"}},
		{SampleID: "c", Overall: schema.Unsuitable},
	}

	r := evaluateCheck(results, schema.Poor)
	assert.False(t, r.passed())
	require.Len(t, r.Failures, 2)
	assert.Equal(t, "b", r.Failures[0].SampleID)
	assert.True(t, math.IsNaN(r.Failures[0].HPI))

	r = evaluateCheck(results[:2], schema.Unsuitable)
	assert.True(t, r.passed())

	r = evaluateCheck(results, "")
	assert.Equal(t, schema.Unsuitable, r.FailOn, "an unset threshold means unsuitable")
	assert.Len(t, r.Failures, 1)
}

func TestPrintCheckResult(t *testing.T) {
	var buf strings.Builder
	failing := evaluateCheck([]schema.SampleResult{{SampleID: "c", Overall: schema.Unsuitable}}, schema.Poor)
	printCheckResult(&buf, failing, testConfig(), 0)
	assert.Contains(t, buf.String(), "Policy check failed: 1 of 1 samples")
	assert.Contains(t, buf.String(), "c: Unsuitable (HPI N/A, 0 violation(s))")

	buf.Reset()
	passing := evaluateCheck([]schema.SampleResult{{SampleID: "a", Overall: schema.Good}}, schema.Poor)
	printCheckResult(&buf, passing, testConfig(), 0)
	assert.Contains(t, buf.String(), "All samples passed")
	assert.Contains(t, buf.String(), "  Good: 1")
}

func newStoreManager(t *testing.T) (*iostore.MockStoreManager, contract.RunStore) {
	t.Helper()
	store, err := iostore.NewRunStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)
	return mgr, store
}

func TestCalculate_RecordsAndReloadsRun(t *testing.T) {
	mgr, store := newStoreManager(t)

	req := CalculateRequest{
		SampleID:       "well-7",
		Concentrations: schema.Concentrations{"pb": 0.02, "Zn": 1, "U": 0.4},
		Indices:        []string{"HPI", "SI", "PLI"},
	}
	resp, err := Calculate(context.Background(), req, testConfig(), mgr)
	require.NoError(t, err)
	assert.Greater(t, resp.RunID, int64(0))
	assert.Equal(t, "well-7", resp.SampleID)
	assert.Equal(t, schema.Unsuitable, resp.Classification)
	assert.NotEmpty(t, resp.IntermediateValues)
	assert.Len(t, resp.ThresholdViolations, 1)

	detail, err := LoadRunDetail(store, resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, "well-7", detail.Sample.ID)
	assert.Equal(t, schema.Concentrations{"Pb": 0.02, "Zn": 1, "U": 0.4}, detail.Sample.Concentrations)
	assert.Equal(t, resp.ThresholdViolations, detail.Result.Violations)
	assert.Equal(t, resp.OverallClassification, detail.Result.Overall)
	assert.InDelta(t, 0.01, detail.Standards["Pb"], 1e-12)

	require.Len(t, detail.Result.Indices, len(resp.Results))
	for i, want := range resp.Results {
		got := detail.Result.Indices[i]
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Metal, got.Metal)
		assert.Equal(t, want.Classification, got.Classification)
		if want.Defined() {
			assert.InDelta(t, want.Value, got.Value, 1e-9)
		} else {
			assert.True(t, math.IsNaN(got.Value))
		}
	}
}

func TestCalculate_Errors(t *testing.T) {
	_, err := Calculate(context.Background(), CalculateRequest{SampleID: "x"}, testConfig(), nil)
	assert.ErrorIs(t, err, schema.ErrInvalidInput)

	req := CalculateRequest{Concentrations: schema.Concentrations{"Pb": 0.01}, Indices: []string{"bogus"}}
	_, err = Calculate(context.Background(), req, testConfig(), nil)
	assert.ErrorIs(t, err, schema.ErrUnknownIndex)
}

func TestCalculate_WithoutStoreAssignsID(t *testing.T) {
	resp, err := Calculate(context.Background(), CalculateRequest{Concentrations: schema.Concentrations{"Pb": 0.01}}, testConfig(), nil)
	require.NoError(t, err)
	assert.Zero(t, resp.RunID)
	_, err = uuid.Parse(resp.SampleID)
	assert.NoError(t, err)
}

func TestRecordRun_StoreError(t *testing.T) {
	store := &iostore.MockRunStore{}
	store.On("RecordRun", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

	r, err := resolveParams(testConfig(), nil, "")
	require.NoError(t, err)
	sample := schema.Sample{ID: "s", Concentrations: schema.Concentrations{"Pb": 0.01}}
	_, err = recordRun(context.Background(), store, sample, calculateSample(sample, r.Params), r)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuildRunRecords(t *testing.T) {
	r, err := resolveParams(testConfig(), nil, "")
	require.NoError(t, err)
	sample := schema.Sample{ID: "s", Name: "Spring", Concentrations: schema.Concentrations{"Pb": 0.001}}
	result := calculateSample(sample, r.Params)

	run, rows, err := buildRunRecords(sample, result, r, testTime)
	require.NoError(t, err)
	assert.Equal(t, "s", run.SampleID)
	require.NotNil(t, run.SampleName)
	assert.Equal(t, "Spring", *run.SampleName)
	assert.Nil(t, run.Location)
	assert.Nil(t, run.Scheme)
	assert.Equal(t, "[]", run.Violations)
	assert.JSONEq(t, `{"Pb":0.001}`, run.Concentrations)
	assert.Len(t, rows, len(result.Indices))
	for _, row := range rows {
		if row.IndexName == string(schema.PLIIndex) {
			assert.NotNil(t, row.Value)
		}
	}
}

func TestExecuteStoreCommandsRequireStore(t *testing.T) {
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(nil)
	ctx := context.Background()

	assert.Error(t, ExecuteReport(ctx, testConfig(), mgr, 1))
	assert.Error(t, ExecuteRunsList(ctx, testConfig(), mgr))
	assert.Error(t, ExecuteSchemesList(ctx, testConfig(), mgr))
	assert.Error(t, ExecuteSetDefaultScheme(ctx, testConfig(), mgr, "x"))
}

func TestExecuteReport(t *testing.T) {
	mgr, _ := newStoreManager(t)
	resp, err := Calculate(context.Background(), CalculateRequest{SampleID: "r1", Concentrations: schema.Concentrations{"As": 0.05}}, testConfig(), mgr)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.ReportFormat = schema.CSVReport
	cfg.OutputFile = filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, ExecuteReport(context.Background(), cfg, mgr, resp.RunID))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "As,0.05,mg/L,0.01,EXCEEDED")

	assert.ErrorIs(t, ExecuteReport(context.Background(), cfg, mgr, 999), iostore.ErrNotFound)
}

func TestSchemeImportAndDefault(t *testing.T) {
	mgr, store := newStoreManager(t)
	ctx := context.Background()
	path := writeTemp(t, "scheme.yaml", "name: toxicity\ndescription: weight the toxic metals\nweights:\n  pb: 5\n  AS: 5\n  zn: 1\n")

	require.NoError(t, ExecuteImportScheme(ctx, testConfig(), mgr, path, ""))
	require.NoError(t, ExecuteSetDefaultScheme(ctx, testConfig(), mgr, "toxicity"))

	scheme, ok, err := store.GetScheme("")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "toxicity", scheme.Name)
	assert.Equal(t, schema.Weights{"Pb": 5, "As": 5, "Zn": 1}, scheme.Weights)

	r, err := resolveParams(testConfig(), store, "")
	require.NoError(t, err)
	assert.Equal(t, "toxicity", r.SchemeName)

	assert.Error(t, ExecuteSetDefaultScheme(ctx, testConfig(), mgr, "missing"))
}

func TestReadSchemeFile_Errors(t *testing.T) {
	_, err := ReadSchemeFile(writeTemp(t, "noname.yaml", "weights:\n  pb: 1\n"))
	assert.ErrorIs(t, err, schema.ErrInvalidInput)

	_, err = ReadSchemeFile(writeTemp(t, "noweights.yaml", "name: x\n"))
	assert.ErrorIs(t, err, schema.ErrInvalidInput)

	_, err = ReadSchemeFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStandardsImport(t *testing.T) {
	mgr, _ := newStoreManager(t)
	path := writeTemp(t, "standards.yaml", "standard-type: EPA\nversion: 2\nstandards:\n  pb: 0.015\n  u: 0.03\n")

	rows, err := ReadStandardsFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Pb", rows[0].Symbol)
	assert.Equal(t, "EPA", rows[0].StandardType)
	assert.Equal(t, "U", rows[1].Symbol)

	require.NoError(t, ExecuteImportStandards(context.Background(), testConfig(), mgr, path))

	view, err := StandardsView(testConfig(), mgr, "")
	require.NoError(t, err)
	limits := make(map[string]float64)
	for _, m := range view.Metals {
		limits[m.Symbol] = m.Limit
	}
	assert.InDelta(t, 0.015, limits["Pb"], 1e-12)
	assert.InDelta(t, 0.03, limits["U"], 1e-12)
	assert.Len(t, view.Indices, len(schema.AllIndices))
}

func TestStandardsImport_NextVersion(t *testing.T) {
	mgr, store := newStoreManager(t)
	path := writeTemp(t, "standards.yaml", "standards:\n  Pb: 0.005\n")

	require.NoError(t, ExecuteImportStandards(context.Background(), testConfig(), mgr, path))

	rows, err := store.GetStandards()
	require.NoError(t, err)
	for _, row := range rows {
		if row.Symbol == "Pb" {
			assert.Equal(t, 2, row.Version)
			assert.Equal(t, "custom", row.StandardType)
			assert.InDelta(t, 0.005, row.Limit, 1e-12)
		}
	}
}

func TestStandardsView_WeightsAndReference(t *testing.T) {
	cfg := testConfig()
	cfg.Weights = schema.Weights{"Pb": 3}
	cfg.Reference = schema.Standards{"Pb": 0.002}

	view, err := StandardsView(cfg, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "config", view.Scheme)
	for _, m := range view.Metals {
		if m.Symbol != "Pb" {
			assert.Nil(t, m.Weight)
			continue
		}
		require.NotNil(t, m.Weight)
		assert.InDelta(t, 3.0, *m.Weight, 1e-12)
		require.NotNil(t, m.Reference)
		assert.Equal(t, "Lead", m.Name)
	}
}
