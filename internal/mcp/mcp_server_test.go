package mcp_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/internal/iostore"
	mcp_internal "github.com/hydrolab/hmpi/internal/mcp"
	"github.com/hydrolab/hmpi/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		Indices:     append([]schema.IndexName(nil), schema.DefaultIndices...),
		Standards:   schema.DefaultStandards(),
		IdealValues: schema.DefaultIdealValues(),
		Units:       map[string]string{},
		Precision:   3,
		Workers:     1,
	}
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	return res.Content[0].(mcp.TextContent).Text
}

func request(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	var mgr contract.StoreManager
	s := mcp_internal.NewMCPServer(baseConfig(), mgr)
	ctx := context.Background()

	t.Run("calculate_indices missing concentrations", func(t *testing.T) {
		tool := s.GetTool("calculate_indices")
		require.NotNil(t, tool, "Tool calculate_indices should exist")

		res, err := tool.Handler(ctx, request("calculate_indices", map[string]any{}))
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "invalid concentrations")
	})

	t.Run("calculate_indices unknown index", func(t *testing.T) {
		tool := s.GetTool("calculate_indices")
		res, err := tool.Handler(ctx, request("calculate_indices", map[string]any{
			"concentrations": map[string]any{"Pb": 0.02},
			"indices":        "HPI,XYZ",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "unknown index")
	})

	t.Run("calculate_indices named scheme without store", func(t *testing.T) {
		tool := s.GetTool("calculate_indices")
		res, err := tool.Handler(ctx, request("calculate_indices", map[string]any{
			"concentrations": map[string]any{"Pb": 0.02},
			"scheme":         "toxicity",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "no run store")
	})

	t.Run("classify_index missing value", func(t *testing.T) {
		tool := s.GetTool("classify_index")
		require.NotNil(t, tool)
		res, err := tool.Handler(ctx, request("classify_index", map[string]any{}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("get_run invalid id", func(t *testing.T) {
		tool := s.GetTool("get_run")
		require.NotNil(t, tool)
		res, err := tool.Handler(ctx, request("get_run", map[string]any{"run_id": 0.0}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "run_id must be a positive integer")
	})

	t.Run("get_run without store", func(t *testing.T) {
		tool := s.GetTool("get_run")
		res, err := tool.Handler(ctx, request("get_run", map[string]any{"run_id": 1.0}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "no run store")
	})
}

func TestMCPServerHandlers_Calculate(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	tool := s.GetTool("calculate_indices")
	require.NotNil(t, tool)

	res, err := tool.Handler(context.Background(), request("calculate_indices", map[string]any{
		"sample_id":      "river-3",
		"concentrations": map[string]any{"pb": 0.02, "Zn": "1.5"},
		"indices":        "HPI,PI",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var resp schema.CalculateResponse
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &resp))
	assert.Equal(t, "river-3", resp.SampleID)
	assert.Zero(t, resp.RunID)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, schema.HPIIndex, resp.Results[0].Name)
	assert.Equal(t, schema.PIIndex, resp.Results[1].Name)
	assert.Equal(t, schema.Unsuitable, resp.Classification)
	assert.Equal(t, []string{"Pb: 0.02 mg/L (limit: 0.01 mg/L)"}, resp.ThresholdViolations)
}

func TestMCPServerHandlers_ConcentrationsAsString(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	res, err := s.GetTool("calculate_indices").Handler(context.Background(), request("calculate_indices", map[string]any{
		"concentrations": `{"Cd": 0.001}`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))
	assert.Contains(t, textOf(t, res), `"sampleId"`)
}

func TestMCPServerHandlers_Classify(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	tool := s.GetTool("classify_index")

	tests := []struct {
		name     string
		args     map[string]any
		expected schema.Category
	}{
		{"hpi default", map[string]any{"value": 10.0}, schema.Excellent},
		{"hpi unsuitable", map[string]any{"value": 150.0}, schema.Unsuitable},
		{"pli bands", map[string]any{"value": 2.5, "index": "pli"}, schema.Poor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tool.Handler(context.Background(), request("classify_index", tt.args))
			require.NoError(t, err)
			require.False(t, res.IsError, textOf(t, res))

			var v schema.IndexValue
			require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &v))
			assert.Equal(t, tt.expected, v.Classification)
			assert.NotEmpty(t, v.Formula)
		})
	}

	res, err := tool.Handler(context.Background(), request("classify_index", map[string]any{"value": 1.0, "index": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMCPServerHandlers_ListStandards(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	res, err := s.GetTool("list_standards").Handler(context.Background(), request("list_standards", nil))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var view schema.StandardsView
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &view))
	assert.Len(t, view.Metals, len(schema.DefaultStandards()))
	assert.Len(t, view.Indices, len(schema.AllIndices))
}

func TestMCPServerHandlers_RecordedRun(t *testing.T) {
	store, err := iostore.NewRunStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	s := mcp_internal.NewMCPServer(baseConfig(), mgr)
	ctx := context.Background()

	res, err := s.GetTool("calculate_indices").Handler(ctx, request("calculate_indices", map[string]any{
		"sample_id":      "lake-1",
		"concentrations": map[string]any{"As": 0.05},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var resp schema.CalculateResponse
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &resp))
	require.Greater(t, resp.RunID, int64(0))

	res, err = s.GetTool("get_run").Handler(ctx, request("get_run", map[string]any{"run_id": float64(resp.RunID)}))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var run struct {
		RunID           int64               `json:"calculationRunId"`
		Result          schema.SampleResult `json:"result"`
		Recommendations []string            `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &run))
	assert.Equal(t, resp.RunID, run.RunID)
	assert.Equal(t, "lake-1", run.Result.SampleID)
	assert.Equal(t, resp.ThresholdViolations, run.Result.Violations)
	assert.NotEmpty(t, run.Recommendations)
}
