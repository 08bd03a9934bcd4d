package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hydrolab/hmpi/core"
	"github.com/hydrolab/hmpi/core/algo"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/internal/outwriter"
	"github.com/hydrolab/hmpi/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// concentrationsArg accepts the concentrations either as an object or as a JSON string.
func concentrationsArg(request mcp.CallToolRequest) (schema.Concentrations, error) {
	switch v := request.GetArguments()["concentrations"].(type) {
	case map[string]any:
		return schema.FromRaw(v), nil
	case string:
		return schema.ParseConcentrations([]byte(v))
	default:
		return nil, fmt.Errorf("%w: concentrations must be an object of symbol -> mg/L", schema.ErrInvalidInput)
	}
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCalculateIndices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conc, err := concentrationsArg(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid concentrations: %v", err)), nil
	}

	req := core.CalculateRequest{
		SampleID:        request.GetString("sample_id", ""),
		Concentrations:  conc,
		WeightingScheme: request.GetString("scheme", ""),
	}
	if s := strings.TrimSpace(request.GetString("indices", "")); s != "" {
		indices, err := schema.ParseIndexList(s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid indices: %v", err)), nil
		}
		for _, idx := range indices {
			req.Indices = append(req.Indices, string(idx))
		}
	}

	resp, err := core.Calculate(ctx, req, h.baseCfg.Clone(), h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("calculation failed: %v", err)), nil
	}
	return toolJSON(resp)
}

func (h *toolHandler) handleClassifyIndex(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	value, err := request.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := schema.ParseIndexName(request.GetString("index", string(schema.HPIIndex)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(schema.IndexValue{
		Name:           index,
		Value:          value,
		Classification: algo.Classify(index, value),
		Formula:        schema.Formula(index),
	})
}

func (h *toolHandler) handleListStandards(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := core.StandardsView(h.baseCfg.Clone(), h.mgr, request.GetString("scheme", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load standards: %v", err)), nil
	}
	return toolJSON(view)
}

func (h *toolHandler) handleGetRun(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetInt("run_id", 0)
	if runID <= 0 {
		return mcp.NewToolResultError("run_id must be a positive integer"), nil
	}
	var store contract.RunStore
	if h.mgr != nil {
		store = h.mgr.GetRunStore()
	}
	detail, err := core.LoadRunDetail(store, int64(runID))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(struct {
		RunID           int64               `json:"calculationRunId"`
		Sample          schema.Sample       `json:"sample"`
		Standards       schema.Standards    `json:"standards"`
		Result          schema.SampleResult `json:"result"`
		Recommendations []string            `json:"recommendations"`
	}{detail.Run.RunID, detail.Sample, detail.Standards, detail.Result, outwriter.Recommendations(detail.Result.Overall)})
}
