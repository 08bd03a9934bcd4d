// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the hmpi MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"HMPI Water Quality Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: calculate_indices ---
	s.AddTool(mcp.NewTool("calculate_indices",
		mcp.WithDescription("Calculate heavy-metal pollution indices (HPI, HEI, HMPI, HCI, PI, PLI, Cd, SI) for one water sample."),
		mcp.WithObject("concentrations", mcp.Description("Metal concentrations in mg/L keyed by symbol, e.g. {\"Pb\": 0.02, \"As\": 0.005}."), mcp.Required()),
		mcp.WithString("sample_id", mcp.Description("Sample identifier (a UUID is generated when omitted).")),
		mcp.WithString("indices", mcp.Description("Comma-separated indices to compute, or 'all'. Defaults to the configured set.")),
		mcp.WithString("scheme", mcp.Description("Name of a stored weighting scheme for HPI.")),
	), h.handleCalculateIndices)

	// --- 2. Tool: classify_index ---
	s.AddTool(mcp.NewTool("classify_index",
		mcp.WithDescription("Classify an index value into a water quality category."),
		mcp.WithNumber("value", mcp.Description("The index value to classify."), mcp.Required()),
		mcp.WithString("index", mcp.Description("Index name whose bands apply. Defaults to 'HPI'.")),
	), h.handleClassifyIndex)

	// --- 3. Tool: list_standards ---
	s.AddTool(mcp.NewTool("list_standards",
		mcp.WithDescription("List the effective permissible limits, weights and the formula and bands of every index."),
		mcp.WithString("scheme", mcp.Description("Name of a stored weighting scheme to show.")),
	), h.handleListStandards)

	// --- 4. Tool: get_run ---
	s.AddTool(mcp.NewTool("get_run",
		mcp.WithDescription("Load a recorded calculation run with its sample, standards and results."),
		mcp.WithNumber("run_id", mcp.Description("The calculation run ID."), mcp.Required()),
	), h.handleGetRun)

	return s
}

// StartMCPServer starts the hmpi MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
