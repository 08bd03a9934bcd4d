// Package core has core logic for calculation, ranking and reporting.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/hydrolab/hmpi/core/agg"
	"github.com/hydrolab/hmpi/core/algo"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/internal/outwriter"
	"github.com/hydrolab/hmpi/schema"
)

// CalculateRequest is the input of a single-sample calculation.
type CalculateRequest = schema.CalculateRequest

// CalculateResponse is the output of a single-sample calculation.
type CalculateResponse = schema.CalculateResponse

// writer renders every command's output.
var writer = outwriter.NewOutWriter()

// ExecuteCalc calculates one sample, records it as a run and prints the result.
// It serves as the main entry point for the 'calc' command.
func ExecuteCalc(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	samples, err := LoadSamples(cfg.InputPath)
	if err != nil {
		return err
	}
	sample, err := selectSample(samples, cfg.SampleID)
	if err != nil {
		return err
	}

	store := runStore(mgr)
	resolved, err := resolveParams(cfg, store, cfg.SchemeName)
	if err != nil {
		return err
	}
	resolved.Params.Intermediates = true

	result := calculateSample(sample, resolved.Params)
	runID, err := recordRun(ctx, store, sample, result, resolved)
	if err != nil {
		contract.LogWarn("failed to record calculation run", err)
	}

	return writer.WriteResult(schema.NewCalculateResponse(runID, result), cfg, time.Since(start))
}

// Calculate runs a request against the configured reference tables and records the run.
// Unknown index names fail the request; an empty index list uses cfg.Indices.
func Calculate(ctx context.Context, req CalculateRequest, cfg *contract.Config, mgr contract.StoreManager) (CalculateResponse, error) {
	if len(req.Concentrations) == 0 {
		return CalculateResponse{}, fmt.Errorf("%w: metalConcentrations is required", schema.ErrInvalidInput)
	}

	store := runStore(mgr)
	resolved, err := resolveParams(cfg, store, req.WeightingScheme)
	if err != nil {
		return CalculateResponse{}, err
	}
	if len(req.Indices) > 0 {
		indices, err := parseRequestIndices(req.Indices)
		if err != nil {
			return CalculateResponse{}, err
		}
		resolved.Params.Indices = indices
	}
	resolved.Params.Intermediates = true

	sample := schema.Sample{ID: req.SampleID, Concentrations: canonicalConcentrations(req.Concentrations)}
	if sample.ID == "" {
		sample.ID = newSampleID()
	}

	result := calculateSample(sample, resolved.Params)
	runID, err := recordRun(ctx, store, sample, result, resolved)
	if err != nil {
		contract.LogWarn("failed to record calculation run", err)
	}
	return schema.NewCalculateResponse(runID, result), nil
}

// ExecuteClassify classifies a single index value.
func ExecuteClassify(_ context.Context, cfg *contract.Config, index schema.IndexName, value float64) error {
	return writer.WriteClassification(index, value, algo.Classify(index, value), cfg)
}

// ExecuteStandards prints the effective reference tables and index definitions.
func ExecuteStandards(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	view, err := StandardsView(cfg, mgr, cfg.SchemeName)
	if err != nil {
		return err
	}
	return writer.WriteStandards(view, cfg)
}

// calculateSample runs the aggregator and stamps the sample ID.
func calculateSample(sample schema.Sample, p agg.Params) schema.SampleResult {
	result := agg.Calculate(sample.Concentrations, p)
	result.SampleID = sample.ID
	return result
}

// selectSample picks the sample to calculate: the one matching id, or the only one given.
func selectSample(samples []schema.Sample, id string) (schema.Sample, error) {
	if id != "" {
		for _, s := range samples {
			if s.ID == id {
				return s, nil
			}
		}
		return schema.Sample{}, fmt.Errorf("sample %q not found in input", id)
	}
	if len(samples) != 1 {
		return schema.Sample{}, fmt.Errorf("input has %d samples; pass --sample-id or use the batch command", len(samples))
	}
	return samples[0], nil
}

// parseRequestIndices parses request index names into canonical order.
func parseRequestIndices(names []string) ([]schema.IndexName, error) {
	requested := make(map[schema.IndexName]bool, len(names))
	for _, n := range names {
		idx, err := schema.ParseIndexName(n)
		if err != nil {
			return nil, err
		}
		requested[idx] = true
	}
	out := make([]schema.IndexName, 0, len(requested))
	for _, idx := range schema.AllIndices {
		if requested[idx] {
			out = append(out, idx)
		}
	}
	return out, nil
}

// canonicalConcentrations restores symbol casing and drops unusable readings.
func canonicalConcentrations(conc schema.Concentrations) schema.Concentrations {
	out := make(schema.Concentrations, len(conc))
	for symbol, v := range conc {
		s := schema.CanonicalSymbol(symbol)
		if s == "" || !schema.ValidReading(v) {
			continue
		}
		out[s] = v
	}
	return out
}
