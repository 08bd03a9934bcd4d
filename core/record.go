package core

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
)

// runMeta is stored with every run so that a report can be rebuilt later.
type runMeta struct {
	Sample    schema.Sample     `json:"sample"`
	Standards schema.Standards  `json:"standards"`
	Units     map[string]string `json:"units,omitempty"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// buildRunRecords converts a calculated sample into store rows.
func buildRunRecords(sample schema.Sample, result schema.SampleResult, r resolvedParams, at time.Time) (schema.RunRecord, []schema.IndexResultRecord, error) {
	violations := result.Violations
	if violations == nil {
		violations = []string{}
	}
	concJSON, err := toJSON(sample.Concentrations)
	if err != nil {
		return schema.RunRecord{}, nil, fmt.Errorf("failed to encode concentrations: %w", err)
	}
	violationsJSON, err := toJSON(violations)
	if err != nil {
		return schema.RunRecord{}, nil, fmt.Errorf("failed to encode violations: %w", err)
	}
	metaJSON, err := toJSON(runMeta{Sample: sample, Standards: r.Params.Standards, Units: r.Params.Units})
	if err != nil {
		return schema.RunRecord{}, nil, fmt.Errorf("failed to encode sample metadata: %w", err)
	}

	run := schema.RunRecord{
		SampleID:         sample.ID,
		SampleName:       optionalString(sample.Name),
		Location:         optionalString(sample.Location),
		CalculatedAt:     at,
		Scheme:           optionalString(r.SchemeName),
		StandardsVersion: int32(r.StandardsVersion),
		Classification:   string(result.Classification),
		Overall:          string(result.Overall),
		Concentrations:   concJSON,
		Violations:       violationsJSON,
		SampleMeta:       &metaJSON,
	}
	if len(result.Intermediates) > 0 {
		intermediatesJSON, err := toJSON(result.Intermediates)
		if err != nil {
			return schema.RunRecord{}, nil, fmt.Errorf("failed to encode intermediate values: %w", err)
		}
		run.Intermediates = &intermediatesJSON
	}

	rows := make([]schema.IndexResultRecord, 0, len(result.Indices))
	for _, v := range result.Indices {
		row := schema.IndexResultRecord{
			IndexName:      string(v.Name),
			Metal:          v.Metal,
			Classification: string(v.Classification),
			Contributing:   int32(v.Contributing),
			Formula:        v.Formula,
		}
		if v.Defined() {
			value := v.Value
			row.Value = &value
		}
		rows = append(rows, row)
	}
	return run, rows, nil
}

// recordRun persists a calculation and returns its run ID, or 0 without a store.
func recordRun(ctx context.Context, store contract.RunStore, sample schema.Sample, result schema.SampleResult, r resolvedParams) (int64, error) {
	if store == nil {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	run, rows, err := buildRunRecords(sample, result, r, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return store.RecordRun(run, rows)
}

// LoadRunDetail rebuilds everything a report needs from a stored run.
func LoadRunDetail(store contract.RunStore, runID int64) (schema.RunDetail, error) {
	if store == nil {
		return schema.RunDetail{}, fmt.Errorf("no run store is configured")
	}
	run, rows, err := store.GetRun(runID)
	if err != nil {
		return schema.RunDetail{}, fmt.Errorf("failed to load run %d: %w", runID, err)
	}

	detail := schema.RunDetail{
		Run: run,
		Result: schema.SampleResult{
			SampleID:       run.SampleID,
			Indices:        make([]schema.IndexValue, 0, len(rows)),
			Classification: schema.Category(run.Classification),
			Overall:        schema.Category(run.Overall),
		},
	}

	var meta runMeta
	if run.SampleMeta != nil {
		if err := json.Unmarshal([]byte(*run.SampleMeta), &meta); err != nil {
			return schema.RunDetail{}, fmt.Errorf("failed to decode sample metadata of run %d: %w", runID, err)
		}
	}
	detail.Sample = meta.Sample
	detail.Sample.ID = run.SampleID
	if detail.Sample.Concentrations == nil {
		if err := json.Unmarshal([]byte(run.Concentrations), &detail.Sample.Concentrations); err != nil {
			return schema.RunDetail{}, fmt.Errorf("failed to decode concentrations of run %d: %w", runID, err)
		}
	}
	detail.Standards = meta.Standards
	if detail.Standards == nil {
		detail.Standards = schema.DefaultStandards()
	}
	detail.Units = meta.Units

	if run.Violations != "" {
		if err := json.Unmarshal([]byte(run.Violations), &detail.Result.Violations); err != nil {
			return schema.RunDetail{}, fmt.Errorf("failed to decode violations of run %d: %w", runID, err)
		}
	}
	if run.Intermediates != nil {
		if err := json.Unmarshal([]byte(*run.Intermediates), &detail.Result.Intermediates); err != nil {
			return schema.RunDetail{}, fmt.Errorf("failed to decode intermediate values of run %d: %w", runID, err)
		}
	}

	detail.Result.Indices = indexValuesFromRows(rows)
	return detail, nil
}

// indexValuesFromRows restores index values in canonical order, sub-indices by metal.
func indexValuesFromRows(rows []schema.IndexResultRecord) []schema.IndexValue {
	byName := make(map[schema.IndexName][]schema.IndexValue)
	for _, row := range rows {
		v := schema.IndexValue{
			Name:           schema.IndexName(row.IndexName),
			Metal:          row.Metal,
			Value:          math.NaN(),
			Classification: schema.Category(row.Classification),
			Formula:        row.Formula,
			Contributing:   int(row.Contributing),
		}
		if row.Value != nil {
			v.Value = *row.Value
		}
		byName[v.Name] = append(byName[v.Name], v)
	}
	var out []schema.IndexValue
	for _, idx := range schema.AllIndices {
		out = append(out, byName[idx]...)
	}
	return out
}
