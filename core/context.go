package core

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hydrolab/hmpi/core/agg"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
)

// resolvedParams is an aggregator configuration plus where its tables came from.
type resolvedParams struct {
	Params           agg.Params
	SchemeName       string // empty when HPI uses 1/Si
	StandardsVersion int
}

// runStore returns the manager's store, or nil when persistence is off.
func runStore(mgr contract.StoreManager) contract.RunStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}

// resolveParams builds the aggregator configuration for one calculation.
//
// Standards come from the store (seeded with the defaults) when one is configured, then the
// config file and flag overrides are applied on top. The weighting scheme is the named one,
// else the inline config weights, else the store default, else nil.
func resolveParams(cfg *contract.Config, store contract.RunStore, schemeName string) (resolvedParams, error) {
	r := resolvedParams{
		Params: agg.Params{
			Indices:     slices.Clone(cfg.Indices),
			Standards:   maps.Clone(cfg.Standards),
			IdealValues: maps.Clone(cfg.IdealValues),
			Reference:   maps.Clone(cfg.Reference),
			Units:       maps.Clone(cfg.Units),
		},
		StandardsVersion: 1,
	}
	if len(r.Params.Indices) == 0 {
		r.Params.Indices = slices.Clone(schema.DefaultIndices)
	}
	if r.Params.Standards == nil {
		r.Params.Standards = schema.DefaultStandards()
	}
	if r.Params.IdealValues == nil {
		r.Params.IdealValues = schema.DefaultIdealValues()
	}
	if r.Params.Units == nil {
		r.Params.Units = make(map[string]string)
	}

	if store != nil {
		rows, err := store.GetStandards()
		if err != nil {
			return resolvedParams{}, fmt.Errorf("failed to load standards: %w", err)
		}
		if len(rows) > 0 {
			stored, units, version := standardsFromRows(rows)
			maps.Copy(stored, cfg.StandardOverrides)
			for symbol, unit := range units {
				if _, ok := r.Params.Units[symbol]; !ok {
					r.Params.Units[symbol] = unit
				}
			}
			r.Params.Standards = stored
			r.StandardsVersion = version
		}
	}

	scheme, err := resolveScheme(cfg, store, schemeName)
	if err != nil {
		return resolvedParams{}, err
	}
	r.SchemeName = scheme.Name
	r.Params.Weights = scheme.Weights

	if err := r.Params.Validate(); err != nil {
		return resolvedParams{}, err
	}
	return r, nil
}

// resolveScheme picks the weighting scheme for a calculation.
func resolveScheme(cfg *contract.Config, store contract.RunStore, name string) (schema.WeightingScheme, error) {
	if name != "" {
		if store == nil {
			return schema.WeightingScheme{}, fmt.Errorf("weighting scheme %q requested but no run store is configured", name)
		}
		scheme, ok, err := store.GetScheme(name)
		if err != nil {
			return schema.WeightingScheme{}, fmt.Errorf("failed to load weighting scheme %q: %w", name, err)
		}
		if !ok {
			return schema.WeightingScheme{}, fmt.Errorf("%w: weighting scheme %q not found", schema.ErrInvalidInput, name)
		}
		return scheme, nil
	}
	if len(cfg.Weights) > 0 {
		return schema.WeightingScheme{Name: "config", Weights: maps.Clone(cfg.Weights)}, nil
	}
	if store != nil {
		scheme, ok, err := store.GetScheme("")
		if err != nil {
			return schema.WeightingScheme{}, fmt.Errorf("failed to load default weighting scheme: %w", err)
		}
		if ok {
			return scheme, nil
		}
	}
	return schema.WeightingScheme{}, nil
}

// standardsFromRows converts persisted rows into a standards table, units and the newest version.
func standardsFromRows(rows []schema.MetalStandard) (schema.Standards, map[string]string, int) {
	std := make(schema.Standards, len(rows))
	units := make(map[string]string, len(rows))
	version := 0
	for _, row := range rows {
		std[row.Symbol] = row.Limit
		if row.Unit != "" {
			units[row.Symbol] = row.Unit
		}
		version = max(version, row.Version)
	}
	return std, units, max(version, 1)
}

// StandardsView returns the effective reference tables and index definitions.
func StandardsView(cfg *contract.Config, mgr contract.StoreManager, schemeName string) (schema.StandardsView, error) {
	resolved, err := resolveParams(cfg, runStore(mgr), schemeName)
	if err != nil {
		return schema.StandardsView{}, err
	}
	return buildStandardsView(resolved), nil
}

// buildStandardsView collects the effective reference tables for display.
func buildStandardsView(r resolvedParams) schema.StandardsView {
	p := r.Params
	view := schema.StandardsView{Scheme: r.SchemeName}
	for _, symbol := range slices.Sorted(maps.Keys(p.Standards)) {
		ref := schema.MetalReference{
			Symbol: symbol,
			Name:   schema.MetalName(symbol),
			Limit:  p.Standards[symbol],
			Unit:   schema.UnitFor(p.Units, symbol),
			Ideal:  p.IdealValues[symbol],
		}
		if v, ok := p.Reference[symbol]; ok {
			ref.Reference = &v
		}
		if v, ok := p.Weights[symbol]; ok {
			ref.Weight = &v
		}
		view.Metals = append(view.Metals, ref)
	}
	for _, idx := range schema.AllIndices {
		view.Indices = append(view.Indices, schema.NewIndexInfo(idx))
	}
	return view
}
