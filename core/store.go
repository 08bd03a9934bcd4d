package core

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
	"github.com/spf13/viper"
)

// requireStore returns the configured store or an error naming the command that needs it.
func requireStore(mgr contract.StoreManager, what string) (contract.RunStore, error) {
	store := runStore(mgr)
	if store == nil {
		return nil, fmt.Errorf("%s requires a run store; set --run-backend", what)
	}
	return store, nil
}

// ExecuteReport renders a stored run as a CSV or HTML report.
func ExecuteReport(_ context.Context, cfg *contract.Config, mgr contract.StoreManager, runID int64) error {
	store, err := requireStore(mgr, "report")
	if err != nil {
		return err
	}
	detail, err := LoadRunDetail(store, runID)
	if err != nil {
		return err
	}
	return writer.WriteReport(detail, cfg)
}

// ExecuteRunsList prints the most recent calculation runs.
func ExecuteRunsList(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store, err := requireStore(mgr, "runs list")
	if err != nil {
		return err
	}
	runs, err := store.ListRuns(cfg.ResultLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return writer.WriteRuns(runs, cfg)
}

// ExecuteSchemesList prints every stored weighting scheme.
func ExecuteSchemesList(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store, err := requireStore(mgr, "schemes list")
	if err != nil {
		return err
	}
	schemes, err := store.ListSchemes()
	if err != nil {
		return fmt.Errorf("failed to list weighting schemes: %w", err)
	}
	return writer.WriteSchemes(schemes, cfg)
}

// ExecuteSetDefaultScheme marks a stored scheme as the default.
func ExecuteSetDefaultScheme(_ context.Context, _ *contract.Config, mgr contract.StoreManager, name string) error {
	store, err := requireStore(mgr, "schemes set-default")
	if err != nil {
		return err
	}
	if err := store.SetDefaultScheme(name); err != nil {
		return fmt.Errorf("failed to set default scheme %q: %w", name, err)
	}
	fmt.Printf("Weighting scheme %q is now the default.\n", name)
	return nil
}

// ExecuteImportScheme reads a scheme file (any format viper reads) and stores it.
//
// The file holds name, description, default and a weights map of symbol -> weight.
// A non-empty name argument replaces the name in the file.
func ExecuteImportScheme(_ context.Context, _ *contract.Config, mgr contract.StoreManager, path, name string) error {
	store, err := requireStore(mgr, "schemes import")
	if err != nil {
		return err
	}
	scheme, err := ReadSchemeFile(path)
	if err != nil {
		return err
	}
	if name != "" {
		scheme.Name = name
	}
	if err := store.SaveScheme(scheme); err != nil {
		return fmt.Errorf("failed to save weighting scheme %q: %w", scheme.Name, err)
	}
	fmt.Printf("Imported weighting scheme %q with %d metals.\n", scheme.Name, len(scheme.Weights))
	return nil
}

// ReadSchemeFile parses a weighting scheme file.
func ReadSchemeFile(path string) (schema.WeightingScheme, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return schema.WeightingScheme{}, fmt.Errorf("failed to read scheme file: %w", err)
	}

	var raw struct {
		Name        string             `mapstructure:"name"`
		Description string             `mapstructure:"description"`
		Default     bool               `mapstructure:"default"`
		Weights     map[string]float64 `mapstructure:"weights"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return schema.WeightingScheme{}, fmt.Errorf("failed to decode scheme file: %w", err)
	}
	if strings.TrimSpace(raw.Name) == "" {
		return schema.WeightingScheme{}, fmt.Errorf("%w: scheme file has no name", schema.ErrInvalidInput)
	}
	if len(raw.Weights) == 0 {
		return schema.WeightingScheme{}, fmt.Errorf("%w: scheme %q has no weights", schema.ErrInvalidInput, raw.Name)
	}

	weights := make(schema.Weights, len(raw.Weights))
	for symbol, w := range raw.Weights {
		weights[schema.CanonicalSymbol(symbol)] = w
	}
	return schema.WeightingScheme{
		Name:        strings.TrimSpace(raw.Name),
		Description: raw.Description,
		Weights:     weights,
		IsDefault:   raw.Default,
	}, nil
}

// ExecuteImportStandards reads a standards file and stores its limits.
//
// The file holds a standards map of symbol -> limit, plus optional units, standard-type and
// version keys applied to every row. Without a version the import becomes the next version.
func ExecuteImportStandards(_ context.Context, _ *contract.Config, mgr contract.StoreManager, path string) error {
	store, err := requireStore(mgr, "standards import")
	if err != nil {
		return err
	}
	rows, err := ReadStandardsFile(path)
	if err != nil {
		return err
	}
	if rows[0].Version <= 0 {
		stored, err := store.GetStandards()
		if err != nil {
			return fmt.Errorf("failed to load stored standards: %w", err)
		}
		_, _, current := standardsFromRows(stored)
		for i := range rows {
			rows[i].Version = current + 1
		}
	}
	if err := store.SaveStandards(rows); err != nil {
		return fmt.Errorf("failed to save standards: %w", err)
	}
	fmt.Printf("Imported %d metal standards.\n", len(rows))
	return nil
}

// ReadStandardsFile parses a standards file into persistable rows sorted by symbol.
func ReadStandardsFile(path string) ([]schema.MetalStandard, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read standards file: %w", err)
	}

	var raw struct {
		Standards    map[string]float64 `mapstructure:"standards"`
		Units        map[string]string  `mapstructure:"units"`
		StandardType string             `mapstructure:"standard-type"`
		Version      int                `mapstructure:"version"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode standards file: %w", err)
	}
	if len(raw.Standards) == 0 {
		return nil, fmt.Errorf("%w: standards file has no standards", schema.ErrInvalidInput)
	}

	if raw.StandardType == "" {
		raw.StandardType = "custom"
	}
	units := make(map[string]string, len(raw.Units))
	for symbol, u := range raw.Units {
		units[schema.CanonicalSymbol(symbol)] = u
	}
	limits := make(map[string]float64, len(raw.Standards))
	for symbol, limit := range raw.Standards {
		limits[schema.CanonicalSymbol(symbol)] = limit
	}

	rows := make([]schema.MetalStandard, 0, len(limits))
	for _, symbol := range slices.Sorted(maps.Keys(limits)) {
		rows = append(rows, schema.MetalStandard{
			Symbol:       symbol,
			Name:         schema.MetalName(symbol),
			Limit:        limits[symbol],
			Unit:         schema.UnitFor(units, symbol),
			StandardType: raw.StandardType,
			Version:      raw.Version,
		})
	}
	return rows, nil
}
