package iostore

import (
	"encoding/json"
	"fmt"

	"github.com/hydrolab/hmpi/schema"
)

type standardRow struct {
	Symbol       string  `db:"symbol"`
	Name         string  `db:"metal_name"`
	Limit        float64 `db:"permissible_limit"`
	Unit         string  `db:"unit"`
	StandardType string  `db:"standard_type"`
	Version      int     `db:"version"`
	IsActive     int     `db:"is_active"`
}

var standardColumns = []string{"symbol", "metal_name", "permissible_limit", "unit", "standard_type", "version", "is_active"}

type schemeRow struct {
	Name        string  `db:"name"`
	Description *string `db:"description"`
	Weights     string  `db:"weights"`
	IsDefault   int     `db:"is_default"`
}

func (r schemeRow) scheme() (schema.WeightingScheme, error) {
	ws := schema.WeightingScheme{Name: r.Name, IsDefault: r.IsDefault != 0}
	if r.Description != nil {
		ws.Description = *r.Description
	}
	if err := json.Unmarshal([]byte(r.Weights), &ws.Weights); err != nil {
		return ws, fmt.Errorf("scheme %q has malformed weights: %w", r.Name, err)
	}
	return ws, nil
}

var schemeColumns = []string{"name", "description", "weights", "is_default"}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// seedStandards inserts the built-in limits into an empty standards table.
func (rs *RunStoreImpl) seedStandards() error {
	var count int
	if err := rs.db.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM %s", rs.table(standardsTable))); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return rs.SaveStandards(schema.DefaultMetalStandards())
}

// GetStandards returns the active metal standards, sorted by symbol.
func (rs *RunStoreImpl) GetStandards() ([]schema.MetalStandard, error) {
	if rs.disabled() {
		return schema.DefaultMetalStandards(), nil
	}

	var rows []standardRow
	query := fmt.Sprintf(`SELECT symbol, metal_name, permissible_limit, unit, standard_type, version, is_active
		FROM %s WHERE is_active = 1 ORDER BY symbol`, rs.table(standardsTable))
	if err := rs.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to query metal standards: %w", err)
	}

	standards := make([]schema.MetalStandard, len(rows))
	for i, r := range rows {
		standards[i] = schema.MetalStandard{
			Symbol:       r.Symbol,
			Name:         r.Name,
			Limit:        r.Limit,
			Unit:         r.Unit,
			StandardType: r.StandardType,
			Version:      r.Version,
		}
	}
	return standards, nil
}

// SaveStandards inserts or replaces metal standards in one transaction.
func (rs *RunStoreImpl) SaveStandards(standards []schema.MetalStandard) error {
	if rs.disabled() {
		return ErrStoreDisabled
	}

	tx, err := rs.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Preparex(tx.Rebind(rs.upsertQuery(standardsTable, "symbol", standardColumns)))
	if err != nil {
		return fmt.Errorf("failed to prepare standards upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range standards {
		symbol := schema.CanonicalSymbol(s.Symbol)
		if symbol == "" || s.Limit <= 0 {
			return fmt.Errorf("invalid standard for %q: limit must be positive", s.Symbol)
		}
		name := s.Name
		if name == "" {
			name = schema.MetalName(symbol)
		}
		unit := s.Unit
		if unit == "" {
			unit = schema.DefaultUnit
		}
		version := s.Version
		if version <= 0 {
			version = 1
		}
		if _, err := stmt.Exec(symbol, name, s.Limit, unit, s.StandardType, version, 1); err != nil {
			return fmt.Errorf("failed to save standard %s: %w", symbol, err)
		}
	}

	return tx.Commit()
}

// ListSchemes returns every weighting scheme, sorted by name.
func (rs *RunStoreImpl) ListSchemes() ([]schema.WeightingScheme, error) {
	if rs.disabled() {
		return nil, nil
	}

	var rows []schemeRow
	query := fmt.Sprintf(`SELECT name, description, weights, is_default FROM %s ORDER BY name`, rs.table(schemesTable))
	if err := rs.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to query weighting schemes: %w", err)
	}

	schemes := make([]schema.WeightingScheme, 0, len(rows))
	for _, r := range rows {
		ws, err := r.scheme()
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, ws)
	}
	return schemes, nil
}

// GetScheme returns a scheme by name, or the default scheme when name is empty.
func (rs *RunStoreImpl) GetScheme(name string) (schema.WeightingScheme, bool, error) {
	if rs.disabled() {
		return schema.WeightingScheme{}, false, nil
	}

	var rows []schemeRow
	var err error
	if name == "" {
		query := fmt.Sprintf(`SELECT name, description, weights, is_default FROM %s WHERE is_default = 1 ORDER BY name`,
			rs.table(schemesTable))
		err = rs.db.Select(&rows, query)
	} else {
		query := fmt.Sprintf(`SELECT name, description, weights, is_default FROM %s WHERE name = ?`, rs.table(schemesTable))
		err = rs.db.Select(&rows, rs.db.Rebind(query), name)
	}
	if err != nil {
		return schema.WeightingScheme{}, false, fmt.Errorf("failed to query weighting scheme: %w", err)
	}
	if len(rows) == 0 {
		return schema.WeightingScheme{}, false, nil
	}

	ws, err := rows[0].scheme()
	if err != nil {
		return schema.WeightingScheme{}, false, err
	}
	return ws, true, nil
}

// SaveScheme inserts or replaces a weighting scheme. A default scheme clears the flag on all others.
func (rs *RunStoreImpl) SaveScheme(ws schema.WeightingScheme) error {
	if rs.disabled() {
		return ErrStoreDisabled
	}
	if ws.Name == "" {
		return fmt.Errorf("weighting scheme needs a name")
	}

	weights := make(schema.Weights, len(ws.Weights))
	for symbol, w := range ws.Weights {
		if w <= 0 {
			return fmt.Errorf("scheme %q: weight for %s must be positive, got %v", ws.Name, symbol, w)
		}
		weights[schema.CanonicalSymbol(symbol)] = w
	}
	encoded, err := marshalJSON(weights)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	tx, err := rs.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if ws.IsDefault {
		if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET is_default = 0", rs.table(schemesTable))); err != nil {
			return fmt.Errorf("failed to clear default scheme: %w", err)
		}
	}

	query := tx.Rebind(rs.upsertQuery(schemesTable, "name", schemeColumns))
	if _, err := tx.Exec(query, ws.Name, ws.Description, encoded, boolInt(ws.IsDefault)); err != nil {
		return fmt.Errorf("failed to save scheme %q: %w", ws.Name, err)
	}

	return tx.Commit()
}

// SetDefaultScheme marks one scheme as the default and clears the flag on the rest.
func (rs *RunStoreImpl) SetDefaultScheme(name string) error {
	if rs.disabled() {
		return ErrStoreDisabled
	}

	tx, err := rs.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.Get(&count, tx.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE name = ?", rs.table(schemesTable))), name); err != nil {
		return fmt.Errorf("failed to look up scheme %q: %w", name, err)
	}
	if count == 0 {
		return fmt.Errorf("scheme %q: %w", name, ErrNotFound)
	}

	table := rs.table(schemesTable)
	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET is_default = 0", table)); err != nil {
		return fmt.Errorf("failed to clear default scheme: %w", err)
	}
	if _, err := tx.Exec(tx.Rebind(fmt.Sprintf("UPDATE %s SET is_default = 1 WHERE name = ?", table)), name); err != nil {
		return fmt.Errorf("failed to set default scheme: %w", err)
	}
	return tx.Commit()
}
