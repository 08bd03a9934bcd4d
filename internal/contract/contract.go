// Package contract provides interfaces and shared utilities for the hmpi CLI's internal architecture.
package contract

import (
	"github.com/hydrolab/hmpi/schema"
)

// StoreManager hands out the run store so that persistence can be mocked in tests.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore records calculation runs and serves the persisted configuration tables.
type RunStore interface {
	// RecordRun stores one calculated sample and its per-index rows, returning the new run ID.
	// A disabled store returns 0.
	RecordRun(run schema.RunRecord, results []schema.IndexResultRecord) (int64, error)

	// GetRun loads a run and its index rows by run ID
	GetRun(runID int64) (schema.RunRecord, []schema.IndexResultRecord, error)

	// ListRuns returns the most recent runs, newest first. A non-positive limit returns all.
	ListRuns(limit int) ([]schema.RunRecord, error)

	// ListIndexResults returns every stored index row ordered by run
	ListIndexResults() ([]schema.IndexResultRecord, error)

	// GetStandards returns the active metal standards, sorted by symbol
	GetStandards() ([]schema.MetalStandard, error)

	// SaveStandards inserts or replaces metal standards
	SaveStandards(standards []schema.MetalStandard) error

	// ListSchemes returns every weighting scheme, sorted by name
	ListSchemes() ([]schema.WeightingScheme, error)

	// GetScheme returns a scheme by name, or the default scheme when name is empty.
	// ok is false when no such scheme exists.
	GetScheme(name string) (scheme schema.WeightingScheme, ok bool, err error)

	// SaveScheme inserts or replaces a weighting scheme
	SaveScheme(scheme schema.WeightingScheme) error

	// SetDefaultScheme marks one scheme as the default and clears the flag on the rest
	SetDefaultScheme(name string) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// Close closes the underlying connection
	Close() error
}
