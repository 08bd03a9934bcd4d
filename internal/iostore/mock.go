package iostore

import (
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// RecordRun implements the RunStore interface.
func (m *MockRunStore) RecordRun(run schema.RunRecord, results []schema.IndexResultRecord) (int64, error) {
	args := m.Called(run, results)
	return args.Get(0).(int64), args.Error(1)
}

// GetRun implements the RunStore interface.
func (m *MockRunStore) GetRun(runID int64) (schema.RunRecord, []schema.IndexResultRecord, error) {
	args := m.Called(runID)
	results, _ := args.Get(1).([]schema.IndexResultRecord)
	return args.Get(0).(schema.RunRecord), results, args.Error(2)
}

// ListRuns implements the RunStore interface.
func (m *MockRunStore) ListRuns(limit int) ([]schema.RunRecord, error) {
	args := m.Called(limit)
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// ListIndexResults implements the RunStore interface.
func (m *MockRunStore) ListIndexResults() ([]schema.IndexResultRecord, error) {
	args := m.Called()
	results, _ := args.Get(0).([]schema.IndexResultRecord)
	return results, args.Error(1)
}

// GetStandards implements the RunStore interface.
func (m *MockRunStore) GetStandards() ([]schema.MetalStandard, error) {
	args := m.Called()
	standards, _ := args.Get(0).([]schema.MetalStandard)
	return standards, args.Error(1)
}

// SaveStandards implements the RunStore interface.
func (m *MockRunStore) SaveStandards(standards []schema.MetalStandard) error {
	args := m.Called(standards)
	return args.Error(0)
}

// ListSchemes implements the RunStore interface.
func (m *MockRunStore) ListSchemes() ([]schema.WeightingScheme, error) {
	args := m.Called()
	schemes, _ := args.Get(0).([]schema.WeightingScheme)
	return schemes, args.Error(1)
}

// GetScheme implements the RunStore interface.
func (m *MockRunStore) GetScheme(name string) (schema.WeightingScheme, bool, error) {
	args := m.Called(name)
	return args.Get(0).(schema.WeightingScheme), args.Bool(1), args.Error(2)
}

// SaveScheme implements the RunStore interface.
func (m *MockRunStore) SaveScheme(scheme schema.WeightingScheme) error {
	args := m.Called(scheme)
	return args.Error(0)
}

// SetDefaultScheme implements the RunStore interface.
func (m *MockRunStore) SetDefaultScheme(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
