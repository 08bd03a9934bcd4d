// Package iostore persists calculation runs, metal standards and weighting schemes.
package iostore

import (
	"sync"

	"github.com/hydrolab/hmpi/internal/contract"
)

// RunStoreManager owns the process-wide RunStore.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.StoreManager = &RunStoreManager{} // Compile-time check

// GetRunStore returns the RunStore, or nil when storage was never initialized.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
