package core

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hydrolab/hmpi/schema"
)

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// LoadSamples reads samples from a JSON or CSV file, or from stdin when path is empty or "-".
// Samples without an ID get a random one.
func LoadSamples(path string) ([]schema.Sample, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}

	var samples []schema.Sample
	if isCSV(path, data) {
		samples, err = schema.ParseSamplesCSV(bytes.NewReader(data))
	} else {
		samples, err = schema.ParseSamplesJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples in input", schema.ErrInvalidInput)
	}
	ensureSampleIDs(samples)
	return samples, nil
}

// isCSV decides the input format from the extension, falling back to the first byte.
func isCSV(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return true
	case ".json":
		return false
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '['
}

func newSampleID() string {
	return uuid.NewString()
}

// ensureSampleIDs fills in missing sample IDs in place.
func ensureSampleIDs(samples []schema.Sample) {
	for i := range samples {
		if strings.TrimSpace(samples[i].ID) == "" {
			samples[i].ID = newSampleID()
		}
	}
}
