package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// indexAliases accepts the spellings used by older configs and request payloads.
var indexAliases = map[string]IndexName{
	"hpi_simple":     HPISimpleIndex,
	"hpi-simple":     HPISimpleIndex,
	"hpis":           HPISimpleIndex,
	"hmpi_geometric": HMIIndex,
	"hmpi-geometric": HMIIndex,
	"subindex":       SIIndex,
	"sub-index":      SIIndex,
	"sub_index":      SIIndex,
}

// ParseIndexName matches an index name case-insensitively.
func ParseIndexName(s string) (IndexName, error) {
	s = strings.TrimSpace(s)
	for _, name := range AllIndices {
		if strings.EqualFold(string(name), s) {
			return name, nil
		}
	}
	if name, ok := indexAliases[strings.ToLower(s)]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIndex, s)
}

// ParseIndexList parses a comma-separated index list, dropping duplicates.
// An empty string yields DefaultIndices.
func ParseIndexList(s string) ([]IndexName, error) {
	if strings.TrimSpace(s) == "" {
		return append([]IndexName(nil), DefaultIndices...), nil
	}
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return append([]IndexName(nil), AllIndices...), nil
	}
	seen := make(map[IndexName]bool)
	var out []IndexName
	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name, err := ParseIndexName(part)
		if err != nil {
			return nil, err
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no indices requested", ErrInvalidInput)
	}
	return out, nil
}

// FormatConcentration renders a reading with the shortest exact decimal form.
func FormatConcentration(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// UnitFor returns the unit recorded for a metal, or DefaultUnit.
func UnitFor(units map[string]string, symbol string) string {
	if u, ok := units[symbol]; ok && u != "" {
		return u
	}
	return DefaultUnit
}
