package schema

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseConcentrations decodes a JSON object of symbol -> reading.
// Readings that are null, non-numeric, negative or non-finite are dropped.
// Anything other than a JSON object is rejected with ErrInvalidInput.
func ParseConcentrations(data []byte) (Concentrations, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: concentrations must be a JSON object", ErrInvalidInput)
	}
	return FromRaw(raw), nil
}

// FromRaw converts loosely typed readings into Concentrations.
func FromRaw(raw map[string]any) Concentrations {
	out := make(Concentrations, len(raw))
	for key, v := range raw {
		symbol := CanonicalSymbol(key)
		if symbol == "" {
			continue
		}
		if f, ok := readingValue(v); ok {
			out[symbol] = f
		}
	}
	return out
}

// ValidReading reports whether a reading can contribute to any index.
func ValidReading(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func readingValue(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return f, ValidReading(f)
}

// rawSample mirrors Sample with loosely typed fields for decoding.
type rawSample struct {
	ID             string          `json:"sample_id"`
	Name           string          `json:"sample_name"`
	Location       string          `json:"location_name"`
	Latitude       *float64        `json:"latitude"`
	Longitude      *float64        `json:"longitude"`
	SamplingDate   string          `json:"sampling_date"`
	PH             *float64        `json:"ph_value"`
	TemperatureC   *float64        `json:"temperature_celsius"`
	DepthMeters    *float64        `json:"depth_meters"`
	Method         string          `json:"collection_method"`
	Concentrations json.RawMessage `json:"metal_concentrations"`
	Alt            json.RawMessage `json:"concentrations"`
}

// ParseSamplesJSON decodes one sample or an array of samples.
// A sample is either a record with metal_concentrations or a bare symbol -> reading object.
func ParseSamplesJSON(data []byte) ([]Sample, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidInput)
	}
	var items []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	case '{':
		items = []json.RawMessage{trimmed}
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrInvalidInput)
	}

	samples := make([]Sample, 0, len(items))
	for i, item := range items {
		s, err := parseSampleJSON(item)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i+1, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseSampleJSON(item json.RawMessage) (Sample, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(item, &probe); err != nil || probe == nil {
		return Sample{}, fmt.Errorf("%w: sample must be a JSON object", ErrInvalidInput)
	}
	_, hasConc := probe["metal_concentrations"]
	_, hasAlt := probe["concentrations"]
	if !hasConc && !hasAlt {
		conc, err := ParseConcentrations(item)
		if err != nil {
			return Sample{}, err
		}
		return Sample{Concentrations: conc}, nil
	}

	var raw rawSample
	if err := json.Unmarshal(item, &raw); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	concData := raw.Concentrations
	if len(concData) == 0 {
		concData = raw.Alt
	}
	conc, err := ParseConcentrations(concData)
	if err != nil {
		return Sample{}, err
	}
	s := Sample{
		ID:             raw.ID,
		Name:           raw.Name,
		Location:       raw.Location,
		Latitude:       raw.Latitude,
		Longitude:      raw.Longitude,
		PH:             raw.PH,
		TemperatureC:   raw.TemperatureC,
		DepthMeters:    raw.DepthMeters,
		Method:         raw.Method,
		Concentrations: conc,
	}
	if raw.SamplingDate != "" {
		t, err := ParseSamplingDate(raw.SamplingDate)
		if err != nil {
			return Sample{}, err
		}
		s.SamplingDate = &t
	}
	return s, nil
}

// ParseSamplingDate accepts RFC3339 timestamps and plain dates.
func ParseSamplingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: sampling date %q must be YYYY-MM-DD or RFC3339", ErrInvalidInput, s)
}

// csvMetaColumns are the non-metal columns of a samples CSV.
var csvMetaColumns = map[string]bool{
	"sample_id": true, "sample_name": true, "location_name": true, "latitude": true, "longitude": true,
	"sampling_date": true, "ph_value": true, "temperature_celsius": true, "depth_meters": true,
	"collection_method": true,
}

// ParseSamplesCSV reads one sample per row. Columns not named after sample metadata are metal symbols.
func ParseSamplesCSV(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty CSV", ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var samples []Sample
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, line, err)
		}
		s := Sample{Concentrations: make(Concentrations)}
		for i, col := range header {
			if i >= len(record) {
				break
			}
			cell := strings.TrimSpace(record[i])
			key := strings.ToLower(col)
			if !csvMetaColumns[key] {
				if f, ok := readingValue(cell); ok {
					s.Concentrations[CanonicalSymbol(col)] = f
				}
				continue
			}
			if err := s.setMeta(key, cell); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func (s *Sample) setMeta(key, cell string) error {
	if cell == "" {
		return nil
	}
	parseFloat := func() (*float64, error) {
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q is not a number", ErrInvalidInput, key, cell)
		}
		return &f, nil
	}
	var err error
	switch key {
	case "sample_id":
		s.ID = cell
	case "sample_name":
		s.Name = cell
	case "location_name":
		s.Location = cell
	case "collection_method":
		s.Method = cell
	case "latitude":
		s.Latitude, err = parseFloat()
	case "longitude":
		s.Longitude, err = parseFloat()
	case "ph_value":
		s.PH, err = parseFloat()
	case "temperature_celsius":
		s.TemperatureC, err = parseFloat()
	case "depth_meters":
		s.DepthMeters, err = parseFloat()
	case "sampling_date":
		var t time.Time
		t, err = ParseSamplingDate(cell)
		if err == nil {
			s.SamplingDate = &t
		}
	}
	return err
}
