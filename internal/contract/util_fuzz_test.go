package contract

import (
	"strings"
	"testing"
)

// FuzzParseMetalValuesString fuzzes the metal:value override parser.
func FuzzParseMetalValuesString(f *testing.F) {
	for _, seed := range []string{"Pb:0.01", "pb:0.01,As:0.05", "", ",,", "Pb:", ":1", "Zn:NaN", "Hg:1e-3,Hg:2"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		values, err := ParseMetalValuesString(s)
		if err != nil {
			return
		}
		if len(values) > strings.Count(s, ",")+1 {
			t.Fatalf("more values than entries in %q", s)
		}
		for symbol := range values {
			if symbol == "" {
				t.Fatalf("empty symbol parsed from %q", s)
			}
		}
	})
}
