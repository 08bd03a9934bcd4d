package cmd

import (
	"testing"

	"github.com/hydrolab/hmpi/schema"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassifyCmd(t *testing.T, index string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "classify"}
	c.Flags().String("index", string(schema.HPIIndex), "")
	if index != "" {
		require.NoError(t, c.Flags().Set("index", index))
	}
	return c
}

func TestParseClassifyArgs(t *testing.T) {
	tests := []struct {
		name      string
		index     string
		arg       string
		wantIndex schema.IndexName
		wantValue float64
		wantErr   bool
	}{
		{name: "default index", arg: "62.5", wantIndex: schema.HPIIndex, wantValue: 62.5},
		{name: "named index", index: "pli", arg: "2.4", wantIndex: schema.PLIIndex, wantValue: 2.4},
		{name: "not a number", arg: "high", wantErr: true},
		{name: "unknown index", index: "WQI", arg: "1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, value, err := parseClassifyArgs(newClassifyCmd(t, tt.index), tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, index)
			assert.InDelta(t, tt.wantValue, value, 1e-12)
		})
	}
}

func TestRootCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"calc", "batch", "check", "classify", "standards", "schemes", "report", "runs", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
