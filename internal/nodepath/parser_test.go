// internal/nodepath/parser_test.go
package nodepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		wantErr  bool
		expected []string
	}{
		{
			name:     "leading dot",
			raw:      ".Simulations.Simulation.Field.Soil.Organic",
			expected: []string{"Simulations", "Simulation", "Field", "Soil", "Organic"},
		},
		{
			name:     "no leading separator",
			raw:      "Simulations.Simulation.Clock",
			expected: []string{"Simulations", "Simulation", "Clock"},
		},
		{
			name:     "slash notation",
			raw:      "/Simulations/Simulation/Field/Clock",
			expected: []string{"Simulations", "Simulation", "Field", "Clock"},
		},
		{
			name:     "slash allows dotted names",
			raw:      "Simulations/Sim v1.2/Clock",
			expected: []string{"Simulations", "Sim v1.2", "Clock"},
		},
		{
			name:     "names keep their spaces",
			raw:      ".Simulations.Simulation.Field.Sow using a variable rule",
			expected: []string{"Simulations", "Simulation", "Field", "Sow using a variable rule"},
		},
		{name: "error - empty string", raw: "", wantErr: true},
		{name: "error - only separator", raw: ".", wantErr: true},
		{name: "error - empty inner segment", raw: ".a..b", wantErr: true},
		{name: "error - trailing separator", raw: "/a/b/", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p.Segments)
		})
	}
}

func TestParseWithSep(t *testing.T) {
	p, err := ParseWithSep("Simulations|Simulation", "|")
	require.NoError(t, err)
	assert.Equal(t, []string{"Simulations", "Simulation"}, p.Segments)

	_, err = ParseWithSep("a.b", "")
	require.Error(t, err)
}
