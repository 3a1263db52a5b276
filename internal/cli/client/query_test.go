package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name  string
		exprs []string
		want  map[string]any
	}{
		{
			name:  "equality with string value",
			exprs: []string{"region=north"},
			want:  map[string]any{"region": "north"},
		},
		{
			name:  "equality with double equals",
			exprs: []string{"region==north"},
			want:  map[string]any{"region": "north"},
		},
		{
			name:  "numeric value coerced",
			exprs: []string{"sales=100"},
			want:  map[string]any{"sales": 100.0},
		},
		{
			name:  "comparison operator",
			exprs: []string{"sales>100"},
			want:  map[string]any{"sales": map[string]any{">": 100.0}},
		},
		{
			name:  "not equal",
			exprs: []string{"region!=north"},
			want:  map[string]any{"region": map[string]any{"!=": "north"}},
		},
		{
			name:  "multiple filters",
			exprs: []string{"region=north", "sales>=50"},
			want: map[string]any{
				"region": "north",
				"sales":  map[string]any{">=": 50.0},
			},
		},
		{
			name:  "none",
			exprs: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilters(tt.exprs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilters_Invalid(t *testing.T) {
	for _, expr := range []string{"noequals", "=value", "column="} {
		_, err := parseFilters([]string{expr})
		assert.Error(t, err, expr)
	}
}
