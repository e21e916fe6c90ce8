package criteria

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComparison(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantOp  Op
		wantVal float64
		wantDur time.Duration
		wantPct bool
		wantErr bool
	}{
		{
			name:    "greater than integer",
			expr:    "> 5",
			wantOp:  OpGT,
			wantVal: 5,
		},
		{
			name:    "less than or equal without spaces",
			expr:    "<=100",
			wantOp:  OpLTE,
			wantVal: 100,
		},
		{
			name:    "decimal value",
			expr:    ">= 0.5",
			wantOp:  OpGTE,
			wantVal: 0.5,
		},
		{
			name:    "percent suffix",
			expr:    "< 40%",
			wantOp:  OpLT,
			wantVal: 40,
			wantPct: true,
		},
		{
			name:    "duration in days",
			expr:    "> 2 days",
			wantOp:  OpGT,
			wantVal: 2,
			wantDur: 48 * time.Hour,
		},
		{
			name:    "singular duration unit",
			expr:    "< 1 hour",
			wantOp:  OpLT,
			wantVal: 1,
			wantDur: time.Hour,
		},
		{
			name:    "weeks unit",
			expr:    ">= 3 weeks",
			wantOp:  OpGTE,
			wantVal: 3,
			wantDur: 3 * 7 * 24 * time.Hour,
		},
		{
			name:    "missing operator",
			expr:    "5",
			wantErr: true,
		},
		{
			name:    "negative value for sentiment scores",
			expr:    "< -0.3",
			wantOp:  OpLT,
			wantVal: -0.3,
		},
		{
			name:    "unknown unit",
			expr:    "> 5 parsecs",
			wantErr: true,
		},
		{
			name:    "empty expression",
			expr:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseComparison(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOp, c.Op)
			assert.Equal(t, tt.wantVal, c.Value)
			assert.Equal(t, tt.wantDur, c.Duration)
			assert.Equal(t, tt.wantPct, c.Percent)
		})
	}
}

func TestCompareInt(t *testing.T) {
	tests := []struct {
		expr string
		n    int
		want bool
	}{
		{"> 5", 6, true},
		{"> 5", 5, false},
		{"< 5", 4, true},
		{"< 5", 5, false},
		{">= 5", 5, true},
		{">= 5", 4, false},
		{"<= 5", 5, true},
		{"<= 5", 6, false},
	}

	for _, tt := range tests {
		c, err := ParseComparison(tt.expr)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.CompareInt(tt.n), "%s vs %d", tt.expr, tt.n)
	}
}

func TestCompareDuration(t *testing.T) {
	t.Run("with explicit unit", func(t *testing.T) {
		c, err := ParseComparison("> 2 hours")
		require.NoError(t, err)
		assert.True(t, c.CompareDuration(3*time.Hour))
		assert.False(t, c.CompareDuration(time.Hour))
	})

	t.Run("unit-less comparison reads as days", func(t *testing.T) {
		c, err := ParseComparison("< 7")
		require.NoError(t, err)
		assert.True(t, c.CompareDuration(6*24*time.Hour))
		assert.False(t, c.CompareDuration(8*24*time.Hour))
	})
}
