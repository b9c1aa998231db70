package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		name  string
		in    float64
		valid bool
	}{
		{"zero is defined", 0, true},
		{"negative", -12.5, true},
		{"nan", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Float(tt.in)
			assert.Equal(t, tt.valid, n.Valid)
			if tt.valid {
				assert.Equal(t, tt.in, n.OrElse(99))
			} else {
				assert.Equal(t, float64(99), n.OrElse(99))
			}
		})
	}
}

func TestNullFloat64_Format(t *testing.T) {
	assert.Equal(t, "", Null().Format(2))
	assert.Equal(t, "33.33", Float(100.0/3).Format(2))
	assert.Equal(t, "150", Float(150).Format(0))
}

func TestNullFloat64_JSON(t *testing.T) {
	raw, err := json.Marshal(YoYMetric{Change: Float(50), GrowthPct: Null()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"change":50,"growth_pct":null}`, string(raw))

	var got YoYMetric
	require.NoError(t, json.Unmarshal([]byte(`{"change":null,"growth_pct":12.5}`), &got))
	assert.False(t, got.Change.Valid)
	assert.Equal(t, Float(12.5), got.GrowthPct)

	assert.Error(t, json.Unmarshal([]byte(`{"change":"many"}`), &got))
}

func TestValueMetric_Label(t *testing.T) {
	assert.Equal(t, "Retail (Units)", MetricRetail.Label())
	assert.Equal(t, "Retail (Units)", ValueMetric("").Label())
	assert.Equal(t, "Share (%)", MetricShare.Label())
	assert.Equal(t, "YoY Growth (%)", MetricYoYGrowth.Label())
	assert.Equal(t, "YoY Change (Units)", MetricYoYChange.Label())
}
