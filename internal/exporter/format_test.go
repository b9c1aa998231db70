package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero value", input: 0, expected: "0"},
		{name: "whole units", input: 1200, expected: "1200"},
		{name: "large volume", input: 1234567, expected: "1234567"},
		{name: "fraction kept", input: 42.5, expected: "42.5"},
		{name: "trailing zeros dropped", input: 10.250, expected: "10.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatQuantity(tt.input))
		})
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		input    domain.NullFloat64
		expected string
	}{
		{domain.Null(), "-"},
		{domain.Float(0), "0"},
		{domain.Float(999), "999"},
		{domain.Float(1000), "1,000"},
		{domain.Float(1234567.4), "1,234,567"},
		{domain.Float(-15400), "-15,400"},
		{domain.Float(100000), "100,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatUnits(tt.input))
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "-", formatPercent(domain.Null()))
	assert.Equal(t, "66.67%", formatPercent(domain.Float(200.0/3)))
	assert.Equal(t, "-3.33%", formatPercent(domain.Float(-3.3333)))
}

func TestJoinYears(t *testing.T) {
	assert.Equal(t, "2020, 2021", joinYears([]int{2020, 2021}))
	assert.Equal(t, "", joinYears(nil))
}
