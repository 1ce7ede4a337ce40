package telemetry

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	s := Summarize(values)

	if math.Abs(s.Mean-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", s.Mean)
	}
	// Sample standard deviation of 1..10
	if math.Abs(s.Std-3.02765) > 1e-4 {
		t.Errorf("std = %v, want ~3.0277", s.Std)
	}
	if s.P50 != 5 {
		t.Errorf("p50 = %v, want 5", s.P50)
	}
	if s.P95 != 10 {
		t.Errorf("p95 = %v, want 10", s.P95)
	}
	if values[0] != 10 {
		t.Error("input slice was reordered")
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Summary
	}{
		{"empty", nil, Summary{}},
		{"single", []float64{4}, Summary{Mean: 4, P50: 4, P95: 4}},
		{"constant", []float64{2, 2, 2}, Summary{Mean: 2, P50: 2, P95: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.values)
			if math.Abs(got.Mean-tt.want.Mean) > 1e-12 || math.Abs(got.Std-tt.want.Std) > 1e-12 ||
				got.P50 != tt.want.P50 || got.P95 != tt.want.P95 {
				t.Errorf("Summarize(%v) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}
