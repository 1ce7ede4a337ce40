// Package telemetry collects frame timings and scene statistics and writes them to disk.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SceneSample is one scene.csv row describing animated state at a frame.
type SceneSample struct {
	Frame   uint64  `csv:"frame"`
	Elapsed float64 `csv:"elapsed"`
	Delta   float64 `csv:"delta"`
	Scene   string  `csv:"scene"`

	Particles      int     `csv:"particles"`
	BoundaryEvents int     `csv:"boundary_events"`
	MeanHeight     float64 `csv:"mean_height"`
	Shards         int     `csv:"shards"`

	SurfaceMin float64 `csv:"surface_min"`
	SurfaceMax float64 `csv:"surface_max"`

	// Point-light intensity distribution at this frame
	IntensityMean float64 `csv:"intensity_mean"`
	IntensityStd  float64 `csv:"intensity_std"`
	IntensityP50  float64 `csv:"intensity_p50"`
	IntensityP95  float64 `csv:"intensity_p95"`

	PropLoaded bool    `csv:"prop_loaded"`
	PropRotX   float64 `csv:"prop_rot_x"`
	PropRotY   float64 `csv:"prop_rot_y"`
	PropRotZ   float64 `csv:"prop_rot_z"`
}

// Summary holds the distribution of a set of values.
type Summary struct {
	Mean float64
	Std  float64
	P50  float64
	P95  float64
}

// Summarize computes mean, standard deviation and percentiles.
// values is not modified. An empty input yields the zero Summary.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var s Summary
	if n == 1 {
		s.Mean = sorted[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	}
	s.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return s
}

// LogValue implements slog.LogValuer.
func (s SceneSample) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("frame", s.Frame),
		slog.Float64("elapsed", s.Elapsed),
		slog.String("scene", s.Scene),
		slog.Int("particles", s.Particles),
		slog.Int("boundary_events", s.BoundaryEvents),
		slog.Float64("mean_height", s.MeanHeight),
		slog.Int("shards", s.Shards),
		slog.Float64("surface_min", s.SurfaceMin),
		slog.Float64("surface_max", s.SurfaceMax),
		slog.Float64("intensity_mean", s.IntensityMean),
		slog.Float64("intensity_p95", s.IntensityP95),
		slog.Bool("prop_loaded", s.PropLoaded),
	)
}
