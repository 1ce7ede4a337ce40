package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for one animation frame.
const (
	PhaseParticles = "particles"
	PhaseShards    = "shards"
	PhaseSurface   = "surface"
	PhaseLights    = "lights"
	PhaseProp      = "prop"
	PhaseRender    = "render"
	PhaseStream    = "stream"
)

// Phases lists every phase in frame order.
var Phases = []string{
	PhaseParticles, PhaseShards, PhaseSurface, PhaseLights,
	PhaseProp, PhaseRender, PhaseStream,
}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameWork time.Duration
	Phases    map[string]time.Duration
}

// PerfCollector tracks frame timing over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Wall time between presented frames
	lastPresent   time.Time
	frameInterval time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing the work of a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration, len(Phases))
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame closes the running phase and records the sample.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		FrameWork: now.Sub(p.frameStart),
		Phases:    p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordPresent records the wall time between presented frames.
func (p *PerfCollector) RecordPresent() {
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.frameInterval = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats holds aggregated frame statistics.
type PerfStats struct {
	AvgFrame    time.Duration
	MinFrame    time.Duration
	MaxFrame    time.Duration
	StdDevFrame time.Duration
	P50Frame    time.Duration
	P95Frame    time.Duration

	// Phase breakdown (average durations and share of frame work)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	// FramesPerSecond is the throughput the frame work alone would allow.
	FramesPerSecond float64

	FrameInterval time.Duration
	FPS           float64
}

// Stats computes statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameInterval > 0 {
		fps = float64(time.Second) / float64(p.frameInterval)
	}

	out := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameInterval: p.frameInterval,
		FPS:           fps,
	}
	if p.sampleCount == 0 {
		return out
	}

	work := make([]float64, p.sampleCount)
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		work[i] = float64(s.FrameWork)
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	sort.Float64s(work)
	mean, std := stat.MeanStdDev(work, nil)
	if p.sampleCount < 2 {
		std = 0
	}
	out.AvgFrame = time.Duration(mean)
	out.StdDevFrame = time.Duration(std)
	out.MinFrame = time.Duration(work[0])
	out.MaxFrame = time.Duration(work[len(work)-1])
	out.P50Frame = time.Duration(stat.Quantile(0.5, stat.Empirical, work, nil))
	out.P95Frame = time.Duration(stat.Quantile(0.95, stat.Empirical, work, nil))

	for phase, sum := range phaseSum {
		avg := sum / time.Duration(p.sampleCount)
		out.PhaseAvg[phase] = avg
		if out.AvgFrame > 0 {
			out.PhasePct[phase] = float64(avg) / float64(out.AvgFrame) * 100
		}
	}
	if out.AvgFrame > 0 {
		out.FramesPerSecond = float64(time.Second) / float64(out.AvgFrame)
	}
	return out
}

// LogStats logs the statistics at info level.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgFrame.Microseconds(),
		"p50_frame_us", s.P50Frame.Microseconds(),
		"p95_frame_us", s.P95Frame.Microseconds(),
		"max_frame_us", s.MaxFrame.Microseconds(),
		"frames_per_sec", int(s.FramesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("stddev_frame_us", s.StdDevFrame.Microseconds()),
		slog.Int64("p50_frame_us", s.P50Frame.Microseconds()),
		slog.Int64("p95_frame_us", s.P95Frame.Microseconds()),
		slog.Float64("frames_per_sec", s.FramesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is the flat perf.csv row.
type PerfStatsCSV struct {
	Frame        uint64  `csv:"frame"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	StdDevUS     int64   `csv:"stddev_frame_us"`
	P50FrameUS   int64   `csv:"p50_frame_us"`
	P95FrameUS   int64   `csv:"p95_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	FramesPerSec float64 `csv:"frames_per_sec"`
	FPS          float64 `csv:"fps"`
	ParticlesPct float64 `csv:"particles_pct"`
	ShardsPct    float64 `csv:"shards_pct"`
	SurfacePct   float64 `csv:"surface_pct"`
	LightsPct    float64 `csv:"lights_pct"`
	PropPct      float64 `csv:"prop_pct"`
	RenderPct    float64 `csv:"render_pct"`
	StreamPct    float64 `csv:"stream_pct"`
}

// ToCSV flattens the statistics for the window ending at frame.
func (s PerfStats) ToCSV(frame uint64) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:        frame,
		AvgFrameUS:   s.AvgFrame.Microseconds(),
		StdDevUS:     s.StdDevFrame.Microseconds(),
		P50FrameUS:   s.P50Frame.Microseconds(),
		P95FrameUS:   s.P95Frame.Microseconds(),
		MaxFrameUS:   s.MaxFrame.Microseconds(),
		FramesPerSec: s.FramesPerSecond,
		FPS:          s.FPS,
		ParticlesPct: s.PhasePct[PhaseParticles],
		ShardsPct:    s.PhasePct[PhaseShards],
		SurfacePct:   s.PhasePct[PhaseSurface],
		LightsPct:    s.PhasePct[PhaseLights],
		PropPct:      s.PhasePct[PhaseProp],
		RenderPct:    s.PhasePct[PhaseRender],
		StreamPct:    s.PhasePct[PhaseStream],
	}
}
