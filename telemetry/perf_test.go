package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseParticles)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseSurface)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	if stats.AvgFrame <= 0 {
		t.Error("expected positive average frame duration")
	}
	if _, ok := stats.PhaseAvg[PhaseParticles]; !ok {
		t.Error("expected particles phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseSurface]; !ok {
		t.Error("expected surface phase to be tracked")
	}
	if stats.MinFrame > stats.P50Frame || stats.P50Frame > stats.P95Frame || stats.P95Frame > stats.MaxFrame {
		t.Errorf("expected min <= p50 <= p95 <= max, got %v %v %v %v",
			stats.MinFrame, stats.P50Frame, stats.P95Frame, stats.MaxFrame)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseLights)
		time.Sleep(10 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	if stats.AvgFrame <= 0 {
		t.Error("expected positive average frame duration after window filled")
	}
	if stats.FramesPerSecond <= 0 {
		t.Error("expected positive frames per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(time.Millisecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgFrame != 0 || stats.StdDevFrame != 0 {
		t.Error("expected zero durations for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_SingleSample(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.StartFrame()
	pc.EndFrame()

	stats := pc.Stats()
	if stats.StdDevFrame != 0 {
		t.Errorf("expected zero stddev for one sample, got %v", stats.StdDevFrame)
	}
	if stats.P50Frame != stats.AvgFrame {
		t.Errorf("expected p50 == avg for one sample, got %v vs %v", stats.P50Frame, stats.AvgFrame)
	}
}

func TestPerfCollector_PresentInterval(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordPresent()
	time.Sleep(16 * time.Millisecond)
	pc.RecordPresent()

	stats := pc.Stats()
	if stats.FrameInterval < 15*time.Millisecond {
		t.Errorf("expected frame interval >= 15ms, got %v", stats.FrameInterval)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with 16ms frames, got %v", stats.FPS)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	s := PerfStats{
		AvgFrame: 2 * time.Millisecond,
		PhasePct: map[string]float64{PhaseParticles: 40, PhaseRender: 60},
	}
	row := s.ToCSV(120)
	if row.Frame != 120 || row.AvgFrameUS != 2000 {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.ParticlesPct != 40 || row.RenderPct != 60 || row.ShardsPct != 0 {
		t.Errorf("unexpected phase columns: %+v", row)
	}
}
