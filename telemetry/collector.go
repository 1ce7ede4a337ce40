package telemetry

// FrameState is the scene state handed to the collector when a window closes.
type FrameState struct {
	Frame      uint64
	Elapsed    float64
	Delta      float64
	Scene      string
	Particles  int
	MeanHeight float64
	Shards     int
	SurfaceMin float64
	SurfaceMax float64
	// Intensities of the point lights
	Intensities []float64
	PropLoaded  bool
	PropRot     [3]float64
}

// Collector accumulates per-frame counters and produces a SceneSample
// every windowFrames frames.
type Collector struct {
	windowFrames uint64
	windowStart  uint64

	boundaryEvents int
}

// NewCollector creates a collector with a window of windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: uint64(windowFrames)}
}

// RecordBoundaryEvents adds the boundary events fired during one frame.
func (c *Collector) RecordBoundaryEvents(n int) {
	c.boundaryEvents += n
}

// ShouldFlush reports whether the window ending at frame is complete.
func (c *Collector) ShouldFlush(frame uint64) bool {
	return frame-c.windowStart >= c.windowFrames
}

// Flush produces the sample for the closing window and resets counters.
func (c *Collector) Flush(st FrameState) SceneSample {
	light := Summarize(st.Intensities)

	s := SceneSample{
		Frame:          st.Frame,
		Elapsed:        st.Elapsed,
		Delta:          st.Delta,
		Scene:          st.Scene,
		Particles:      st.Particles,
		BoundaryEvents: c.boundaryEvents,
		MeanHeight:     st.MeanHeight,
		Shards:         st.Shards,
		SurfaceMin:     st.SurfaceMin,
		SurfaceMax:     st.SurfaceMax,
		IntensityMean:  light.Mean,
		IntensityStd:   light.Std,
		IntensityP50:   light.P50,
		IntensityP95:   light.P95,
		PropLoaded:     st.PropLoaded,
		PropRotX:       st.PropRot[0],
		PropRotY:       st.PropRot[1],
		PropRotZ:       st.PropRot[2],
	}

	c.windowStart = st.Frame
	c.boundaryEvents = 0
	return s
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int {
	return int(c.windowFrames)
}
