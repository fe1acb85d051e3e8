package profiler

import (
	"log"
	"runtime"
	"time"
)

// Sample is what one frame reports to the profiler.
type Sample struct {
	DrawCalls           int
	ShadowDrawCalls     int
	SkippedStateChanges int
	PhysicsSteps        int
}

// Report holds the statistics of one logging interval. Frame counters are averages
// per frame.
type Report struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64

	DrawCalls           float64
	ShadowDrawCalls     float64
	SkippedStateChanges float64
	PhysicsSteps        float64
}

// Profiler tracks frame rate, renderer counters and memory statistics for performance
// monitoring. Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	now            func() time.Time
	logger         *log.Logger
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	totals Sample
	last   Report
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and output goes to the standard logger.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logger:         log.Default(),
		memStats:       runtime.MemStats{},
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with what the frame did.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, draw calls, shadow draws, skipped state changes, physics
// steps, heap usage, allocation rate, GC count/pause times, total memory.
//
// Parameters:
//   - sample: the counters of the frame
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(sample Sample) bool {
	p.frameCount++
	p.totals.DrawCalls += sample.DrawCalls
	p.totals.ShadowDrawCalls += sample.ShadowDrawCalls
	p.totals.SkippedStateChanges += sample.SkippedStateChanges
	p.totals.PhysicsSteps += sample.PhysicsSteps

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	frames := float64(p.frameCount)
	r := Report{
		FPS:                 frames / elapsed.Seconds(),
		DrawCalls:           float64(p.totals.DrawCalls) / frames,
		ShadowDrawCalls:     float64(p.totals.ShadowDrawCalls) / frames,
		SkippedStateChanges: float64(p.totals.SkippedStateChanges) / frames,
		PhysicsSteps:        float64(p.totals.PhysicsSteps) / frames,
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if r.GCCount-startIdx > 256 {
			startIdx = r.GCCount - 256
		}
		for i := startIdx; i < r.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > r.MaxPauseUs {
				r.MaxPauseUs = pause
			}
		}
	}

	p.logger.Printf("[Profiler] FPS: %.2f | Draws: %.1f | Shadow: %.1f | Skipped: %.1f | Steps: %.1f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		r.FPS, r.DrawCalls, r.ShadowDrawCalls, r.SkippedStateChanges, r.PhysicsSteps,
		r.HeapMB, r.AllocRateMB, r.GCCount, r.LastPauseUs, r.MaxPauseUs, r.SysMB)

	p.last = r
	p.frameCount = 0
	p.totals = Sample{}
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the report of the most recent logged interval, zero before the first.
func (p *Profiler) Last() Report {
	return p.last
}
