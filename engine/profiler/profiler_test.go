package profiler

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickLogsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	var buf bytes.Buffer
	p := NewProfiler(WithClock(clock.now), WithLogger(log.New(&buf, "", 0)))

	clock.advance(500 * time.Millisecond)
	assert.False(t, p.Tick(Sample{DrawCalls: 4, PhysicsSteps: 1}))
	assert.Empty(t, buf.String())

	clock.advance(500 * time.Millisecond)
	require.True(t, p.Tick(Sample{DrawCalls: 6, ShadowDrawCalls: 2, SkippedStateChanges: 8, PhysicsSteps: 1}))

	r := p.Last()
	assert.InDelta(t, 2, r.FPS, 1e-9)
	assert.InDelta(t, 5, r.DrawCalls, 1e-9)
	assert.InDelta(t, 1, r.ShadowDrawCalls, 1e-9)
	assert.InDelta(t, 4, r.SkippedStateChanges, 1e-9)
	assert.InDelta(t, 1, r.PhysicsSteps, 1e-9)
	assert.Contains(t, buf.String(), "[Profiler] FPS: 2.00 | Draws: 5.0 | Shadow: 1.0 | Skipped: 4.0 | Steps: 1.0")
}

func TestTickResetsCounters(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	var buf bytes.Buffer
	p := NewProfiler(WithClock(clock.now), WithLogger(log.New(&buf, "", 0)), WithInterval(100*time.Millisecond))

	clock.advance(100 * time.Millisecond)
	require.True(t, p.Tick(Sample{DrawCalls: 10}))

	clock.advance(100 * time.Millisecond)
	require.True(t, p.Tick(Sample{DrawCalls: 2}))
	assert.InDelta(t, 2, p.Last().DrawCalls, 1e-9)
	assert.InDelta(t, 10, p.Last().FPS, 1e-9)
}
