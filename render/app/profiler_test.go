package app

import (
	"strings"
	"testing"
	"time"

	"github.com/gekko3d/prism"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfiler_AveragesScopes(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler()
	p.now = clock.now

	for _, d := range []time.Duration{2 * time.Millisecond, 4 * time.Millisecond} {
		p.BeginScope("render")
		clock.advance(d)
		p.EndScope("render")
	}
	assert.Equal(t, 3*time.Millisecond, p.Average("render"))
	assert.Equal(t, 2, p.Samples["render"])

	p.Reset()
	assert.Zero(t, p.Average("render"))
	assert.Equal(t, []string{"render"}, p.Order, "reset keeps order")
}

func TestProfiler_EndWithoutBegin(t *testing.T) {
	p := NewProfiler()
	p.EndScope("update")
	if p.Samples["update"] != 0 {
		t.Errorf("expected no samples, got %d", p.Samples["update"])
	}
}

func TestProfiler_StatsString(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler()
	p.now = clock.now

	p.BeginScope("update")
	clock.advance(1500 * time.Microsecond)
	p.EndScope("update")
	p.BeginScope("render")
	p.EndScope("render")
	p.SetCount("meshes", 1)
	p.SetCount("instances", 100)

	s := p.GetStatsString()
	assert.True(t, strings.HasPrefix(s, "Timings (CPU):\n"))
	assert.Contains(t, s, "update         : 1.50 ms")
	assert.Less(t, strings.Index(s, "update"), strings.Index(s, "render"), "scopes keep first-use order")
	assert.Less(t, strings.Index(s, "instances"), strings.Index(s, "meshes"), "counters are sorted")
}

func TestProfiler_ReportResets(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler()
	p.now = clock.now
	p.BeginScope("render")
	clock.advance(time.Millisecond)
	p.EndScope("render")

	p.Report(prism.NewNopLogger(), 60)
	assert.Zero(t, p.Average("render"))
}
