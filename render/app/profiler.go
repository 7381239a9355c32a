package app

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/gekko3d/prism"
)

// Profiler accumulates CPU time per named scope across frames until Reset, so the
// report shows per-frame averages over the window.
type Profiler struct {
	Scopes     map[string]time.Duration
	Samples    map[string]int
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	now func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		Samples:    make(map[string]int),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		now:        time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.now()
	if !slices.Contains(p.Order, name) {
		p.Order = append(p.Order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	start, ok := p.StartTimes[name]
	if !ok {
		return
	}
	delete(p.StartTimes, name)
	p.Scopes[name] += p.now().Sub(start)
	p.Samples[name]++
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// Average is the mean duration of a scope since the last Reset.
func (p *Profiler) Average(name string) time.Duration {
	n := p.Samples[name]
	if n == 0 {
		return 0
	}
	return p.Scopes[name] / time.Duration(n)
}

// Reset clears the timings and keeps scope order and counters.
func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
		p.Samples[k] = 0
	}
}

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		ms := float64(p.Average(name).Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
	}

	return sb.String()
}

// Report logs the stats at debug level with the current frame rate, then resets.
func (p *Profiler) Report(logger prism.Logger, fps float64) {
	if logger.DebugEnabled() {
		logger.Debugf("%.1f fps\n%s", fps, p.GetStatsString())
	}
	p.Reset()
}
