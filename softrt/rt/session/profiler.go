package session

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gekko3d/orrery"
)

// Profiler times the named phases of a frame (update, raster, upload) and
// keeps the per-frame pipeline counters. Totals accumulate until Reset so
// the headless run can report averages.
type Profiler struct {
	Scopes     map[string]time.Duration
	Totals     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string
	Frames     int
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		Totals:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = time.Now()
	if !slices.Contains(p.Order, name) {
		p.Order = append(p.Order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	start, ok := p.StartTimes[name]
	if !ok {
		return
	}
	d := time.Since(start)
	p.Scopes[name] = d
	p.Totals[name] += d
	delete(p.StartTimes, name)
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// RecordFrame copies the counters of one rendered frame and closes it.
func (p *Profiler) RecordFrame(st orrery.FrameStats) {
	p.SetCount("bodies", st.Drawn)
	p.SetCount("skipped", st.Skipped)
	p.SetCount("triangles", st.Triangles)
	p.SetCount("culled", st.Culled.Total())
	p.SetCount("fragments", st.Fragments)
	p.SetCount("written", st.Written)
	p.SetCount("orbit segs", st.OrbitSegments)
	p.Frames++
}

// Average is the mean duration of a scope over the recorded frames.
func (p *Profiler) Average(name string) time.Duration {
	if p.Frames == 0 {
		return 0
	}
	return p.Totals[name] / time.Duration(p.Frames)
}

// Reset drops totals and the frame count. Order is kept so the report
// layout stays stable.
func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
		p.Totals[k] = 0
	}
	p.Frames = 0
}

func (p *Profiler) StatsString() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		fmt.Fprintf(&sb, "  %-15s: %.2f ms (avg %.2f ms)\n", name, ms(p.Scopes[name]), ms(p.Average(name)))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.Counts[k])
	}
	return sb.String()
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
