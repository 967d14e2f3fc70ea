// Package perf records how long tracked functions take.
//
// Tracking is off by default; Track then costs a single atomic load. When enabled, every call
// records its duration in an HDR histogram keyed by function name.
package perf

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

const (
	// Durations are recorded in microseconds, from 1µs to 10 minutes.
	minTrackable = 1
	maxTrackable = int64(10 * time.Minute / time.Microsecond)
	sigFigures   = 3
)

var (
	enabled  atomic.Bool
	mu       sync.Mutex
	registry = map[string]*hdrhistogram.Histogram{}
)

// Stat is the timing summary for one tracked function.
type Stat struct {
	Name  string
	Count int64
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
	Total time.Duration
}

// Enable turns timing collection on.
func Enable() {
	enabled.Store(true)
}

// Disable turns timing collection off.
func Disable() {
	enabled.Store(false)
}

// Enabled reports whether timing collection is on.
func Enabled() bool {
	return enabled.Load()
}

// Reset discards every recorded timing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]*hdrhistogram.Histogram{}
}

// Track starts timing name and returns the function that stops it. Use as
// `defer perf.Track(cfg, "pkg.Func")()`. The configuration may be nil.
func Track(cfg *schema.Configuration, name string) func() {
	if cfg != nil && cfg.Profiler.Enabled {
		Enable()
	}
	if !enabled.Load() {
		return func() {}
	}

	start := time.Now()
	return func() {
		record(name, time.Since(start))
	}
}

func record(name string, elapsed time.Duration) {
	value := elapsed.Microseconds()
	if value < minTrackable {
		value = minTrackable
	}
	if value > maxTrackable {
		value = maxTrackable
	}

	mu.Lock()
	defer mu.Unlock()

	h, ok := registry[name]
	if !ok {
		h = hdrhistogram.New(minTrackable, maxTrackable, sigFigures)
		registry[name] = h
	}
	_ = h.RecordValue(value)
}

// Snapshot returns the recorded timings sorted by total time, slowest first.
func Snapshot() []Stat {
	mu.Lock()
	defer mu.Unlock()

	stats := make([]Stat, 0, len(registry))
	for name, h := range registry {
		count := h.TotalCount()
		stats = append(stats, Stat{
			Name:  name,
			Count: count,
			P50:   micros(h.ValueAtQuantile(50)),
			P95:   micros(h.ValueAtQuantile(95)),
			Max:   micros(h.Max()),
			Total: micros(int64(h.Mean() * float64(count))),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total == stats[j].Total {
			return stats[i].Name < stats[j].Name
		}
		return stats[i].Total > stats[j].Total
	})
	return stats
}

// Report writes the recorded timings as a table.
func Report(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FUNCTION\tCOUNT\tP50\tP95\tMAX\tTOTAL")
	for _, s := range Snapshot() {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", s.Name, s.Count, s.P50, s.P95, s.Max, s.Total)
	}
	return tw.Flush()
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
