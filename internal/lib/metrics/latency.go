// Package metrics keeps in-process latency histograms per route.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// values are recorded in microseconds, up to one minute
	lowestTrackable  = 1
	highestTrackable = int64(time.Minute / time.Microsecond)
	significantFigs  = 3
)

// RouteLatency summarizes the recorded latencies of one route in milliseconds.
type RouteLatency struct {
	Route  string  `json:"route"`
	Count  int64   `json:"count"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// LatencyRecorder is safe for concurrent use.
type LatencyRecorder struct {
	mu         sync.Mutex
	histograms map[string]*hdrhistogram.Histogram
}

func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{histograms: make(map[string]*hdrhistogram.Histogram)}
}

// Record adds one observation; values beyond the trackable range are clamped.
func (r *LatencyRecorder) Record(route string, d time.Duration) {
	v := d.Microseconds()
	if v < lowestTrackable {
		v = lowestTrackable
	}
	if v > highestTrackable {
		v = highestTrackable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histograms[route]
	if !ok {
		h = hdrhistogram.New(lowestTrackable, highestTrackable, significantFigs)
		r.histograms[route] = h
	}
	_ = h.RecordValue(v)
}

// Snapshot returns the summary of every route, sorted by route.
func (r *LatencyRecorder) Snapshot() []RouteLatency {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RouteLatency, 0, len(r.histograms))
	for route, h := range r.histograms {
		out = append(out, RouteLatency{
			Route:  route,
			Count:  h.TotalCount(),
			MeanMs: h.Mean() / 1000,
			P50Ms:  float64(h.ValueAtQuantile(50)) / 1000,
			P95Ms:  float64(h.ValueAtQuantile(95)) / 1000,
			P99Ms:  float64(h.ValueAtQuantile(99)) / 1000,
			MaxMs:  float64(h.Max()) / 1000,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

// Reset drops every histogram.
func (r *LatencyRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histograms = make(map[string]*hdrhistogram.Histogram)
}
