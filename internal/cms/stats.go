package cms

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at         time.Time
	durationMs int64
	failed     bool
}

// StatsSnapshot summarises the CMS requests made within the window.
type StatsSnapshot struct {
	Requests int     `json:"requests"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
}

// Stats keeps a rolling window of request latencies.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window}
}

// Record adds one request. Negative durations are clamped to zero.
func (s *Stats) Record(durationMs int64, failed bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	s.samples = append(s.samples, sample{at: now, durationMs: max(durationMs, 0), failed: failed})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(time.Now())

	var snap StatsSnapshot
	if len(s.samples) == 0 {
		return snap
	}
	ms := make([]int64, len(s.samples))
	var total int64
	for i, sm := range s.samples {
		ms[i] = sm.durationMs
		total += sm.durationMs
		if sm.failed {
			snap.Failures++
		}
	}
	slices.Sort(ms)

	snap.Requests = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(total) / float64(len(ms))
	snap.P50Ms = interpolate(ms, 0.50)
	snap.P95Ms = interpolate(ms, 0.95)
	return snap
}

func (s *Stats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	s.samples = s.samples[i:]
}

// interpolate returns the q-quantile of sorted values with linear
// interpolation between ranks.
func interpolate(sorted []int64, q float64) float64 {
	pos := float64(len(sorted)-1) * q
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
