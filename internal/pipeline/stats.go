package pipeline

import (
	"slices"
	"sync"
	"time"
)

type extraction struct {
	at        time.Time
	took      time.Duration
	questions int
}

// LatencySnapshot aggregates the extractions still inside the window.
type LatencySnapshot struct {
	Documents int     `json:"documents"`
	Questions int     `json:"questions"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// LatencyStats keeps a rolling window of per-document extraction times.
type LatencyStats struct {
	mu     sync.Mutex
	window time.Duration
	recent []extraction
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window, recent: make([]extraction, 0, 128)}
}

// Record adds one finished document. Negative durations count as zero.
func (s *LatencyStats) Record(took time.Duration, questions int) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(now)
	s.recent = append(s.recent, extraction{at: now, took: max(took, 0), questions: questions})
}

func (s *LatencyStats) Snapshot() LatencySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(time.Now())

	n := len(s.recent)
	if n == 0 {
		return LatencySnapshot{}
	}
	ms := make([]int64, n)
	var total int64
	snap := LatencySnapshot{Documents: n}
	for i, e := range s.recent {
		ms[i] = e.took.Milliseconds()
		total += ms[i]
		snap.Questions += e.questions
	}
	slices.Sort(ms)

	snap.MinMs = ms[0]
	snap.MaxMs = ms[n-1]
	snap.AvgMs = float64(total) / float64(n)
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

// expire drops entries older than the window. Callers hold mu.
func (s *LatencyStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	s.recent = slices.DeleteFunc(s.recent, func(e extraction) bool {
		return e.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}
