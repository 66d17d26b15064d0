package fx

import (
	"fmt"
	"math"
	"time"

	"softy/internal/cache"
)

// DefaultNoticeThreshold is the relative move that raises a notice.
const DefaultNoticeThreshold = 0.02

// changeTolerance absorbs float error so a move of exactly the threshold
// (1.00 -> 1.02) stays quiet.
const changeTolerance = 1e-9

type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Observation is what the tracker knows after a new rate for a pair.
type Observation struct {
	Previous    float64
	HasPrevious bool
	Change      float64
	Direction   Direction
	Notice      string
}

// RateTracker remembers the last rate seen per pair.
type RateTracker struct {
	last      *cache.LRUCache[float64]
	threshold float64
}

// NewRateTracker keeps up to 256 pairs for a day. A threshold outside
// (0, 1) falls back to DefaultNoticeThreshold.
func NewRateTracker(threshold float64) *RateTracker {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultNoticeThreshold
	}
	return &RateTracker{
		last:      cache.NewLRUCache[float64](256, 24*time.Hour),
		threshold: threshold,
	}
}

func pairKey(from, to string) string { return from + "/" + to }

// Observe records rate for the pair and compares it with the previous one.
func (t *RateTracker) Observe(from, to string, rate float64) Observation {
	prev, ok := t.last.Swap(pairKey(from, to), rate)
	if !ok || prev <= 0 {
		return Observation{}
	}

	obs := Observation{
		Previous:    prev,
		HasPrevious: true,
		Change:      (rate - prev) / prev,
	}
	switch {
	case rate > prev:
		obs.Direction = DirectionUp
	case rate < prev:
		obs.Direction = DirectionDown
	default:
		obs.Direction = DirectionFlat
	}
	if math.Abs(obs.Change) > t.threshold+changeTolerance {
		obs.Notice = fmt.Sprintf("%s/%s moved more than %s: %.4f -> %.4f",
			from, to, formatThreshold(t.threshold), prev, rate)
	}
	return obs
}

// Forget drops the remembered rate for a pair.
func (t *RateTracker) Forget(from, to string) {
	t.last.Delete(pairKey(from, to))
}

// Cache exposes the backing cache for periodic cleanup.
func (t *RateTracker) Cache() *cache.LRUCache[float64] {
	return t.last
}

func formatThreshold(v float64) string {
	return fmt.Sprintf("%g%%", math.Round(v*10000)/100)
}
