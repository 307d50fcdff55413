package safety

import (
	"math"
	"time"
)

// DefaultAlertThreshold is the combined-score threshold below which a user
// is judged unsafe on disconnect. The value corresponds to a score of 1
// persisting for roughly four hours without a fresh ping.
const DefaultAlertThreshold = 0.0042553239

// CombinedScore is the unsafe-detection signal: the safety score captured at
// the last persisted ping, divided by the minutes elapsed since it.
//
// A low score that persists (user not moving, not re-pinging) drives the
// signal down; a high score or a very recent ping keeps it up. Elapsed time
// is taken as an absolute value and floored at one minute to avoid division
// by zero for pings in the same instant (or with skewed clocks).
func CombinedScore(score float64, lastSeen, now time.Time) float64 {
	minutes := math.Abs(now.Sub(lastSeen).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return score / minutes
}

// IsSafe judges a combined score against a threshold. The boundary favors
// safe: combined exactly at the threshold means no alert.
func IsSafe(combined, threshold float64) bool {
	return combined >= threshold
}
