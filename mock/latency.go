package mock

import (
	"math/rand/v2"
	"time"
)

// LatencyFunc computes the emulated server latency of an operation.
type LatencyFunc func(c *Context) time.Duration

// FixedLatency returns a LatencyFunc that always yields d.
func FixedLatency(d time.Duration) LatencyFunc {
	return func(*Context) time.Duration { return d }
}

// RandomLatency returns a LatencyFunc drawing uniformly from [lo, hi].
func RandomLatency(lo, hi time.Duration) LatencyFunc {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := int64(hi - lo)
	return func(*Context) time.Duration {
		return lo + time.Duration(rand.Int64N(span+1))
	}
}
