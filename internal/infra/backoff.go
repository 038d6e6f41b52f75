package infra

import (
	"math"
	"math/rand"
	"time"
)

const (
	backoffBase = 1 * time.Second
	backoffMax  = 30 * time.Second
)

// Backoff returns the reconnect delay for the given retry attempt:
// exponential growth from backoffBase, capped at backoffMax, with up to
// 25% random jitter so reconnecting batches do not stampede the provider.
func Backoff(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}
	delay := time.Duration(float64(backoffBase) * math.Pow(2, float64(retry)))
	if delay > backoffMax || delay <= 0 {
		delay = backoffMax
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}
