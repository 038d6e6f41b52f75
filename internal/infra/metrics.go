package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Ingestion counters
	messagesDecoded atomic.Uint64
	decodeErrors    atomic.Uint64
	staleDropped    atomic.Uint64
	reconnects      atomic.Uint64

	// Persistence counters
	flushes     atomic.Uint64
	flushErrors atomic.Uint64
	sweeps      atomic.Uint64
	sweepErrors atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordMessage records one successfully decoded stream message.
func (m *Metrics) RecordMessage() {
	m.messagesDecoded.Add(1)
}

// RecordDecodeError records a dropped malformed message.
func (m *Metrics) RecordDecodeError() {
	m.decodeErrors.Add(1)
}

// RecordStaleDrop records a quote rejected by the cache for being older
// than the current entry.
func (m *Metrics) RecordStaleDrop() {
	m.staleDropped.Add(1)
}

// RecordReconnect records one reconnect cycle on a stream connection.
func (m *Metrics) RecordReconnect() {
	m.reconnects.Add(1)
}

// RecordFlush records a snapshot flush attempt.
func (m *Metrics) RecordFlush(err error) {
	m.flushes.Add(1)
	if err != nil {
		m.flushErrors.Add(1)
	}
}

// RecordSweep records a retention sweep attempt.
func (m *Metrics) RecordSweep(err error) {
	m.sweeps.Add(1)
	if err != nil {
		m.sweepErrors.Add(1)
	}
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	MessagesDecoded   uint64
	DecodeErrors      uint64
	StaleDropped      uint64
	Reconnects        uint64
	Flushes           uint64
	FlushErrors       uint64
	Sweeps            uint64
	SweepErrors       uint64
	ActiveConnections int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		MessagesDecoded:   m.messagesDecoded.Load(),
		DecodeErrors:      m.decodeErrors.Load(),
		StaleDropped:      m.staleDropped.Load(),
		Reconnects:        m.reconnects.Load(),
		Flushes:           m.flushes.Load(),
		FlushErrors:       m.flushErrors.Load(),
		Sweeps:            m.sweeps.Load(),
		SweepErrors:       m.sweepErrors.Load(),
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.messagesDecoded.Store(0)
	m.decodeErrors.Store(0)
	m.staleDropped.Store(0)
	m.reconnects.Store(0)
	m.flushes.Store(0)
	m.flushErrors.Store(0)
	m.sweeps.Store(0)
	m.sweepErrors.Store(0)
	m.activeConnections.Store(0)
}
