package binance

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"crypto_converter/internal/domain"
	"crypto_converter/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	handshakeTimeout = 10 * time.Second
	// idleTimeout treats a silent connection as dead. Binance pings every
	// ~3 minutes, so any healthy ticker stream produces traffic well inside
	// this window.
	idleTimeout = 90 * time.Second
)

// ConnState is the lifecycle state of one batch connection. It is owned
// exclusively by its Worker; other components only read it.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateConnected
	StateReconnecting
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

// QuoteSink receives decoded quotes. Returns whether the quote was applied.
type QuoteSink interface {
	Update(q domain.Quote) bool
}

// Worker owns one combined-stream connection for its batch of pairs. It
// reconnects forever with capped backoff; a batch is never abandoned while
// the process runs. Resubscription is idempotent because the full batch is
// encoded in the stream URL, so a reconnect re-dials the same subscription.
type Worker struct {
	id        int
	wsBase    string
	batch     []domain.Pair
	symToPair map[string]domain.Pair
	sink      QuoteSink

	conn   *websocket.Conn
	mu     sync.RWMutex
	state  atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewWorker creates a worker for one batch. The batch is immutable for the
// life of the worker.
func NewWorker(id int, wsBase string, batch []domain.Pair, sink QuoteSink) *Worker {
	symToPair := make(map[string]domain.Pair, len(batch))
	for _, p := range batch {
		symToPair[p.Symbol()] = p
	}
	return &Worker{
		id:        id,
		wsBase:    strings.TrimRight(wsBase, "/"),
		batch:     batch,
		symToPair: symToPair,
		sink:      sink,
		logger:    slog.Default().With("module", "binance_worker", "batch", id),
	}
}

// State returns the current connection state.
func (w *Worker) State() ConnState {
	return ConnState(w.state.Load())
}

func (w *Worker) setState(s ConnState) {
	w.state.Store(int32(s))
}

// streamURL builds the combined-stream endpoint covering the whole batch,
// e.g. wss://host/stream?streams=dogeusdt@ticker/btcusdt@ticker.
func (w *Worker) streamURL() string {
	names := make([]string, len(w.batch))
	for i, p := range w.batch {
		names[i] = p.StreamName()
	}
	return w.wsBase + "/stream?streams=" + strings.Join(names, "/")
}

// Connect starts the connection loop.
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

// connectionLoop dials, reads until failure, then backs off and re-dials.
// Network failures are never fatal to the process.
func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Worker panic recovered", slog.Any("panic", r))
		}
	}()
	defer w.setState(StateClosed)

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.setState(StateConnecting)
		if err := w.connect(ctx); err != nil {
			w.setState(StateReconnecting)
			infra.GlobalMetrics.RecordReconnect()
			delay := infra.Backoff(retryCount)
			retryCount++
			w.logger.Warn("Stream connection failed",
				slog.Any("error", err),
				slog.Int("retry", retryCount),
				slog.Duration("backoff", delay),
			)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retryCount = 0
		w.setState(StateConnected)
		infra.GlobalMetrics.IncrementConnections()

		w.readLoop(ctx)

		infra.GlobalMetrics.DecrementConnections()
		select {
		case <-ctx.Done():
			return
		default:
		}
		// Read error or idle timeout: cycle through RECONNECTING.
		w.setState(StateReconnecting)
		infra.GlobalMetrics.RecordReconnect()
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, w.streamURL(), nil)
	if err != nil {
		return domain.NewNetworkError("dial", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	w.logger.Info("Stream connected", slog.Int("streams", len(w.batch)))
	return nil
}

// readLoop reads and decodes messages until the connection fails. A read
// with no traffic inside idleTimeout fails the connection.
func (w *Worker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.closeConnection()
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

// handleMessage decodes one stream payload into a quote and applies it to
// the sink. Malformed messages are dropped and counted, never fatal.
func (w *Worker) handleMessage(msg []byte) {
	var wrapped combinedStreamMessage
	if err := json.Unmarshal(msg, &wrapped); err != nil {
		infra.GlobalMetrics.RecordDecodeError()
		return
	}

	data := wrapped.Data
	if data.Symbol == "" {
		// Some endpoints deliver the payload unwrapped.
		if err := json.Unmarshal(msg, &data); err != nil || data.Symbol == "" {
			infra.GlobalMetrics.RecordDecodeError()
			return
		}
	}

	pair, tracked := w.symToPair[data.Symbol]
	if !tracked {
		// Never part of this batch's universe (e.g. a dynamic listing):
		// drop without counting it as a decode failure.
		return
	}

	price, err := decimal.NewFromString(data.LastPrice)
	if err != nil || !price.IsPositive() {
		infra.GlobalMetrics.RecordDecodeError()
		return
	}

	observedAt := time.UnixMilli(data.EventTime).UTC()
	if data.EventTime <= 0 {
		observedAt = time.Now().UTC()
	}

	infra.GlobalMetrics.RecordMessage()

	applied := w.sink.Update(domain.Quote{
		Pair:       pair,
		Price:      price,
		ObservedAt: observedAt,
	})
	if !applied {
		infra.GlobalMetrics.RecordStaleDrop()
	}
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}

// Disconnect closes the connection cleanly and waits for the loop to exit.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
