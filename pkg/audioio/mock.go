package audioio

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// MockSink is an in-memory audio sink for testing.
// It keeps every written sample and tracks statistics.
type MockSink struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	failErr error
	buffer  []int16
	played  [][]int16

	chunksWritten  atomic.Int64
	samplesWritten atomic.Int64
	plays          atomic.Int64
}

// NewMockSink creates a new mock audio sink.
func NewMockSink(cfg Config, logger *slog.Logger) *MockSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSink{cfg: cfg, logger: logger}
}

// FailWith makes Start return err until cleared with nil.
func (m *MockSink) FailWith(err error) {
	m.mu.Lock()
	m.failErr = err
	m.mu.Unlock()
}

// Start begins accepting audio.
func (m *MockSink) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	if m.failErr != nil {
		return m.failErr
	}
	if !m.running {
		m.running = true
		m.plays.Add(1)
	}
	return nil
}

// Stop halts audio acceptance and drops unflushed samples.
func (m *MockSink) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	m.buffer = nil
	return nil
}

// Write accepts an audio chunk.
func (m *MockSink) Write(ctx context.Context, chunk AudioChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || !m.running {
		return io.ErrClosedPipe
	}

	m.buffer = append(m.buffer, chunk.Samples...)
	m.chunksWritten.Add(1)
	m.samplesWritten.Add(int64(len(chunk.Samples)))
	return nil
}

// Flush marks the buffered samples as played and ends the playback.
func (m *MockSink) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(m.buffer) > 0 {
		m.played = append(m.played, m.buffer)
	}
	m.buffer = nil
	m.running = false
	return nil
}

// Clear discards buffered audio.
func (m *MockSink) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffer = nil
	m.logger.Debug("mock audio sink cleared")
	return nil
}

// Played returns the samples of each completed playback.
func (m *MockSink) Played() [][]int16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]int16(nil), m.played...)
}

// Config returns the audio configuration.
func (m *MockSink) Config() Config {
	return m.cfg
}

// Name returns "mock".
func (m *MockSink) Name() string {
	return "mock"
}

// Close releases resources.
func (m *MockSink) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	return m.Stop()
}

// Stats returns sink statistics.
func (m *MockSink) Stats() SinkStats {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()

	return SinkStats{
		ChunksWritten:  m.chunksWritten.Load(),
		SamplesWritten: m.samplesWritten.Load(),
		Plays:          m.plays.Load(),
		Running:        running,
		Backend:        "mock",
	}
}

// Ensure MockSink implements SinkWithStats.
var _ SinkWithStats = (*MockSink)(nil)
