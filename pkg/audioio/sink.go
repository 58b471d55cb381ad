package audioio

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable is returned when no audio output can be opened.
var ErrUnavailable = errors.New("audioio: no audio output available")

// Sink is an audio output. One playback is Start, any number of Writes,
// then Flush to let it drain or Clear to cut it off.
type Sink interface {
	Start(ctx context.Context) error

	// Stop is Clear for callers that think in start/stop pairs. Idempotent.
	Stop() error

	// Write queues a chunk. It may block while the device catches up.
	Write(ctx context.Context, chunk AudioChunk) error

	// Flush ends the playback and waits until the device has drained it.
	Flush(ctx context.Context) error

	// Clear ends the playback immediately, dropping queued audio.
	Clear() error

	Config() Config

	// Name is the backend, e.g. "alsa", "coreaudio" or "mock".
	Name() string

	// Close releases the device; the sink cannot be started again.
	io.Closer
}

// SinkStats counts what a sink has played.
type SinkStats struct {
	ChunksWritten  int64  `json:"chunks_written"`
	SamplesWritten int64  `json:"samples_written"`
	Plays          int64  `json:"plays"`
	Running        bool   `json:"running"`
	Backend        string `json:"backend"`
}

// SinkWithStats is a Sink that reports SinkStats.
type SinkWithStats interface {
	Sink
	Stats() SinkStats
}
