package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-posture/pkg/audioio"
)

// ErrNoAudio is returned when no output device is available.
var ErrNoAudio = errors.New("audio: no output device")

// DefaultPlayTimeout bounds one playback including the device drain.
const DefaultPlayTimeout = 3 * time.Second

// Player plays the alert tone on an audio sink. Overlapping plays are
// dropped rather than queued.
type Player struct {
	sink    audioio.Sink
	tone    Tone
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	samples []int16

	plays   atomic.Int64
	skipped atomic.Int64
}

// NewPlayer creates a player for sink. A nil sink yields a player whose
// PlayAlert always returns ErrNoAudio.
func NewPlayer(sink audioio.Sink, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Player{sink: sink, tone: AlertChirp(), logger: logger, timeout: DefaultPlayTimeout}
	if sink != nil {
		p.samples = render(p.tone, sink.Config())
	}
	return p
}

func render(t Tone, cfg audioio.Config) []int16 {
	s := t.Render(cfg.SampleRate)
	if cfg.Channels == 2 {
		s = audioio.MonoToStereo(s)
	}
	return s
}

// PlayAlert plays the chirp and waits for it to finish.
func (p *Player) PlayAlert() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.Play(ctx)
}

// Play plays the chirp, honouring ctx. If a chirp is already playing the
// call returns nil without playing.
func (p *Player) Play(ctx context.Context) error {
	if p.sink == nil {
		return ErrNoAudio
	}
	if !p.mu.TryLock() {
		p.skipped.Add(1)
		return nil
	}
	defer p.mu.Unlock()

	cfg := p.sink.Config()
	if err := p.sink.Start(ctx); err != nil {
		return fmt.Errorf("start %s: %w", p.sink.Name(), err)
	}

	for _, chunk := range audioio.Chunks(p.samples, cfg.SampleRate, cfg.Channels, cfg.BufferSize()) {
		if err := p.sink.Write(ctx, chunk); err != nil {
			_ = p.sink.Clear()
			return fmt.Errorf("write %s: %w", p.sink.Name(), err)
		}
	}
	if err := p.sink.Flush(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", p.sink.Name(), err)
	}

	n := p.plays.Add(1)
	p.logger.Debug("alert tone played", "backend", p.sink.Name(), "plays", n)
	return nil
}

// Plays returns how many chirps finished playing.
func (p *Player) Plays() int64 {
	return p.plays.Load()
}

// Skipped returns how many chirps were dropped because one was playing.
func (p *Player) Skipped() int64 {
	return p.skipped.Load()
}

// Available reports whether the player has a device.
func (p *Player) Available() bool {
	return p.sink != nil
}

// Close releases the sink.
func (p *Player) Close() error {
	if p.sink == nil {
		return nil
	}
	return p.sink.Close()
}
