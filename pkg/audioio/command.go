package audioio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

// CommandSink plays raw PCM by piping it into an external player process.
// Each Start..Flush cycle runs one process.
type CommandSink struct {
	cfg    Config
	logger *slog.Logger
	name   string
	path   string
	args   []string

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	closed bool

	chunksWritten  atomic.Int64
	samplesWritten atomic.Int64
	plays          atomic.Int64
}

// NewCommandSink creates a sink that runs path with args for every playback
// and writes PCM16 little-endian samples to its stdin.
func NewCommandSink(cfg Config, logger *slog.Logger, name, path string, args ...string) *CommandSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandSink{cfg: cfg, logger: logger, name: name, path: path, args: args}
}

func newALSASink(cfg Config, logger *slog.Logger) (*CommandSink, error) {
	path, err := exec.LookPath("aplay")
	if err != nil {
		return nil, fmt.Errorf("%w: aplay: %v", ErrUnavailable, err)
	}
	device := cfg.Device
	if device == "" {
		device = "default"
	}
	return NewCommandSink(cfg, logger, "alsa", path,
		"-q", "-t", "raw", "-f", "S16_LE",
		"-r", strconv.Itoa(cfg.SampleRate),
		"-c", strconv.Itoa(cfg.Channels),
		"-D", device,
	), nil
}

func newCoreAudioSink(cfg Config, logger *slog.Logger) (*CommandSink, error) {
	path, err := exec.LookPath("play")
	if err != nil {
		return nil, fmt.Errorf("%w: sox play: %v", ErrUnavailable, err)
	}
	return NewCommandSink(cfg, logger, "coreaudio", path,
		"-q", "-t", "raw", "-e", "signed-integer", "-b", "16", "-L",
		"-r", strconv.Itoa(cfg.SampleRate),
		"-c", strconv.Itoa(cfg.Channels),
		"-",
	), nil
}

// Start launches the player process. Starting a running sink does nothing.
func (s *CommandSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.cmd != nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, s.path, s.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%s stdin: %w", s.name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.name, err)
	}

	s.cmd, s.stdin = cmd, stdin
	s.plays.Add(1)
	s.logger.Debug("audio player started", "backend", s.name, "pid", cmd.Process.Pid)
	return nil
}

// Write sends one chunk to the player.
func (s *CommandSink) Write(ctx context.Context, chunk AudioChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.stdin == nil {
		return fmt.Errorf("%s sink not running", s.name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.stdin.Write(chunk.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", s.name, err)
	}

	s.chunksWritten.Add(1)
	s.samplesWritten.Add(int64(len(chunk.Samples)))
	return nil
}

// Flush closes the player's input and waits for it to finish playing.
func (s *CommandSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	cmd, stdin := s.cmd, s.stdin
	s.cmd, s.stdin = nil, nil
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}
	_ = stdin.Close()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s exited: %w", s.name, err)
		}
		return nil
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}

// Clear kills the player, dropping anything not yet played.
func (s *CommandSink) Clear() error {
	s.mu.Lock()
	cmd, stdin := s.cmd, s.stdin
	s.cmd, s.stdin = nil, nil
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}
	_ = stdin.Close()
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		s.logger.Debug("kill audio player", "backend", s.name, "error", err)
	}
	_ = cmd.Wait()
	return nil
}

// Stop halts playback. It is safe to call Stop multiple times.
func (s *CommandSink) Stop() error {
	return s.Clear()
}

// Config returns the audio configuration.
func (s *CommandSink) Config() Config {
	return s.cfg
}

// Name returns the backend name.
func (s *CommandSink) Name() string {
	return s.name
}

// Close stops playback and prevents further use.
func (s *CommandSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.Stop()
}

// Stats returns sink statistics.
func (s *CommandSink) Stats() SinkStats {
	s.mu.Lock()
	running := s.cmd != nil
	s.mu.Unlock()

	return SinkStats{
		ChunksWritten:  s.chunksWritten.Load(),
		SamplesWritten: s.samplesWritten.Load(),
		Plays:          s.plays.Load(),
		Running:        running,
		Backend:        s.name,
	}
}

var _ SinkWithStats = (*CommandSink)(nil)
