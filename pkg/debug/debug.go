// Package debug provides global debug logging flags
package debug

import "log/slog"

// Enabled controls whether debug logging is active
var Enabled bool

// Frames controls whether every processed frame is traced (anchors, drop, decision).
// Use --debug-frames to enable these very verbose logs
var Frames bool

// Log logs a message only if debug mode is enabled
func Log(msg string, args ...any) {
	if Enabled {
		slog.Info(msg, args...)
	}
}

// FrameLog logs a message only if frame tracing is enabled
func FrameLog(msg string, args ...any) {
	if Frames {
		slog.Info(msg, args...)
	}
}
