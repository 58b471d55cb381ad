package slouch

import (
	"context"
	"time"
)

// streamCameraToWeb pushes the latest camera frame to preview clients.
// Frames are only encoded for the dashboard while someone is watching.
func (a *App) streamCameraToWeb(ctx context.Context) {
	if a.config.PreviewInterval <= 0 {
		return
	}

	ticker := time.NewTicker(a.config.PreviewInterval)
	defer ticker.Stop()

	frameCount := 0
	lastTime := -1.0
	lastErr := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.webServer.CameraViewers() == 0 {
				continue
			}
			frame, err := a.video.Latest()
			if err != nil {
				if time.Since(lastErr) > 5*time.Second {
					a.logger.Debug("preview frame unavailable", "error", err)
					lastErr = time.Now()
				}
				continue
			}
			if frame.JPEG == nil || frame.Time == lastTime {
				continue
			}
			lastTime = frame.Time
			a.webServer.SendCameraFrame(frame.JPEG)

			frameCount++
			if frameCount == 1 {
				a.logger.Info("first preview frame sent", "bytes", len(frame.JPEG))
			}
		}
	}
}
