//go:build !nocv

package camera

import (
	"context"
	"testing"
	"time"
)

func TestCapture_Webcam(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping webcam test in short mode")
	}

	cfg := LegacyConfig()
	c := NewCapture(cfg, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Skipf("no webcam available: %v", err)
	}
	defer c.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for c.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if c.Count() == 0 {
		t.Fatal("no frames captured")
	}

	cfg.Mirror = true
	if err := c.Apply(cfg); err != nil {
		t.Errorf("Apply: %v", err)
	}
	c.Stop()
	c.Stop()
}
