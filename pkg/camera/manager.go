package camera

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Manager holds the live camera settings and pushes accepted changes to
// the device through OnConfigChange.
type Manager struct {
	mu     sync.RWMutex
	config Config

	// OnConfigChange applies a validated config, usually Capture.Apply.
	OnConfigChange func(cfg Config) error
}

// NewManager creates a camera manager holding cfg.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig validates cfg, stores it and applies it.
func (m *Manager) SetConfig(cfg Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid camera config: %s", strings.Join(errs, "; "))
	}

	m.mu.Lock()
	m.config = cfg
	apply := m.OnConfigChange
	m.mu.Unlock()

	if apply == nil {
		return nil
	}
	if err := apply(cfg); err != nil {
		return fmt.Errorf("apply camera config: %w", err)
	}
	return nil
}

// setter writes one decoded JSON value into a config.
type setter func(cfg *Config, v any) bool

var setters = map[string]setter{
	"device":     intField(func(c *Config) *int { return &c.Device }),
	"width":      intField(func(c *Config) *int { return &c.Width }),
	"height":     intField(func(c *Config) *int { return &c.Height }),
	"framerate":  intField(func(c *Config) *int { return &c.Framerate }),
	"quality":    intField(func(c *Config) *int { return &c.Quality }),
	"brightness": floatField(func(c *Config) *float64 { return &c.Brightness }),
	"exposure":   floatField(func(c *Config) *float64 { return &c.Exposure }),
	"zoom_level": floatField(func(c *Config) *float64 { return &c.ZoomLevel }),
	"mirror": func(c *Config, v any) bool {
		b, ok := v.(bool)
		if ok {
			c.Mirror = b
		}
		return ok
	},
}

// UpdateConfig applies a partial update as sent by the dashboard. A "preset"
// key replaces every setting except the device before the other keys are
// applied. The update is all or nothing.
func (m *Manager) UpdateConfig(params map[string]any) error {
	cfg := m.GetConfig()

	if name, ok := params["preset"]; ok {
		s, _ := name.(string)
		preset := GetPreset(s)
		if preset == nil {
			return fmt.Errorf("unknown preset: %v", name)
		}
		preset.Device = cfg.Device
		cfg = *preset
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "preset" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		set, ok := setters[k]
		if !ok {
			return fmt.Errorf("unknown camera setting: %s", k)
		}
		if !set(&cfg, params[k]) {
			return fmt.Errorf("camera setting %s: unexpected value %v", k, params[k])
		}
	}

	return m.SetConfig(cfg)
}

// GetConfigJSON returns the current config as decoded JSON, the shape the
// dashboard posts back.
func (m *Manager) GetConfigJSON() map[string]any {
	data, _ := json.Marshal(m.GetConfig())
	var out map[string]any
	_ = json.Unmarshal(data, &out)
	return out
}

func intField(field func(*Config) *int) setter {
	return func(c *Config, v any) bool {
		var n int
		switch x := v.(type) {
		case int:
			n = x
		case int64:
			n = int(x)
		case float64:
			if x != float64(int(x)) {
				return false
			}
			n = int(x)
		case json.Number:
			i, err := x.Int64()
			if err != nil {
				return false
			}
			n = int(i)
		default:
			return false
		}
		*field(c) = n
		return true
	}
}

func floatField(field func(*Config) *float64) setter {
	return func(c *Config, v any) bool {
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case int:
			f = float64(x)
		case json.Number:
			var err error
			if f, err = x.Float64(); err != nil {
				return false
			}
		default:
			return false
		}
		*field(c) = f
		return true
	}
}
