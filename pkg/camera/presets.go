package camera

// Preset names for common configurations
const (
	PresetDefault  = "default"
	PresetLegacy   = "legacy"
	Preset720p     = "720p"
	Preset1080p    = "1080p"
	PresetLowPower = "lowpower"
	PresetZoom2x   = "zoom2x"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault:  DefaultConfig(),
		PresetLegacy:   LegacyConfig(),
		Preset720p:     HD720Config(),
		Preset1080p:    HD1080Config(),
		PresetLowPower: LowPowerConfig(),
		PresetZoom2x:   Zoom2xConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetDefault,
		PresetLegacy,
		Preset720p,
		Preset1080p,
		PresetLowPower,
		PresetZoom2x,
	}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// HD720Config returns 720p HD configuration.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// HD1080Config returns 1080p Full HD configuration.
func HD1080Config() Config {
	return DefaultConfig()
}

// LowPowerConfig trades resolution and rate for CPU time.
func LowPowerConfig() Config {
	cfg := LegacyConfig()
	cfg.Framerate = 15
	cfg.Quality = 70
	return cfg
}

// Zoom2xConfig crops to the centre half of the frame, for users sitting far
// from the camera.
func Zoom2xConfig() Config {
	cfg := DefaultConfig()
	cfg.ZoomLevel = 2.0
	return cfg
}
