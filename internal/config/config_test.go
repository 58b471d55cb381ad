package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sample struct {
	Port     string        `env:"POSTURE_TEST_PORT" envDefault:"8080"`
	Delay    time.Duration `env:"POSTURE_TEST_DELAY" envDefault:"1s"`
	Required string        `env:"POSTURE_TEST_NAME"`
}

func TestParseEnv_Defaults(t *testing.T) {
	var s sample
	if err := ParseEnv(&s); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if s.Port != "8080" {
		t.Errorf("Port = %q, want 8080", s.Port)
	}
	if s.Delay != time.Second {
		t.Errorf("Delay = %v, want 1s", s.Delay)
	}
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("POSTURE_TEST_PORT", "9090")
	t.Setenv("POSTURE_TEST_DELAY", "250ms")

	var s sample
	if err := ParseEnv(&s); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if s.Port != "9090" || s.Delay != 250*time.Millisecond {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	var s sample
	if err := Load(&s, filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_ReadsDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("POSTURE_TEST_NAME=desk\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("POSTURE_TEST_NAME") })

	var s sample
	if err := Load(&s, path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Required != "desk" {
		t.Errorf("Required = %q, want desk", s.Required)
	}
}
