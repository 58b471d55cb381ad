package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-posture/pkg/slouch"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	require.NoError(t, executeContext(context.Background(), "version"))
	assert.Equal(t, "posture dev\n", out.String())
}

func TestApplyFlags(t *testing.T) {
	require.NoError(t, runCmd.ParseFlags([]string{"--port", "9000", "--debug", "--device", "2"}))
	t.Cleanup(func() {
		runCmd.Flags().Set("port", "")
		runCmd.Flags().Set("debug", "false")
		runCmd.Flags().Set("device", "0")
	})

	cfg := slouch.DefaultConfig()
	applyFlags(runCmd, &cfg)

	assert.Equal(t, "9000", cfg.Web.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Camera.Device)
	assert.Equal(t, slouch.DefaultConfig().Detection.ModelPath, cfg.Detection.ModelPath)
}
