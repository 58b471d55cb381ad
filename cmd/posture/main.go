// Posture monitor - webcam slouch detection with a browser dashboard.
// Calibrate an upright baseline, start monitoring, and get a chirp and an
// on-screen alert when your head drops below it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-posture/internal/log"
	"github.com/teslashibe/go-posture/pkg/slouch"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	envFile     string
	port        string
	logLevel    string
	logFile     string
	modelPath   string
	device      int
	debugMode   bool
	debugFrames bool
)

var rootCmd = &cobra.Command{
	Use:           "posture",
	Short:         "Webcam posture monitor",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the camera, detection loop and dashboard",
	RunE:  runMonitor,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "posture", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	f := runCmd.Flags()
	f.StringVar(&port, "port", "", "dashboard port (overrides PORT)")
	f.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	f.StringVar(&logFile, "log-file", "", "also write logs to this rotating file (overrides LOG_FILE)")
	f.StringVar(&modelPath, "model", "", "face detection model (overrides MODEL_PATH)")
	f.IntVar(&device, "device", 0, "camera device index (overrides CAMERA_DEVICE)")
	f.BoolVar(&debugMode, "debug", false, "enable verbose debug logging")
	f.BoolVar(&debugFrames, "debug-frames", false, "trace every processed frame")

	rootCmd.AddCommand(runCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg, err := slouch.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	applyFlags(cmd, &cfg)

	log.Init(log.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	app, err := slouch.New(cfg)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := app.Init(); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}
	return nil
}

// applyFlags overrides cfg with the flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *slouch.Config) {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Web.Port = port
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if f.Changed("model") {
		cfg.Detection.ModelPath = modelPath
	}
	if f.Changed("device") {
		cfg.Camera.Device = device
	}
	if f.Changed("debug") {
		cfg.Debug = debugMode
		if debugMode && !f.Changed("log-level") {
			cfg.LogLevel = "debug"
		}
	}
	if f.Changed("debug-frames") {
		cfg.DebugFrames = debugFrames
	}
}

// executeContext runs the root command with ctx; used by tests.
func executeContext(ctx context.Context, args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
