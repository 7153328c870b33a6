// Command mindsnag runs the post-spike-sorting pipeline: channel
// selection, timebase reprojection, isolation scoring, isolated-unit
// selection, trial-aligned raster building, and cross-recording neuron
// stitching.
//
// CLI surface is intentionally thin — config and orchestration plumbing
// is outside the core's scope; this binary exists to give the core
// packages a caller, in the teacher's own cmd/direwolf/main.go style
// (parse flags, load config, run, plain exit code).
package main

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/PesaranB/mind-snag/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("mindsnag", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to YAML configuration file")
	sessionDir := flags.String("session-dir", ".", "session directory containing recording artifacts")
	verbose := flags.BoolP("verbose", "v", false, "enable debug logging")
	quiet := flags.BoolP("quiet", "q", false, "only log errors")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})
	switch {
	case *verbose:
		logger.SetLevel(charmlog.DebugLevel)
	case *quiet:
		logger.SetLevel(charmlog.ErrorLevel)
	default:
		logger.SetLevel(charmlog.InfoLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("loading config", "err", err)
			return 1
		}
		cfg = loaded
	}

	logger.Info("mindsnag starting", "session_dir", *sessionDir,
		"isolation_window_sec", cfg.Isolation.WindowSec)

	// Orchestrating a full session (discovering recordings under
	// session-dir, reading sorter/trial-store artifacts, running every
	// stage, persisting outputs) is session-layout-specific glue outside
	// core scope (spec 1); see internal/pipeline for the stage wiring a
	// caller with concrete recording artifacts drives directly.
	logger.Info("nothing to do: pass concrete recording artifacts via the internal/pipeline API")

	return 0
}
