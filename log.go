package main

import (
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// setupLog configures the process-wide logger from the verbosity flags.
// Timestamps only appear when output is redirected; on a terminal they are
// noise.
func setupLog() {
	switch {
	case quiet:
		log.SetLevel(log.ErrorLevel)
	case verbose:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		log.SetReportTimestamp(true)
	}
}
