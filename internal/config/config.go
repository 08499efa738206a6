// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates the process logger. Debug output wins over quiet
// mode, so that -trace keeps working when combined with -q.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// PrintBanner logs the program name and build information unless quiet.
func PrintBanner(logger *log.Logger, name string, quiet bool, version, commit, date string) {
	if quiet {
		return
	}
	logger.Info(name, log.String("version", buildinfo.Version(version, commit, date)))
}
