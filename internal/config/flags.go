package config

import (
	"flag"
)

// parseFlags defines and parses CLI flags, applying only the flags that
// were explicitly set.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tracker", flag.ContinueOnError)
	}

	var configFile string
	progressFile := cfg.ProgressFile
	schemaFile := cfg.SchemaFile
	addr := cfg.Addr
	logLevel := cfg.LogLevel
	logFormat := cfg.LogFormat
	logTimestamps := cfg.LogTimestamps
	logCaller := cfg.LogCaller
	logFile := cfg.LogFile

	// Read before parsing; registered so Parse accepts it.
	fs.StringVar(&configFile, "config", "", "Path to a config file (replaces tracker.toml lookup)")

	// Paths
	fs.StringVar(&progressFile, "progress", progressFile, "Path to progress file")
	fs.StringVar(&schemaFile, "schema", schemaFile, "Path to progress schema file (default: embedded)")

	// Web
	fs.StringVar(&addr, "addr", addr, "Listen address for the web UI")

	// Logging
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", logFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&logTimestamps, "log-timestamps", logTimestamps, "Show timestamps in logs")
	fs.BoolVar(&logCaller, "log-caller", logCaller, "Show caller location in logs")
	fs.StringVar(&logFile, "log-file", logFile, "Write logs to this file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToSource := map[string]string{
		"progress":       "progress_file",
		"schema":         "schema_file",
		"addr":           "addr",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
		"log-file":       "log_file",
	}

	flagSet := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		flagSet[f.Name] = true
		if sources == nil {
			return
		}
		if fieldName, ok := flagToSource[f.Name]; ok {
			sources[fieldName] = SourceFlag
		}
	})

	if flagSet["progress"] {
		cfg.ProgressFile = progressFile
	}
	if flagSet["schema"] {
		cfg.SchemaFile = schemaFile
	}
	if flagSet["addr"] {
		cfg.Addr = addr
	}
	if flagSet["log-level"] {
		cfg.LogLevel = logLevel
	}
	if flagSet["log-format"] {
		cfg.LogFormat = logFormat
	}
	if flagSet["log-timestamps"] {
		cfg.LogTimestamps = logTimestamps
	}
	if flagSet["log-caller"] {
		cfg.LogCaller = logCaller
	}
	if flagSet["log-file"] {
		cfg.LogFile = logFile
	}

	return nil
}
