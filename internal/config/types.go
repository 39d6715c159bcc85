package config

import (
	"github.com/nibzard/tracker-go/internal/progress"
	"github.com/nibzard/tracker-go/internal/tracker"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultProgressFile = progress.DefaultFile
	DefaultAddr         = "127.0.0.1:8501"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config holds the full configuration for tracker.
type Config struct {
	// Paths
	ProgressFile string `toml:"progress_file"`
	SchemaFile   string `toml:"schema_file"` // empty uses the embedded schema

	// Web UI listen address
	Addr string `toml:"addr"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogFile       string `toml:"log_file"`

	// Task table, in display order
	Tasks []tracker.Definition `toml:"tasks"`

	// Working directory (computed)
	ProjectRoot string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"progress_file",
		"schema_file",
		"addr",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_file",
		"tasks",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.ProgressFile = DefaultProgressFile
	cfg.SchemaFile = ""
	cfg.Addr = DefaultAddr
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
	cfg.LogFile = ""
	cfg.Tasks = tracker.DefaultDefinitions()
}
