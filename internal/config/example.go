package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# Tracker configuration file
# Values can be overridden by environment variables (TRACKER_*) or CLI flags

# Progress file (relative to the working directory)
progress_file = "progress.json"

# JSON Schema for the progress file (empty uses the built-in schema)
# schema_file = "progress.schema.json"

# Listen address for "tracker serve"
addr = "127.0.0.1:8501"

# Logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
# log_file = "~/.tracker/tracker.log"  # the TUI only logs when this is set

# Task table, in display order. Defining any [[tasks]] replaces the defaults.
[[tasks]]
name = "Pyspark Tutorials"
units = 15
duration_minutes = 45

[[tasks]]
name = "Resume"
units = 6
duration_minutes = 30

[[tasks]]
name = "SQL with Baraa"
units = 22
duration_minutes = 30
`
}
