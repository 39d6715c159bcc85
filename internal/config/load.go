package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tracker/tracker.toml or OS-specific config dir)
// 3. Project config file (tracker.toml or .tracker.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}
	cws := &ConfigWithSources{Config: cfg, Sources: sources}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
		cws.Files = append(cws.Files, userConfigFile)
	}

	// 3. Project config file, or the one named by -config
	projectConfigFile := configFlagValue(args)
	if projectConfigFile == "" {
		projectConfigFile = findProjectConfigFile()
	}
	if projectConfigFile != "" {
		if err := loadConfigFile(cfg, expandPath(projectConfigFile), sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		cws.Files = append(cws.Files, projectConfigFile)
	}

	// 4. Override from environment
	loadFromEnv(cfg, sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// loadConfigFile decodes the TOML file at path and copies every key the
// file defines onto cfg.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	fileCfg := &Config{}
	md, err := toml.DecodeFile(path, fileCfg)
	if err != nil {
		return err
	}

	apply := func(key string, fn func()) {
		if !md.IsDefined(key) {
			return
		}
		fn()
		if sources != nil {
			sources[key] = source
		}
	}

	apply("progress_file", func() { cfg.ProgressFile = fileCfg.ProgressFile })
	apply("schema_file", func() { cfg.SchemaFile = fileCfg.SchemaFile })
	apply("addr", func() { cfg.Addr = fileCfg.Addr })
	apply("log_level", func() { cfg.LogLevel = fileCfg.LogLevel })
	apply("log_format", func() { cfg.LogFormat = fileCfg.LogFormat })
	apply("log_timestamps", func() { cfg.LogTimestamps = fileCfg.LogTimestamps })
	apply("log_caller", func() { cfg.LogCaller = fileCfg.LogCaller })
	apply("log_file", func() { cfg.LogFile = fileCfg.LogFile })
	apply("tasks", func() { cfg.Tasks = fileCfg.Tasks })

	return nil
}

// boolFlags lists the global flags that take no value, including the
// help and version flags the cmd package registers.
var boolFlags = map[string]bool{
	"log-timestamps": true,
	"log-caller":     true,
	"help":           true,
	"h":              true,
	"version":        true,
	"v":              true,
}

// configFlagValue returns the value of -config from the global flags,
// scanning up to the first non-flag argument.
func configFlagValue(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || arg == "-" || !strings.HasPrefix(arg, "-") {
			return ""
		}
		name := strings.TrimLeft(arg, "-")
		name, value, hasValue := strings.Cut(name, "=")
		if name == "config" {
			if hasValue {
				return value
			}
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		}
		if !hasValue && !boolFlags[name] {
			i++ // skip the flag's value
		}
	}
	return ""
}

// finalizeConfig computes derived values and resolves paths.
func finalizeConfig(cfg *Config) error {
	cfg.ProgressFile = expandPath(cfg.ProgressFile)
	cfg.SchemaFile = expandPath(cfg.SchemaFile)
	cfg.LogFile = expandPath(cfg.LogFile)

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	if cfg.ProgressFile == "" {
		cfg.ProgressFile = DefaultProgressFile
	}
	cfg.ProgressFile = cfg.resolve(cfg.ProgressFile)
	if cfg.SchemaFile != "" {
		cfg.SchemaFile = cfg.resolve(cfg.SchemaFile)
	}
	if cfg.LogFile != "" {
		cfg.LogFile = cfg.resolve(cfg.LogFile)
	}

	return nil
}

// resolve makes a relative path absolute against the project root.
func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}
