// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tracker-go/internal/tracker"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// real user or project config leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{
		"TRACKER_PROGRESS", "TRACKER_SCHEMA", "TRACKER_ADDR",
		"TRACKER_LOG_LEVEL", "TRACKER_LOG_FORMAT", "TRACKER_LOG_TIMESTAMPS",
		"TRACKER_LOG_CALLER", "TRACKER_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	work := t.TempDir()
	chdirForTest(t, work)
	return work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.ProgressFile != DefaultProgressFile {
		t.Errorf("ProgressFile: got %q, want %q", cfg.ProgressFile, DefaultProgressFile)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr: got %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging defaults: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if !reflect.DeepEqual(cfg.Tasks, tracker.DefaultDefinitions()) {
		t.Errorf("Tasks: got %v", cfg.Tasks)
	}
}

func TestLoadDefaultsResolvePaths(t *testing.T) {
	work := isolate(t)

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectRoot == "" {
		t.Fatal("ProjectRoot should be set")
	}
	want := filepath.Join(cfg.ProjectRoot, "progress.json")
	if cfg.ProgressFile != want {
		t.Errorf("ProgressFile: got %q, want %q", cfg.ProgressFile, want)
	}
	if filepath.Base(filepath.Dir(cfg.ProgressFile)) != filepath.Base(work) {
		t.Errorf("ProgressFile should live in the working directory, got %q", cfg.ProgressFile)
	}
	if cfg.SchemaFile != "" {
		t.Errorf("SchemaFile: got %q, want empty", cfg.SchemaFile)
	}
}

func TestLoadProjectFileReplacesTasks(t *testing.T) {
	work := isolate(t)
	writeFile(t, filepath.Join(work, "tracker.toml"), `
progress_file = "state/p.json"
log_level = "debug"

[[tasks]]
name = "A"
units = 2
duration_minutes = 10

[[tasks]]
name = "B"
units = 3
duration_minutes = 20
`)

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	wantTasks := []tracker.Definition{
		{Name: "A", Units: 2, DurationMinutes: 10},
		{Name: "B", Units: 3, DurationMinutes: 20},
	}
	if !reflect.DeepEqual(cfg.Tasks, wantTasks) {
		t.Errorf("Tasks: got %v, want %v", cfg.Tasks, wantTasks)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	if filepath.Base(cfg.ProgressFile) != "p.json" || !filepath.IsAbs(cfg.ProgressFile) {
		t.Errorf("ProgressFile: got %q", cfg.ProgressFile)
	}
	if cws.Sources["tasks"] != SourceProjFile {
		t.Errorf("tasks source: got %q, want %q", cws.Sources["tasks"], SourceProjFile)
	}
	if cws.Sources["addr"] != SourceDefault {
		t.Errorf("addr source: got %q, want %q", cws.Sources["addr"], SourceDefault)
	}
	if len(cws.Files) != 1 || cws.Files[0] != "tracker.toml" {
		t.Errorf("Files: got %v", cws.Files)
	}
}

func TestLoadUserThenProject(t *testing.T) {
	work := isolate(t)
	home := os.Getenv("HOME")
	writeFile(t, filepath.Join(home, ".tracker", "tracker.toml"), `
addr = ":9000"
log_format = "json"
`)
	writeFile(t, filepath.Join(work, ".tracker.toml"), `
addr = ":9100"
`)

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if cws.Config.Addr != ":9100" {
		t.Errorf("Addr: got %q, want project value :9100", cws.Config.Addr)
	}
	if cws.Config.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want user value json", cws.Config.LogFormat)
	}
	if cws.Sources["log_format"] != SourceUserFile {
		t.Errorf("log_format source: got %q", cws.Sources["log_format"])
	}
	if !reflect.DeepEqual(cws.Config.Tasks, tracker.DefaultDefinitions()) {
		t.Error("files without [[tasks]] should keep the default table")
	}
}

func TestLoadExplicitConfigFlag(t *testing.T) {
	work := isolate(t)
	custom := filepath.Join(work, "custom.toml")
	writeFile(t, custom, `
[[tasks]]
name = "Only"
units = 1
duration_minutes = 5
`)
	writeFile(t, filepath.Join(work, "tracker.toml"), `
[[tasks]]
name = "Ignored"
units = 9
duration_minutes = 9
`)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-config", custom, "show"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Tasks) != 1 || cfg.Tasks[0].Name != "Only" {
		t.Errorf("Tasks: got %v, want only the -config table", cfg.Tasks)
	}
	if args := fs.Args(); len(args) != 1 || args[0] != "show" {
		t.Errorf("remaining args: got %v, want [show]", args)
	}
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	work := isolate(t)
	_, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-config=" + filepath.Join(work, "nope.toml")})
	if err == nil {
		t.Fatal("expected error for a missing -config file")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	work := isolate(t)
	writeFile(t, filepath.Join(work, "tracker.toml"), `addr = `)
	if _, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TRACKER_PROGRESS", "env.json")
	t.Setenv("TRACKER_ADDR", ":7000")
	t.Setenv("TRACKER_LOG_LEVEL", "warn")
	t.Setenv("TRACKER_LOG_TIMESTAMPS", "yes")

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config
	if filepath.Base(cfg.ProgressFile) != "env.json" {
		t.Errorf("ProgressFile: got %q", cfg.ProgressFile)
	}
	if cfg.Addr != ":7000" || cfg.LogLevel != "warn" || !cfg.LogTimestamps {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cws.Sources["addr"] != SourceEnv {
		t.Errorf("addr source: got %q, want %q", cws.Sources["addr"], SourceEnv)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TRACKER_ADDR", ":7000")
	t.Setenv("TRACKER_LOG_LEVEL", "warn")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"-addr", ":8000", "-log-caller"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if cws.Config.Addr != ":8000" {
		t.Errorf("Addr: got %q, want :8000", cws.Config.Addr)
	}
	if cws.Config.LogLevel != "warn" {
		t.Errorf("LogLevel: got %q, want env value warn", cws.Config.LogLevel)
	}
	if !cws.Config.LogCaller {
		t.Error("LogCaller: flag not applied")
	}
	if cws.Sources["addr"] != SourceFlag {
		t.Errorf("addr source: got %q, want %q", cws.Sources["addr"], SourceFlag)
	}
}

func TestConfigFlagValue(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"-config", "a.toml"}, "a.toml"},
		{[]string{"--config=b.toml", "tui"}, "b.toml"},
		{[]string{"-addr", ":1", "-config", "c.toml"}, "c.toml"},
		{[]string{"-addr=:1", "-config", "c.toml"}, "c.toml"},
		{[]string{"-log-caller", "-config", "c.toml"}, "c.toml"},
		{[]string{"show", "-config", "d.toml"}, ""},
		{[]string{"--", "-config", "e.toml"}, ""},
	}
	for _, tt := range tests {
		if got := configFlagValue(tt.args); got != tt.want {
			t.Errorf("configFlagValue(%v): got %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TRACKER_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/progress.json", filepath.Join(home, "progress.json")},
		{"$TRACKER_TEST_DIR/p.json", "/data/p.json"},
		{"plain.json", "plain.json"},
		{"~user/p.json", "~user/p.json"},
		{"${TRACKER_TEST_DIR}/~/p.json", "/data/~/p.json"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExampleConfigParses(t *testing.T) {
	var cfg Config
	if _, err := toml.Decode(ExampleConfig(), &cfg); err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}
	if !reflect.DeepEqual(cfg.Tasks, tracker.DefaultDefinitions()) {
		t.Errorf("example tasks: got %v, want defaults", cfg.Tasks)
	}
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
