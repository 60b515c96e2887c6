package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes one wasm crate and the toolchain that compiles it. All
// fields have working defaults for the strust repository layout.
type Config struct {
	Toolchain  string `yaml:"toolchain" json:"toolchain"`
	CrateDir   string `yaml:"crate_dir" json:"crate_dir"`
	OutName    string `yaml:"out_name" json:"out_name"`
	Target     string `yaml:"target" json:"target"`
	SourceExt  string `yaml:"source_ext" json:"source_ext"`
	HistoryDB  string `yaml:"history_db" json:"history_db"`
	EventLog   string `yaml:"event_log" json:"event_log"`
	StatusAddr string `yaml:"status_addr" json:"status_addr"`
	LogLevel   string `yaml:"log_level" json:"log_level"`
}

func Default() Config {
	return Config{
		Toolchain:  "wasm-pack",
		CrateDir:   "wasm",
		OutName:    "strust",
		Target:     "web",
		SourceExt:  ".rs",
		HistoryDB:  "artifacts/wasmdev.db",
		EventLog:   "artifacts/events.jsonl",
		StatusAddr: "127.0.0.1:8787",
		LogLevel:   "info",
	}
}

// Load reads a YAML or JSON config by extension. An empty path yields the
// defaults; a path that cannot be read is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// BuildArgs is the fixed toolchain argument set this config produces.
func (c Config) BuildArgs() []string {
	return []string{
		"build",
		"--no-pack",
		"--out-name=" + c.OutName,
		"--target=" + c.Target,
	}
}

func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
