package app

import (
	"log/slog"
	"strings"
	"testing"
)

func TestGbitHandlerFormat(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(&gbitHandler{w: &buf, component: "test"})

	logger.Info("server listening", "addr", ":3001")

	line := strings.TrimSuffix(buf.String(), "\n")
	fields := strings.Split(line, "\t")
	if len(fields) != 5 {
		t.Fatalf("got %d tab-separated fields, want 5: %q", len(fields), line)
	}
	if fields[1] != "INFO" {
		t.Errorf("level field = %q", fields[1])
	}
	if fields[2] != "test" {
		t.Errorf("component field = %q", fields[2])
	}
	if fields[3] != "server listening" {
		t.Errorf("message field = %q", fields[3])
	}
	if fields[4] != "addr=:3001" {
		t.Errorf("attr field = %q", fields[4])
	}
}

func TestGbitHandlerWithAttrs(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(&gbitHandler{w: &buf, component: "test"})

	logger.With("repo", "proj").Info("commit applied", "files", 3)

	line := buf.String()
	if !strings.Contains(line, "repo=proj") {
		t.Errorf("pre-set attr missing: %q", line)
	}
	if !strings.Contains(line, "files=3") {
		t.Errorf("per-record attr missing: %q", line)
	}
}

func TestGetDefaultsEnvOverride(t *testing.T) {
	t.Setenv("GBIT_CONFIG_PATH", "/etc/gbitd.toml")
	t.Setenv("GBIT_HOME", "/srv/gbit")

	defaults, err := GetDefaults()
	if err != nil {
		t.Fatalf("GetDefaults failed: %v", err)
	}
	if defaults["config_path"] != "/etc/gbitd.toml" {
		t.Errorf("config_path = %q", defaults["config_path"])
	}
	if defaults["base_dir"] != "/srv/gbit" {
		t.Errorf("base_dir = %q", defaults["base_dir"])
	}
	if defaults["log_dir"] != "/srv/gbit/log" {
		t.Errorf("log_dir = %q", defaults["log_dir"])
	}
}
