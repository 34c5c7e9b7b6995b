package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWatchDefaults(t *testing.T) {
	cfg, err := LoadWatch("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.Interval != 0 {
		t.Fatalf("interval = %v, want 0 (mode default)", cfg.Interval)
	}
	if cfg.CPUThreshold != 80 || cfg.MemThreshold != 80 || cfg.DiskThreshold != 80 {
		t.Fatalf("thresholds = %v/%v/%v, want 80 each", cfg.CPUThreshold, cfg.MemThreshold, cfg.DiskThreshold)
	}
	if cfg.RetentionDays != 14 {
		t.Fatalf("retention days = %d, want 14", cfg.RetentionDays)
	}
}

func TestLoadWatchYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.yaml")
	body := `
target: http://localhost:4499
timeout: 5s
interval: 90s
continuous: true
alertFile: /tmp/alerts.json
cpuThreshold: 70
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadWatch(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Target != "http://localhost:4499" {
		t.Fatalf("target = %q", cfg.Target)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Interval != 90*time.Second {
		t.Fatalf("interval = %v, want 90s", cfg.Interval)
	}
	if !cfg.Continuous {
		t.Fatal("continuous not set")
	}
	if cfg.AlertFile != "/tmp/alerts.json" {
		t.Fatalf("alert file = %q", cfg.AlertFile)
	}
	if cfg.CPUThreshold != 70 {
		t.Fatalf("cpu threshold = %v, want 70", cfg.CPUThreshold)
	}
	// Unset keys keep their defaults.
	if cfg.MemThreshold != 80 {
		t.Fatalf("mem threshold = %v, want default 80", cfg.MemThreshold)
	}
}

func TestLoadWatchBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.yaml")
	if err := os.WriteFile(path, []byte("timeout: soon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadWatch(path); err == nil {
		t.Fatal("accepted unparseable duration")
	}
}

func TestLoadWatchMissingFile(t *testing.T) {
	if _, err := LoadWatch(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("accepted missing config file")
	}
}

func TestLoadWatchEnvOverrides(t *testing.T) {
	t.Setenv("HEALTHWATCH_CPU_THRESHOLD", "55")
	t.Setenv("HEALTHWATCH_TIMEOUT", "3s")
	t.Setenv("HEALTHWATCH_CONTINUOUS", "true")

	cfg, err := LoadWatch("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CPUThreshold != 55 {
		t.Fatalf("cpu threshold = %v, want 55", cfg.CPUThreshold)
	}
	if cfg.Timeout != 3*time.Second {
		t.Fatalf("timeout = %v, want 3s", cfg.Timeout)
	}
	if !cfg.Continuous {
		t.Fatal("continuous not overridden")
	}
}

func TestLoadServerDefaults(t *testing.T) {
	cfg := LoadServer()
	if cfg.Port != 4499 {
		t.Fatalf("port = %d, want 4499", cfg.Port)
	}
	if cfg.FortuneCmd != "fortune" || cfg.CowsayCmd != "cowsay" {
		t.Fatalf("commands = %q/%q", cfg.FortuneCmd, cfg.CowsayCmd)
	}
	if cfg.GenTimeout != 5*time.Second {
		t.Fatalf("gen timeout = %v, want 5s", cfg.GenTimeout)
	}
}
