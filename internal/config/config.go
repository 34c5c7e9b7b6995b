package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Server configures the quote server. Loaded once at startup and never
// mutated afterwards.
type Server struct {
	Port       int
	FortuneCmd string
	CowsayCmd  string
	GenTimeout time.Duration
}

// Watch configures the surveillance loop. Zero Interval means "pick the mode
// default" (30s for probes, 60s for resource sampling).
type Watch struct {
	Target        string        `yaml:"target"`
	Timeout       time.Duration `yaml:"timeout"`
	Interval      time.Duration `yaml:"interval"`
	Continuous    bool          `yaml:"continuous"`
	LogFile       string        `yaml:"logFile"`
	AlertFile     string        `yaml:"alertFile"`
	DBPath        string        `yaml:"dbPath"`
	RetentionDays int           `yaml:"retentionDays"`
	StatusAddr    string        `yaml:"statusAddr"`
	WebhookURL    string        `yaml:"webhookURL"`
	CPUThreshold  float64       `yaml:"cpuThreshold"`
	MemThreshold  float64       `yaml:"memThreshold"`
	DiskThreshold float64       `yaml:"diskThreshold"`
}

func (w Watch) Thresholds() (cpu, mem, disk float64) {
	return w.CPUThreshold, w.MemThreshold, w.DiskThreshold
}

// UnmarshalYAML accepts duration fields written the human way ("90s", "2m")
// rather than as integer nanoseconds. Keys absent from the document leave the
// preloaded defaults untouched.
func (w *Watch) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Target        string   `yaml:"target"`
		Timeout       string   `yaml:"timeout"`
		Interval      string   `yaml:"interval"`
		Continuous    *bool    `yaml:"continuous"`
		LogFile       string   `yaml:"logFile"`
		AlertFile     string   `yaml:"alertFile"`
		DBPath        string   `yaml:"dbPath"`
		RetentionDays *int     `yaml:"retentionDays"`
		StatusAddr    string   `yaml:"statusAddr"`
		WebhookURL    string   `yaml:"webhookURL"`
		CPUThreshold  *float64 `yaml:"cpuThreshold"`
		MemThreshold  *float64 `yaml:"memThreshold"`
		DiskThreshold *float64 `yaml:"diskThreshold"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Target != "" {
		w.Target = raw.Target
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		w.Timeout = d
	}
	if raw.Interval != "" {
		d, err := time.ParseDuration(raw.Interval)
		if err != nil {
			return fmt.Errorf("interval: %w", err)
		}
		w.Interval = d
	}
	if raw.Continuous != nil {
		w.Continuous = *raw.Continuous
	}
	if raw.LogFile != "" {
		w.LogFile = raw.LogFile
	}
	if raw.AlertFile != "" {
		w.AlertFile = raw.AlertFile
	}
	if raw.DBPath != "" {
		w.DBPath = raw.DBPath
	}
	if raw.RetentionDays != nil {
		w.RetentionDays = *raw.RetentionDays
	}
	if raw.StatusAddr != "" {
		w.StatusAddr = raw.StatusAddr
	}
	if raw.WebhookURL != "" {
		w.WebhookURL = raw.WebhookURL
	}
	if raw.CPUThreshold != nil {
		w.CPUThreshold = *raw.CPUThreshold
	}
	if raw.MemThreshold != nil {
		w.MemThreshold = *raw.MemThreshold
	}
	if raw.DiskThreshold != nil {
		w.DiskThreshold = *raw.DiskThreshold
	}
	return nil
}

func LoadServer() Server {
	return Server{
		Port:       getenvInt("WISECOW_PORT", 4499),
		FortuneCmd: getenv("WISECOW_FORTUNE_CMD", "fortune"),
		CowsayCmd:  getenv("WISECOW_COWSAY_CMD", "cowsay"),
		GenTimeout: getenvDuration("WISECOW_GEN_TIMEOUT", 5*time.Second),
	}
}

// LoadWatch builds a Watch config from defaults, an optional YAML file and
// environment overrides, in that order. Flag overrides are applied by the
// caller on top.
func LoadWatch(path string) (Watch, error) {
	cfg := defaultWatch()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Watch{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Watch{}, fmt.Errorf("parse config: %w", err)
		}
	}
	applyWatchEnv(&cfg)
	return cfg, nil
}

func defaultWatch() Watch {
	return Watch{
		Timeout:       10 * time.Second,
		RetentionDays: 14,
		CPUThreshold:  80,
		MemThreshold:  80,
		DiskThreshold: 80,
	}
}

func applyWatchEnv(cfg *Watch) {
	cfg.Target = getenv("HEALTHWATCH_TARGET", cfg.Target)
	cfg.Timeout = getenvDuration("HEALTHWATCH_TIMEOUT", cfg.Timeout)
	cfg.Interval = getenvDuration("HEALTHWATCH_INTERVAL", cfg.Interval)
	cfg.Continuous = getenvBool("HEALTHWATCH_CONTINUOUS", cfg.Continuous)
	cfg.LogFile = getenv("HEALTHWATCH_LOG_FILE", cfg.LogFile)
	cfg.AlertFile = getenv("HEALTHWATCH_ALERT_FILE", cfg.AlertFile)
	cfg.DBPath = getenv("HEALTHWATCH_DB_PATH", cfg.DBPath)
	cfg.RetentionDays = getenvInt("HEALTHWATCH_RETENTION_DAYS", cfg.RetentionDays)
	cfg.StatusAddr = getenv("HEALTHWATCH_STATUS_ADDR", cfg.StatusAddr)
	cfg.WebhookURL = getenv("HEALTHWATCH_WEBHOOK_URL", cfg.WebhookURL)
	cfg.CPUThreshold = getenvFloat("HEALTHWATCH_CPU_THRESHOLD", cfg.CPUThreshold)
	cfg.MemThreshold = getenvFloat("HEALTHWATCH_MEM_THRESHOLD", cfg.MemThreshold)
	cfg.DiskThreshold = getenvFloat("HEALTHWATCH_DISK_THRESHOLD", cfg.DiskThreshold)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func getenvFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return d
	}
	return f
}

func getenvDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return d
	}
	return dur
}

func getenvBool(k string, d bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(k)))
	if v == "" {
		return d
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	return d
}
