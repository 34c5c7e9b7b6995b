package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"wisecow/internal/alerts"
	"wisecow/internal/config"
	"wisecow/internal/metrics"
	"wisecow/internal/monitor"
	"wisecow/internal/notifier"
	"wisecow/internal/store"
	"wisecow/internal/web"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		timeout    = flag.Duration("timeout", 0, "per-probe timeout")
		interval   = flag.Duration("interval", 0, "time between iterations (default 30s probe, 60s system)")
		continuous = flag.Bool("continuous", false, "keep running until interrupted")
		logFile    = flag.String("log-file", "", "tee logs to this file")
		alertFile  = flag.String("alert-file", "", "append alerts to this file as JSON lines")
		dbPath     = flag.String("db", "", "record history in this SQLite database")
		statusAddr = flag.String("status-addr", "", "serve the status API on this address (continuous mode)")
		webhookURL = flag.String("webhook", "", "push alerts to this webhook URL")
		cpuTh      = flag.Float64("cpu-threshold", 0, "CPU alert threshold percent")
		memTh      = flag.Float64("mem-threshold", 0, "memory alert threshold percent")
		diskTh     = flag.Float64("disk-threshold", 0, "disk alert threshold percent")
		retention  = flag.Int("retention-days", 0, "days of history to keep in the database")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: healthwatch [flags] [target]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "With a target URL or host:port, probes it; without one, samples the local host.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.LoadWatch(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Timeout = *timeout
		case "interval":
			cfg.Interval = *interval
		case "continuous":
			cfg.Continuous = *continuous
		case "log-file":
			cfg.LogFile = *logFile
		case "alert-file":
			cfg.AlertFile = *alertFile
		case "db":
			cfg.DBPath = *dbPath
		case "status-addr":
			cfg.StatusAddr = *statusAddr
		case "webhook":
			cfg.WebhookURL = *webhookURL
		case "cpu-threshold":
			cfg.CPUThreshold = *cpuTh
		case "mem-threshold":
			cfg.MemThreshold = *memTh
		case "disk-threshold":
			cfg.DiskThreshold = *diskTh
		case "retention-days":
			cfg.RetentionDays = *retention
		}
	})
	if flag.NArg() > 0 {
		cfg.Target = flag.Arg(0)
	}

	mode := monitor.ModeSystem
	if cfg.Target != "" {
		mode = monitor.ModeProbe
	}

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	logger.Info("starting healthwatch", "mode", string(mode), "target", cfg.Target, "continuous", cfg.Continuous)

	var sink alerts.Sink
	if cfg.AlertFile != "" {
		sink = alerts.NewFileSink(cfg.AlertFile)
	}
	var hook *notifier.Webhook
	if cfg.WebhookURL != "" {
		hook = notifier.NewWebhook(cfg.WebhookURL)
	}
	var repo *store.Repository
	if cfg.DBPath != "" {
		sqldb, err := store.Open(cfg.DBPath)
		if err != nil {
			logger.Error("open store", "err", err)
			os.Exit(1)
		}
		defer sqldb.Close()
		if err := store.Migrate(sqldb); err != nil {
			logger.Error("migrate store", "err", err)
			os.Exit(1)
		}
		repo = store.NewRepository(sqldb)
	}

	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		logger.Error("register metrics", "err", err)
		os.Exit(1)
	}

	runner := monitor.New(cfg, mode, sink, hook, repo, logger.With("module", "monitor"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var healthy bool
	if cfg.Continuous {
		var httpSrv *http.Server
		if cfg.StatusAddr != "" {
			ws := web.NewServer(runner, repo, reg, logger.With("module", "web"))
			httpSrv = &http.Server{Addr: cfg.StatusAddr, Handler: ws.Routes()}
			go func() {
				logger.Info("status api listening", "addr", cfg.StatusAddr)
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("status api failed", "err", err)
				}
			}()
		}
		healthy = runner.RunContinuous(ctx)
		if httpSrv != nil {
			_ = httpSrv.Shutdown(context.Background())
		}
	} else {
		healthy = runner.RunOnce(ctx)
	}
	if !healthy {
		os.Exit(1)
	}
}

func newLogger(logFile string) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stdout
	closeLog := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closeLog = func() { _ = f.Close() }
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})), closeLog, nil
}
