package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wisecow/internal/alerts"
	"wisecow/internal/config"
	"wisecow/internal/metrics"
	"wisecow/internal/models"
	"wisecow/internal/notifier"
	"wisecow/internal/probe"
	"wisecow/internal/sampler"
	"wisecow/internal/store"
)

type Mode string

const (
	ModeProbe  Mode = "probe"
	ModeSystem Mode = "system"
)

const (
	defaultProbeInterval  = 30 * time.Second
	defaultSystemInterval = 60 * time.Second
	recentAlertsCap       = 100
	retentionSweepEvery   = 6 * time.Hour
)

// Status is a snapshot of the loop for the status API. The zero Iterations
// value means no iteration has completed yet.
type Status struct {
	Mode       string                 `json:"mode"`
	Healthy    bool                   `json:"healthy"`
	Iterations int                    `json:"iterations"`
	LastRun    time.Time              `json:"last_run"`
	LastProbe  *models.ProbeResult    `json:"last_probe,omitempty"`
	LastSample *models.ResourceSample `json:"last_sample,omitempty"`
}

// Runner drives one surveillance mode: either probing a remote target or
// sampling the local host. Each iteration is independent; a failing iteration
// is recorded as unhealthy and never terminates the loop.
type Runner struct {
	cfg      config.Watch
	mode     Mode
	interval time.Duration

	probe   *probe.Client
	sampler *sampler.Sampler
	sink    alerts.Sink
	webhook *notifier.Webhook
	repo    *store.Repository
	log     *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	status Status
	recent []models.Alert
}

// New wires a runner. sink, webhook and repo may be nil, which disables the
// corresponding output.
func New(cfg config.Watch, mode Mode, sink alerts.Sink, webhook *notifier.Webhook, repo *store.Repository, logger *slog.Logger) *Runner {
	interval := cfg.Interval
	if interval <= 0 {
		if mode == ModeProbe {
			interval = defaultProbeInterval
		} else {
			interval = defaultSystemInterval
		}
	}
	return &Runner{
		cfg:      cfg,
		mode:     mode,
		interval: interval,
		probe:    probe.NewClient(cfg.Timeout),
		sampler:  sampler.New(),
		sink:     sink,
		webhook:  webhook,
		repo:     repo,
		log:      logger,
		now:      time.Now,
		status:   Status{Mode: string(mode)},
	}
}

func (r *Runner) Interval() time.Duration { return r.interval }

// RunOnce performs exactly one probe or sample, classifies it and emits any
// resulting alerts. The return value is the health verdict for this
// iteration.
func (r *Runner) RunOnce(ctx context.Context) bool {
	var healthy bool
	switch r.mode {
	case ModeProbe:
		healthy = r.runProbe(ctx)
	default:
		healthy = r.runSample(ctx)
	}
	r.mu.Lock()
	r.status.Healthy = healthy
	r.status.Iterations++
	r.status.LastRun = r.now().UTC()
	r.mu.Unlock()
	return healthy
}

// RunContinuous repeats RunOnce every interval until ctx is cancelled. The
// first iteration runs immediately. Returns the verdict of the last
// completed iteration.
func (r *Runner) RunContinuous(ctx context.Context) bool {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var retention <-chan time.Time
	if r.repo != nil {
		t := time.NewTicker(retentionSweepEvery)
		defer t.Stop()
		retention = t.C
		r.sweepRetention(ctx)
	}

	healthy := r.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("surveillance stopped", "iterations", r.Status().Iterations)
			return healthy
		case <-ticker.C:
			healthy = r.RunOnce(ctx)
		case <-retention:
			r.sweepRetention(ctx)
		}
	}
}

func (r *Runner) runProbe(ctx context.Context) bool {
	res := r.probe.Probe(ctx, r.cfg.Target)
	metrics.ObserveProbe(res)
	if res.Succeeded {
		r.log.Info("probe up", "target", res.Target, "status", res.StatusCode, "latency_ms", res.LatencyMS())
	} else {
		r.log.Error("probe down", "target", res.Target, "reason", res.Reason, "latency_ms", res.LatencyMS())
	}
	if r.repo != nil {
		if err := r.repo.InsertProbeResult(ctx, res); err != nil {
			r.log.Error("insert probe result", "err", err)
		}
	}
	if a := alerts.FromProbe(res); a != nil {
		r.emit(ctx, *a)
	}
	r.mu.Lock()
	r.status.LastProbe = &res
	r.mu.Unlock()
	return res.Succeeded
}

func (r *Runner) runSample(ctx context.Context) bool {
	sample, err := r.sampler.Sample(ctx)
	if err != nil {
		r.log.Error("resource sample failed", "err", err)
		return false
	}
	metrics.ObserveSample(sample)
	r.log.Info("resource sample",
		"cpu_pct", sample.CPUPct,
		"mem_pct", sample.MemPct,
		"disk_pct", sample.DiskPct,
	)
	if r.repo != nil {
		if err := r.repo.InsertResourceSample(ctx, sample); err != nil {
			r.log.Error("insert resource sample", "err", err)
		}
	}
	cpu, mem, disk := r.cfg.Thresholds()
	violations := alerts.FromSample(sample, models.Thresholds{CPUPct: cpu, MemPct: mem, DiskPct: disk})
	for _, a := range violations {
		r.emit(ctx, a)
	}
	r.mu.Lock()
	r.status.LastSample = &sample
	r.mu.Unlock()
	return len(violations) == 0
}

func (r *Runner) emit(ctx context.Context, a models.Alert) {
	metrics.ObserveAlert(a)
	r.log.Warn("alert", "metric", a.Metric, "value", a.Value, "threshold", a.Threshold, "severity", a.Severity)

	r.mu.Lock()
	r.recent = append(r.recent, a)
	if len(r.recent) > recentAlertsCap {
		r.recent = r.recent[len(r.recent)-recentAlertsCap:]
	}
	r.mu.Unlock()

	if r.sink != nil {
		if err := r.sink.Emit(ctx, a); err != nil {
			r.log.Error("emit alert", "err", err)
		}
	}
	if r.repo != nil {
		if err := r.repo.InsertAlert(ctx, a); err != nil {
			r.log.Error("insert alert", "err", err)
		}
	}
	if r.webhook != nil && r.webhook.Enabled() {
		r.pushWebhook(ctx, a)
	}
}

func (r *Runner) pushWebhook(ctx context.Context, a models.Alert) {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		if err = r.webhook.Send(ctx, a); err == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
		}
	}
	r.log.Warn("webhook push failed", "err", err)
}

func (r *Runner) sweepRetention(ctx context.Context) {
	days := r.cfg.RetentionDays
	if days <= 0 {
		days = 14
	}
	cutoff := r.now().UTC().AddDate(0, 0, -days)
	if err := r.repo.DeleteOlderThan(ctx, cutoff); err != nil {
		r.log.Error("retention sweep failed", "err", err)
	} else {
		r.log.Info("retention sweep completed", "cutoff", cutoff)
	}
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) RecentAlerts() []models.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Alert, len(r.recent))
	copy(out, r.recent)
	return out
}
