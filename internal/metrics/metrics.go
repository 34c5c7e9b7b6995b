package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"wisecow/internal/models"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthwatch",
			Name:      "probes_total",
			Help:      "Total number of probes issued, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	probeLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "healthwatch",
			Name:      "probe_latency_seconds",
			Help:      "Probe round-trip latency in seconds.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthwatch",
			Name:      "alerts_total",
			Help:      "Total number of alerts emitted, partitioned by metric.",
		},
		[]string{"metric"},
	)

	cpuPct = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthwatch",
		Name:      "host_cpu_pct",
		Help:      "Last sampled host CPU utilization percentage.",
	})

	memPct = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthwatch",
		Name:      "host_mem_pct",
		Help:      "Last sampled host memory utilization percentage.",
	})

	diskPct = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthwatch",
		Name:      "host_disk_pct",
		Help:      "Last sampled host disk utilization percentage.",
	})
)

// Register attaches healthwatch collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		probesTotal,
		probeLatencySeconds,
		alertsTotal,
		cpuPct,
		memPct,
		diskPct,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveProbe(r models.ProbeResult) {
	outcome := OutcomeFailure
	if r.Succeeded {
		outcome = OutcomeSuccess
	}
	probesTotal.WithLabelValues(outcome).Inc()
	probeLatencySeconds.Observe(r.Latency.Seconds())
}

func ObserveSample(s models.ResourceSample) {
	cpuPct.Set(s.CPUPct)
	memPct.Set(s.MemPct)
	diskPct.Set(s.DiskPct)
}

func ObserveAlert(a models.Alert) {
	alertsTotal.WithLabelValues(a.Metric).Inc()
}
