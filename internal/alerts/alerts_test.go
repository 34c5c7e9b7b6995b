package alerts

import (
	"strings"
	"testing"
	"time"

	"wisecow/internal/models"
)

func TestFromSampleBoundaryIsExclusive(t *testing.T) {
	th := models.Thresholds{CPUPct: 50, MemPct: 80, DiskPct: 80}

	over := FromSample(models.ResourceSample{TS: time.Now(), CPUPct: 51, MemPct: 10, DiskPct: 10}, th)
	if len(over) != 1 {
		t.Fatalf("cpu=51 over threshold 50: got %d alerts, want 1", len(over))
	}
	if over[0].Metric != "cpu" || over[0].Value != 51 || over[0].Threshold != 50 {
		t.Fatalf("unexpected alert: %+v", over[0])
	}

	at := FromSample(models.ResourceSample{TS: time.Now(), CPUPct: 50, MemPct: 10, DiskPct: 10}, th)
	if len(at) != 0 {
		t.Fatalf("cpu=50 at threshold 50: got %d alerts, want 0", len(at))
	}
}

func TestFromSampleAllMetrics(t *testing.T) {
	th := models.Thresholds{CPUPct: 80, MemPct: 80, DiskPct: 80}
	got := FromSample(models.ResourceSample{TS: time.Now(), CPUPct: 90, MemPct: 85, DiskPct: 99}, th)
	if len(got) != 3 {
		t.Fatalf("got %d alerts, want 3", len(got))
	}
	metrics := map[string]bool{}
	for _, a := range got {
		metrics[a.Metric] = true
		if a.ID == "" {
			t.Fatalf("alert without id: %+v", a)
		}
	}
	for _, m := range []string{"cpu", "memory", "disk"} {
		if !metrics[m] {
			t.Fatalf("missing alert for %s", m)
		}
	}
}

func TestSeverityEscalates(t *testing.T) {
	cases := []struct {
		value, threshold float64
		want             string
	}{
		{81, 80, SeverityWarning},
		{94, 80, SeverityWarning},
		{95, 80, SeverityCritical},
		{100, 80, SeverityCritical},
	}
	for _, tc := range cases {
		if got := severity(tc.value, tc.threshold); got != tc.want {
			t.Fatalf("severity(%v, %v) = %q, want %q", tc.value, tc.threshold, got, tc.want)
		}
	}
}

func TestFromProbe(t *testing.T) {
	ok := models.ProbeResult{Target: "http://x", TS: time.Now(), Succeeded: true, StatusCode: 200}
	if a := FromProbe(ok); a != nil {
		t.Fatalf("successful probe produced alert: %+v", a)
	}

	failed := models.ProbeResult{Target: "http://x", TS: time.Now(), Reason: "connection refused"}
	a := FromProbe(failed)
	if a == nil {
		t.Fatal("failed probe produced no alert")
	}
	if a.Metric != "probe" || a.Severity != SeverityCritical {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if !strings.Contains(a.Message, "connection refused") {
		t.Fatalf("alert message missing reason: %q", a.Message)
	}
}
