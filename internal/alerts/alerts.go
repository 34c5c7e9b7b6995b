package alerts

import (
	"fmt"

	"github.com/google/uuid"

	"wisecow/internal/models"
)

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// FromSample classifies one resource sample against its thresholds. The
// boundary is exclusive: a value equal to the threshold does not fire.
// Classification is memoryless, so every violating sample produces an alert.
func FromSample(s models.ResourceSample, t models.Thresholds) []models.Alert {
	var out []models.Alert
	checks := []struct {
		metric    string
		value     float64
		threshold float64
	}{
		{"cpu", s.CPUPct, t.CPUPct},
		{"memory", s.MemPct, t.MemPct},
		{"disk", s.DiskPct, t.DiskPct},
	}
	for _, c := range checks {
		if c.value > c.threshold {
			out = append(out, models.Alert{
				ID:        uuid.NewString(),
				TS:        s.TS,
				Metric:    c.metric,
				Value:     c.value,
				Threshold: c.threshold,
				Severity:  severity(c.value, c.threshold),
				Message:   fmt.Sprintf("%s usage (%.1f%%) exceeds threshold (%.1f%%)", c.metric, c.value, c.threshold),
			})
		}
	}
	return out
}

// FromProbe returns an alert for a failed probe, nil for a successful one.
func FromProbe(r models.ProbeResult) *models.Alert {
	if r.Succeeded {
		return nil
	}
	return &models.Alert{
		ID:        uuid.NewString(),
		TS:        r.TS,
		Metric:    "probe",
		Value:     0,
		Threshold: 1,
		Severity:  SeverityCritical,
		Message:   fmt.Sprintf("probe of %s failed: %s", r.Target, r.Reason),
	}
}

func severity(value, threshold float64) string {
	if value >= threshold+15 {
		return SeverityCritical
	}
	return SeverityWarning
}
