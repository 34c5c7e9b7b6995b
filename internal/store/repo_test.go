package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"wisecow/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	sqldb, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := Migrate(sqldb); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return NewRepository(sqldb)
}

func TestInsertAndCountProbeResults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	res := models.ProbeResult{
		Target:     "http://localhost:4499",
		TS:         time.Now().UTC(),
		Succeeded:  true,
		StatusCode: 200,
		Latency:    12 * time.Millisecond,
		Reason:     "Success",
	}
	if err := repo.InsertProbeResult(ctx, res); err != nil {
		t.Fatalf("insert probe result: %v", err)
	}
	var count int
	if err := repo.DB().QueryRow(`SELECT COUNT(*) FROM probe_results`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("probe_results count = %d, want 1", count)
	}
}

func TestInsertResourceSample(t *testing.T) {
	repo := newTestRepo(t)
	sample := models.ResourceSample{
		TS:      time.Now().UTC(),
		CPUPct:  12.5,
		MemPct:  40,
		DiskPct: 61,
		TopProcesses: []models.ProcessUsage{
			{PID: 1, Name: "init", CPUPct: 0.1},
		},
	}
	if err := repo.InsertResourceSample(context.Background(), sample); err != nil {
		t.Fatalf("insert sample: %v", err)
	}
	var procs string
	if err := repo.DB().QueryRow(`SELECT top_processes_json FROM resource_samples`).Scan(&procs); err != nil {
		t.Fatalf("query: %v", err)
	}
	if procs == "" || procs == "null" {
		t.Fatalf("top processes not recorded: %q", procs)
	}
}

func TestRecentAlertsOrderedNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		a := models.Alert{
			ID:        id,
			TS:        base.Add(time.Duration(i) * time.Minute),
			Metric:    "cpu",
			Value:     90,
			Threshold: 80,
			Severity:  "warning",
			Message:   "cpu high",
		}
		if err := repo.InsertAlert(ctx, a); err != nil {
			t.Fatalf("insert alert %s: %v", id, err)
		}
	}
	got, err := repo.RecentAlerts(ctx, 2)
	if err != nil {
		t.Fatalf("recent alerts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d alerts, want 2", len(got))
	}
	if got[0].ID != "new" || got[1].ID != "mid" {
		t.Fatalf("wrong order: %q then %q", got[0].ID, got[1].ID)
	}
}

func TestDeleteOlderThanPrunesHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	old := time.Now().UTC().AddDate(0, 0, -30)
	fresh := time.Now().UTC()

	if err := repo.InsertProbeResult(ctx, models.ProbeResult{Target: "t", TS: old, Reason: "timeout"}); err != nil {
		t.Fatalf("insert old probe: %v", err)
	}
	if err := repo.InsertProbeResult(ctx, models.ProbeResult{Target: "t", TS: fresh, Succeeded: true, StatusCode: 200}); err != nil {
		t.Fatalf("insert fresh probe: %v", err)
	}
	if err := repo.InsertAlert(ctx, models.Alert{ID: "stale", TS: old, Metric: "probe", Severity: "critical", Message: "down"}); err != nil {
		t.Fatalf("insert old alert: %v", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -14)
	if err := repo.DeleteOlderThan(ctx, cutoff); err != nil {
		t.Fatalf("prune: %v", err)
	}

	var probes, alerts int
	if err := repo.DB().QueryRow(`SELECT COUNT(*) FROM probe_results`).Scan(&probes); err != nil {
		t.Fatalf("count probes: %v", err)
	}
	if err := repo.DB().QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&alerts); err != nil {
		t.Fatalf("count alerts: %v", err)
	}
	if probes != 1 || alerts != 0 {
		t.Fatalf("after prune: probes=%d alerts=%d, want 1 and 0", probes, alerts)
	}
}
