package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"wisecow/internal/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *sql.DB { return r.db }

func (r *Repository) InsertProbeResult(ctx context.Context, p models.ProbeResult) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO probe_results (ts,target,succeeded,status_code,latency_ms,reason)
		VALUES (?,?,?,?,?,?)`,
		p.TS.UTC(), p.Target, p.Succeeded, p.StatusCode, p.LatencyMS(), p.Reason)
	return err
}

func (r *Repository) InsertResourceSample(ctx context.Context, s models.ResourceSample) error {
	procs, _ := json.Marshal(s.TopProcesses)
	_, err := r.db.ExecContext(ctx, `INSERT INTO resource_samples (ts,cpu_pct,mem_pct,disk_pct,top_processes_json)
		VALUES (?,?,?,?,?)`,
		s.TS.UTC(), s.CPUPct, s.MemPct, s.DiskPct, string(procs))
	return err
}

func (r *Repository) InsertAlert(ctx context.Context, a models.Alert) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO alerts (id,ts,metric,value,threshold,severity,message)
		VALUES (?,?,?,?,?,?,?)`,
		a.ID, a.TS.UTC(), a.Metric, a.Value, a.Threshold, a.Severity, a.Message)
	return err
}

func (r *Repository) RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id,ts,metric,value,threshold,severity,message
		FROM alerts ORDER BY ts DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.TS, &a.Metric, &a.Value, &a.Threshold, &a.Severity, &a.Message); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteOlderThan prunes history rows past the retention window.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	for _, table := range []string{"probe_results", "resource_samples", "alerts"} {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE ts < ?`, cutoff.UTC()); err != nil {
			return err
		}
	}
	return nil
}
