package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MimoJanra/sitewatch/internal/models"
)

// HistoryRepo is the append-only check history. Records are never updated;
// they disappear only with their monitor.
type HistoryRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db, now: time.Now}
}

// Append stores rec with a server-assigned timestamp and returns the stored copy.
func (r *HistoryRepo) Append(ctx context.Context, rec models.HistoryRecord) (models.HistoryRecord, error) {
	rec.Timestamp = r.now().UTC()
	return appendHistory(ctx, r.db, rec)
}

func appendHistory(ctx context.Context, ex execer, rec models.HistoryRecord) (models.HistoryRecord, error) {
	res, err := ex.ExecContext(ctx, `
		INSERT INTO monitor_history(monitor_id, status, response_time_ms, response_code, checked_at)
		VALUES(?, ?, ?, ?, ?)
	`, rec.MonitorID, string(rec.Status), rec.ResponseTimeMS, nullableInt(rec.ResponseCode), formatTime(rec.Timestamp))
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("insert history for %s: %w", rec.MonitorID, err)
	}
	id, _ := res.LastInsertId()
	rec.ID = id
	return rec, nil
}

// Recent returns the newest limit records ordered oldest to newest.
func (r *HistoryRepo) Recent(ctx context.Context, monitorID string, limit int) ([]models.HistoryRecord, error) {
	if limit <= 0 {
		return []models.HistoryRecord{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, monitor_id, status, response_time_ms, response_code, checked_at
		FROM monitor_history
		WHERE monitor_id = ?
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, monitorID, limit)
	if err != nil {
		return nil, err
	}
	records, err := scanHistory(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Since returns every record at or after windowStart, oldest first.
func (r *HistoryRepo) Since(ctx context.Context, monitorID string, windowStart time.Time) ([]models.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, monitor_id, status, response_time_ms, response_code, checked_at
		FROM monitor_history
		WHERE monitor_id = ? AND checked_at >= ?
		ORDER BY checked_at ASC, id ASC
	`, monitorID, formatTime(windowStart))
	if err != nil {
		return nil, err
	}
	return scanHistory(rows)
}

// Uptime is the percentage of "up" records since windowStart, 100 when empty.
func (r *HistoryRepo) Uptime(ctx context.Context, monitorID string, windowStart time.Time) (float64, error) {
	var up, total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM monitor_history
		WHERE monitor_id = ? AND checked_at >= ?
	`, string(models.StatusUp), monitorID, formatTime(windowStart)).Scan(&up, &total)
	if err != nil {
		return 0, fmt.Errorf("uptime for %s: %w", monitorID, err)
	}
	return models.UptimePercentage(up, total), nil
}

func (r *HistoryRepo) DeleteAll(ctx context.Context, monitorID string) (int64, error) {
	return deleteHistory(ctx, r.db, monitorID)
}

func deleteHistory(ctx context.Context, ex execer, monitorID string) (int64, error) {
	res, err := ex.ExecContext(ctx, `DELETE FROM monitor_history WHERE monitor_id = ?`, monitorID)
	if err != nil {
		return 0, fmt.Errorf("delete history for %s: %w", monitorID, err)
	}
	return res.RowsAffected()
}

func scanHistory(rows *sql.Rows) ([]models.HistoryRecord, error) {
	defer rows.Close()

	records := make([]models.HistoryRecord, 0)
	for rows.Next() {
		var (
			rec     models.HistoryRecord
			status  string
			code    sql.NullInt64
			checked string
		)
		if err := rows.Scan(&rec.ID, &rec.MonitorID, &status, &rec.ResponseTimeMS, &code, &checked); err != nil {
			return nil, err
		}
		ts, err := parseTime(checked)
		if err != nil {
			return nil, err
		}
		rec.Status = models.Status(status)
		rec.ResponseCode = intPtr(code)
		rec.Timestamp = ts
		records = append(records, rec)
	}
	return records, rows.Err()
}
