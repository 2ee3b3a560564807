package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MimoJanra/sitewatch/internal/models"
)

type MonitorRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewMonitorRepo(db *sql.DB) *MonitorRepo { return &MonitorRepo{db: db, now: time.Now} }

const monitorColumns = `id, name, type, url, host, port, method, headers, expected_status, keywords, should_exist,
	interval_seconds, status, last_checked, response_time_ms, response_code, last_error,
	notify_enabled, notify_emails, notify_downtime, notify_uptime, created_at, updated_at`

func (r *MonitorRepo) Create(ctx context.Context, m models.Monitor) (models.Monitor, error) {
	m.ApplyDefaults()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := r.now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	m.Status = models.StatusPending
	m.LastChecked, m.ResponseTimeMS, m.ResponseCode, m.LastError = nil, nil, nil, ""

	headers, keywords, emails, err := marshalMonitorJSON(m)
	if err != nil {
		return models.Monitor{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO monitors(id, name, type, url, host, port, method, headers, expected_status, keywords, should_exist,
			interval_seconds, status, notify_enabled, notify_emails, notify_downtime, notify_uptime, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, string(m.Type), m.URL, m.Host, m.Port, m.Method, headers, m.ExpectedStatus, keywords, boolToInt(m.ShouldExist),
		m.IntervalSeconds, string(m.Status), boolToInt(m.Notifications.Enabled), emails,
		boolToInt(m.Notifications.Downtime), boolToInt(m.Notifications.Uptime), formatTime(m.CreatedAt), formatTime(m.UpdatedAt))
	if err != nil {
		return models.Monitor{}, fmt.Errorf("insert monitor: %w", err)
	}
	return m, nil
}

func (r *MonitorRepo) GetByID(ctx context.Context, id string) (models.Monitor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+monitorColumns+` FROM monitors WHERE id = ?`, id)
	m, err := scanMonitor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Monitor{}, fmt.Errorf("monitor %s: %w", id, ErrNotFound)
	}
	return m, err
}

func (r *MonitorRepo) ListAll(ctx context.Context) ([]models.Monitor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+monitorColumns+` FROM monitors ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	monitors := make([]models.Monitor, 0)
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, m)
	}
	return monitors, rows.Err()
}

// Update rewrites the monitor configuration. Runtime fields are owned by
// RecordCheck and are left untouched.
func (r *MonitorRepo) Update(ctx context.Context, m models.Monitor) (models.Monitor, error) {
	m.ApplyDefaults()
	headers, keywords, emails, err := marshalMonitorJSON(m)
	if err != nil {
		return models.Monitor{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE monitors SET name = ?, type = ?, url = ?, host = ?, port = ?, method = ?, headers = ?, expected_status = ?,
			keywords = ?, should_exist = ?, interval_seconds = ?, notify_enabled = ?, notify_emails = ?,
			notify_downtime = ?, notify_uptime = ?, updated_at = ?
		WHERE id = ?
	`, m.Name, string(m.Type), m.URL, m.Host, m.Port, m.Method, headers, m.ExpectedStatus,
		keywords, boolToInt(m.ShouldExist), m.IntervalSeconds, boolToInt(m.Notifications.Enabled), emails,
		boolToInt(m.Notifications.Downtime), boolToInt(m.Notifications.Uptime), formatTime(r.now()), m.ID)
	if err != nil {
		return models.Monitor{}, fmt.Errorf("update monitor %s: %w", m.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Monitor{}, fmt.Errorf("monitor %s: %w", m.ID, ErrNotFound)
	}
	return r.GetByID(ctx, m.ID)
}

// Delete removes the monitor together with its history.
func (r *MonitorRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := deleteHistory(ctx, tx, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM monitors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete monitor %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("monitor %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// RecordCheck appends one history record and mirrors it onto the monitor's
// runtime fields in a single transaction, so the two never disagree.
func (r *MonitorRepo) RecordCheck(ctx context.Context, rec models.HistoryRecord, lastError string) (models.HistoryRecord, error) {
	rec.Timestamp = r.now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("begin record check: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE monitors SET status = ?, last_checked = ?, response_time_ms = ?, response_code = ?, last_error = ?
		WHERE id = ?
	`, string(rec.Status), formatTime(rec.Timestamp), rec.ResponseTimeMS, nullableInt(rec.ResponseCode), lastError, rec.MonitorID)
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("update runtime for %s: %w", rec.MonitorID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.HistoryRecord{}, fmt.Errorf("monitor %s: %w", rec.MonitorID, ErrNotFound)
	}

	stored, err := appendHistory(ctx, tx, rec)
	if err != nil {
		return models.HistoryRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.HistoryRecord{}, fmt.Errorf("commit record check for %s: %w", rec.MonitorID, err)
	}
	return stored, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonitor(row rowScanner) (models.Monitor, error) {
	var (
		m                                     models.Monitor
		typ, status                           string
		headersJSON, keywordsJSON, emailsJSON string
		shouldExist, enabled, down, up        int
		lastChecked                           sql.NullString
		respTime, respCode                    sql.NullInt64
		created, updated                      string
	)
	err := row.Scan(&m.ID, &m.Name, &typ, &m.URL, &m.Host, &m.Port, &m.Method, &headersJSON, &m.ExpectedStatus,
		&keywordsJSON, &shouldExist, &m.IntervalSeconds, &status, &lastChecked, &respTime, &respCode, &m.LastError,
		&enabled, &emailsJSON, &down, &up, &created, &updated)
	if err != nil {
		return models.Monitor{}, err
	}

	m.Type = models.MonitorType(typ)
	m.Status = models.Status(status)
	m.ShouldExist = shouldExist == 1
	m.Notifications = models.NotificationPrefs{Enabled: enabled == 1, Downtime: down == 1, Uptime: up == 1}
	m.Headers = parseHeaders(headersJSON)
	m.Keywords = parseStrings(keywordsJSON)
	m.Notifications.Emails = parseStrings(emailsJSON)
	m.ResponseTimeMS = intPtr(respTime)
	m.ResponseCode = intPtr(respCode)

	if lastChecked.Valid {
		t, err := parseTime(lastChecked.String)
		if err != nil {
			return models.Monitor{}, err
		}
		m.LastChecked = &t
	}
	if m.CreatedAt, err = parseTime(created); err != nil {
		return models.Monitor{}, err
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return models.Monitor{}, err
	}
	return m, nil
}

func marshalMonitorJSON(m models.Monitor) (headers, keywords, emails string, err error) {
	h := m.Headers
	if h == nil {
		h = map[string]string{}
	}
	k := m.Keywords
	if k == nil {
		k = []string{}
	}
	e := m.Notifications.Emails
	if e == nil {
		e = []string{}
	}
	hb, err := json.Marshal(h)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal headers: %w", err)
	}
	kb, err := json.Marshal(k)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal keywords: %w", err)
	}
	eb, err := json.Marshal(e)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal emails: %w", err)
	}
	return string(hb), string(kb), string(eb), nil
}

func parseHeaders(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var h map[string]string
	if err := json.Unmarshal([]byte(raw), &h); err != nil || len(h) == 0 {
		return nil
	}
	return h
}

func parseStrings(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
