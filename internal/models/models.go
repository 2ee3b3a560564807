package models

import (
	"strconv"
	"time"
)

type MonitorType string

const (
	TypeHTTP    MonitorType = "http"
	TypePing    MonitorType = "ping"
	TypePort    MonitorType = "port"
	TypeKeyword MonitorType = "keyword"
)

func (t MonitorType) Valid() bool {
	switch t {
	case TypeHTTP, TypePing, TypePort, TypeKeyword:
		return true
	}
	return false
}

type Status string

const (
	StatusPending Status = "pending"
	StatusUp      Status = "up"
	StatusDown    Status = "down"
)

const (
	DefaultMethod          = "GET"
	DefaultExpectedStatus  = "200"
	DefaultIntervalSeconds = 180
)

type NotificationPrefs struct {
	Enabled  bool     `json:"enabled" example:"true"`
	Emails   []string `json:"emails" example:"ops@example.com"`
	Downtime bool     `json:"downtime" example:"true"`
	Uptime   bool     `json:"uptime" example:"true"`
}

type Monitor struct {
	ID              string            `json:"id" example:"6b0c2f7e-8f0e-4d53-9a43-1f2f6c1d9e11"`
	Name            string            `json:"name" example:"Homepage"`
	Type            MonitorType       `json:"type" example:"http"`
	URL             string            `json:"url,omitempty" example:"https://example.com"`
	Host            string            `json:"host,omitempty" example:"example.com"`
	Port            int               `json:"port,omitempty" example:"443"`
	Method          string            `json:"method,omitempty" example:"GET"`
	Headers         map[string]string `json:"headers,omitempty"`
	ExpectedStatus  string            `json:"expected_status,omitempty" example:"200"`
	Keywords        []string          `json:"keywords,omitempty" example:"maintenance"`
	ShouldExist     bool              `json:"should_exist" example:"true"`
	IntervalSeconds int               `json:"interval_seconds" example:"180"`

	Status         Status     `json:"status" example:"up"`
	LastChecked    *time.Time `json:"last_checked,omitempty"`
	ResponseTimeMS *int       `json:"response_time_ms,omitempty" example:"153"`
	ResponseCode   *int       `json:"response_code,omitempty" example:"200"`
	LastError      string     `json:"last_error,omitempty" example:""`

	Notifications NotificationPrefs `json:"notifications"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Target is the human readable probe destination used in logs and emails.
func (m Monitor) Target() string {
	switch m.Type {
	case TypePing:
		if m.Host != "" {
			return m.Host
		}
	case TypePort:
		if m.Host != "" {
			return m.Host + ":" + strconv.Itoa(m.Port)
		}
	}
	return m.URL
}

// ApplyDefaults fills the fields a freshly created monitor is expected to carry.
func (m *Monitor) ApplyDefaults() {
	if m.Method == "" {
		m.Method = DefaultMethod
	}
	if m.ExpectedStatus == "" {
		m.ExpectedStatus = DefaultExpectedStatus
	}
	if m.IntervalSeconds <= 0 {
		m.IntervalSeconds = DefaultIntervalSeconds
	}
	if m.Status == "" {
		m.Status = StatusPending
	}
	if m.Notifications.Emails == nil {
		m.Notifications.Emails = []string{}
	}
}

type HistoryRecord struct {
	ID             int64     `json:"id" example:"1"`
	MonitorID      string    `json:"monitor_id" example:"6b0c2f7e-8f0e-4d53-9a43-1f2f6c1d9e11"`
	Status         Status    `json:"status" example:"up"`
	ResponseTimeMS int       `json:"response_time_ms" example:"153"`
	ResponseCode   *int      `json:"response_code,omitempty" example:"200"`
	Timestamp      time.Time `json:"timestamp"`
}

type HistoryPoint struct {
	Time         time.Time `json:"time"`
	Status       Status    `json:"status" example:"up"`
	ResponseTime int       `json:"responseTime" example:"153"`
}

type UptimeResponse struct {
	MonitorID string  `json:"monitor_id" example:"6b0c2f7e-8f0e-4d53-9a43-1f2f6c1d9e11"`
	Days      int     `json:"days" example:"30"`
	Uptime    float64 `json:"uptime" example:"99.5"`
}

// UptimePercentage is 100 when nothing was recorded in the window.
func UptimePercentage(up, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(up) / float64(total) * 100
}
