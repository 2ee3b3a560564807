package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MimoJanra/sitewatch/internal/checker"
	"github.com/MimoJanra/sitewatch/internal/models"
	"github.com/MimoJanra/sitewatch/internal/storage"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 1000
	defaultUptimeDays   = 30
	maxUptimeDays       = 365
)

// Scheduler is the part of the check scheduler the API drives.
type Scheduler interface {
	Register(m models.Monitor)
	Unregister(id string)
}

type Server struct {
	MonitorRepo *storage.MonitorRepo
	HistoryRepo *storage.HistoryRepo
	Scheduler   Scheduler
	Logger      *zap.Logger
	Now         func() time.Time
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.Logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

type notificationRequest struct {
	Enabled  *bool    `json:"enabled" example:"true"`
	Emails   []string `json:"emails" example:"ops@example.com"`
	Downtime *bool    `json:"downtime" example:"true"`
	Uptime   *bool    `json:"uptime" example:"true"`
}

type monitorRequest struct {
	Name            string               `json:"name" example:"Homepage"`
	Type            models.MonitorType   `json:"type" example:"http"`
	URL             string               `json:"url" example:"https://example.com"`
	Host            string               `json:"host" example:"example.com"`
	Port            int                  `json:"port" example:"443"`
	Method          string               `json:"method" example:"GET"`
	Headers         map[string]string    `json:"headers"`
	ExpectedStatus  string               `json:"expected_status" example:"200"`
	Keywords        []string             `json:"keywords" example:"welcome"`
	ShouldExist     *bool                `json:"should_exist" example:"true"`
	IntervalSeconds int                  `json:"interval_seconds" example:"180"`
	Notifications   *notificationRequest `json:"notifications"`
}

func (req monitorRequest) toMonitor() models.Monitor {
	m := models.Monitor{
		Name:            strings.TrimSpace(req.Name),
		Type:            models.MonitorType(strings.ToLower(string(req.Type))),
		URL:             strings.TrimSpace(req.URL),
		Host:            strings.TrimSpace(req.Host),
		Port:            req.Port,
		Method:          strings.ToUpper(strings.TrimSpace(req.Method)),
		Headers:         req.Headers,
		ExpectedStatus:  strings.TrimSpace(req.ExpectedStatus),
		Keywords:        req.Keywords,
		ShouldExist:     true,
		IntervalSeconds: req.IntervalSeconds,
		Notifications: models.NotificationPrefs{
			Emails:   []string{},
			Downtime: true,
			Uptime:   true,
		},
	}
	if req.ShouldExist != nil {
		m.ShouldExist = *req.ShouldExist
	}
	if n := req.Notifications; n != nil {
		if n.Enabled != nil {
			m.Notifications.Enabled = *n.Enabled
		}
		if n.Emails != nil {
			m.Notifications.Emails = n.Emails
		}
		if n.Downtime != nil {
			m.Notifications.Downtime = *n.Downtime
		}
		if n.Uptime != nil {
			m.Notifications.Uptime = *n.Uptime
		}
	}
	m.ApplyDefaults()
	return m
}

func validateMonitor(m models.Monitor) error {
	if m.Name == "" {
		return errors.New("name required")
	}
	if !m.Type.Valid() {
		return fmt.Errorf("unsupported monitor type %q", m.Type)
	}

	switch m.Type {
	case models.TypeHTTP, models.TypeKeyword:
		u, err := url.Parse(m.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("url must be an absolute http(s) url")
		}
	case models.TypePing:
		if m.Host == "" && m.URL == "" {
			return errors.New("host required")
		}
	case models.TypePort:
		if m.Host == "" {
			return errors.New("host required")
		}
		if m.Port < 1 || m.Port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
	}

	if _, err := checker.ParseStatusPredicate(m.ExpectedStatus); err != nil {
		return err
	}
	for _, e := range m.Notifications.Emails {
		if _, err := mail.ParseAddress(e); err != nil {
			return fmt.Errorf("invalid email %q", e)
		}
	}
	return nil
}

func decodeMonitor(r *http.Request) (models.Monitor, error) {
	var req monitorRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return models.Monitor{}, errors.New("invalid request body")
	}
	m := req.toMonitor()
	return m, validateMonitor(m)
}

// ListMonitors godoc
// @Summary      List monitors
// @Tags         monitors
// @Produce      json
// @Success      200  {array}   models.Monitor
// @Router       /monitors [get]
func (s *Server) ListMonitors(w http.ResponseWriter, r *http.Request) {
	monitors, err := s.MonitorRepo.ListAll(r.Context())
	if err != nil {
		s.internalError(w, "failed to get monitors", err)
		return
	}
	writeJSON(w, http.StatusOK, monitors)
}

// CreateMonitor godoc
// @Summary      Create a monitor and start checking it
// @Tags         monitors
// @Accept       json
// @Produce      json
// @Param        monitor  body      monitorRequest  true  "Monitor"
// @Success      201      {object}  models.Monitor
// @Failure      400      {string}  string
// @Router       /monitors [post]
func (s *Server) CreateMonitor(w http.ResponseWriter, r *http.Request) {
	m, err := decodeMonitor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.MonitorRepo.Create(r.Context(), m)
	if err != nil {
		s.internalError(w, "failed to create monitor", err)
		return
	}
	s.Scheduler.Register(created)
	writeJSON(w, http.StatusCreated, created)
}

// GetMonitor godoc
// @Summary      Get a monitor
// @Tags         monitors
// @Produce      json
// @Param        id   path      string  true  "Monitor ID"
// @Success      200  {object}  models.Monitor
// @Failure      404  {string}  string
// @Router       /monitors/{id} [get]
func (s *Server) GetMonitor(w http.ResponseWriter, r *http.Request) {
	m, ok := s.loadMonitor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateMonitor godoc
// @Summary      Replace a monitor's configuration
// @Tags         monitors
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Monitor ID"
// @Param        monitor  body      monitorRequest  true  "Monitor"
// @Success      200      {object}  models.Monitor
// @Failure      400      {string}  string
// @Failure      404      {string}  string
// @Router       /monitors/{id} [put]
func (s *Server) UpdateMonitor(w http.ResponseWriter, r *http.Request) {
	m, err := decodeMonitor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m.ID = chi.URLParam(r, "id")

	updated, err := s.MonitorRepo.Update(r.Context(), m)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	}
	if err != nil {
		s.internalError(w, "failed to update monitor", err)
		return
	}
	s.Scheduler.Register(updated)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteMonitor godoc
// @Summary      Delete a monitor and its history
// @Tags         monitors
// @Param        id   path      string  true  "Monitor ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {string}  string
// @Router       /monitors/{id} [delete]
func (s *Server) DeleteMonitor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.Scheduler.Unregister(id)
	err := s.MonitorRepo.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	}
	if err != nil {
		s.internalError(w, "failed to delete monitor", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// GetHistory godoc
// @Summary      Check results, oldest first
// @Description  Without days the newest limit records are returned. With days every record in the window is returned, trimmed to the newest limit when limit is given.
// @Tags         monitors
// @Produce      json
// @Param        id     path      string  true   "Monitor ID"
// @Param        limit  query     int     false  "Number of records" default(30)
// @Param        days   query     int     false  "Window in days"
// @Success      200    {array}   models.HistoryPoint
// @Failure      400    {string}  string
// @Failure      404    {string}  string
// @Router       /monitors/{id}/history [get]
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days, err := intQuery(r, "days", 0, 1, maxUptimeDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, ok := s.loadMonitor(w, r)
	if !ok {
		return
	}

	var records []models.HistoryRecord
	if days > 0 {
		windowStart := s.now().Add(-time.Duration(days) * 24 * time.Hour)
		records, err = s.HistoryRepo.Since(r.Context(), m.ID, windowStart)
		if err == nil && r.URL.Query().Has("limit") && len(records) > limit {
			records = records[len(records)-limit:]
		}
	} else {
		records, err = s.HistoryRepo.Recent(r.Context(), m.ID, limit)
	}
	if err != nil {
		s.internalError(w, "failed to get history", err)
		return
	}

	points := make([]models.HistoryPoint, 0, len(records))
	for _, rec := range records {
		points = append(points, models.HistoryPoint{
			Time:         rec.Timestamp,
			Status:       rec.Status,
			ResponseTime: rec.ResponseTimeMS,
		})
	}
	writeJSON(w, http.StatusOK, points)
}

// GetUptime godoc
// @Summary      Uptime percentage over the last N days
// @Tags         monitors
// @Produce      json
// @Param        id    path      string  true   "Monitor ID"
// @Param        days  query     int     false  "Window in days" default(30)
// @Success      200   {object}  models.UptimeResponse
// @Failure      404   {string}  string
// @Router       /monitors/{id}/uptime [get]
func (s *Server) GetUptime(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", defaultUptimeDays, 1, maxUptimeDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, ok := s.loadMonitor(w, r)
	if !ok {
		return
	}

	windowStart := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	uptime, err := s.HistoryRepo.Uptime(r.Context(), m.ID, windowStart)
	if err != nil {
		s.internalError(w, "failed to compute uptime", err)
		return
	}
	writeJSON(w, http.StatusOK, models.UptimeResponse{MonitorID: m.ID, Days: days, Uptime: uptime})
}

func (s *Server) loadMonitor(w http.ResponseWriter, r *http.Request) (models.Monitor, bool) {
	m, err := s.MonitorRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "monitor not found")
		return models.Monitor{}, false
	}
	if err != nil {
		s.internalError(w, "failed to get monitor", err)
		return models.Monitor{}, false
	}
	return m, true
}

func intQuery(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}
