package checker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/MimoJanra/sitewatch/internal/config"
	"github.com/MimoJanra/sitewatch/internal/models"
)

// Outcome is the raw result of one probe. It carries no judgement about
// whether the monitor is up.
type Outcome struct {
	Reachable      bool
	ResponseTimeMS int
	ResponseCode   *int
	Body           string
	FailureReason  string
}

// NetProber probes monitors over the network. It has no storage or
// notification side effects.
type NetProber struct {
	client     *http.Client
	timeout    time.Duration
	userAgent  string
	privileged bool
	logger     *zap.Logger
}

func NewProber(cfg config.ProberConfig, logger *zap.Logger) *NetProber {
	return &NetProber{
		client:     &http.Client{Timeout: cfg.Timeout},
		timeout:    cfg.Timeout,
		userAgent:  cfg.UserAgent,
		privileged: cfg.PrivilegedPing,
		logger:     logger.Named("prober"),
	}
}

func (p *NetProber) Probe(ctx context.Context, m models.Monitor) Outcome {
	switch m.Type {
	case models.TypeHTTP, models.TypeKeyword:
		return p.probeHTTP(ctx, m)
	case models.TypePing:
		return p.probePing(ctx, m)
	case models.TypePort:
		return p.probePort(ctx, m)
	default:
		return failure(0, fmt.Errorf("unsupported monitor type %q", m.Type))
	}
}

func failure(durationMS int, err error) Outcome {
	return Outcome{
		Reachable:      false,
		ResponseTimeMS: durationMS,
		FailureReason:  err.Error(),
	}
}

func elapsedMS(start time.Time) int {
	return int(time.Since(start).Milliseconds())
}

// hostOf returns m.Host, falling back to the hostname part of m.URL.
func hostOf(m models.Monitor) string {
	if m.Host != "" {
		return m.Host
	}
	if u, err := url.Parse(m.URL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return m.URL
}
