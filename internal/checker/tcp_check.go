package checker

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/MimoJanra/sitewatch/internal/models"
)

func (p *NetProber) probePort(ctx context.Context, m models.Monitor) Outcome {
	host := hostOf(m)
	if host == "" || m.Port <= 0 || m.Port > 65535 {
		return failure(0, fmt.Errorf("invalid port target %q:%d", host, m.Port))
	}
	address := net.JoinHostPort(host, strconv.Itoa(m.Port))

	dialer := net.Dialer{Timeout: p.timeout}
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	duration := elapsedMS(start)
	if err != nil {
		return failure(duration, fmt.Errorf("TCP connection failed: %w", err))
	}

	if err := conn.Close(); err != nil {
		p.logger.Debug("failed to close TCP connection", zap.String("address", address), zap.Error(err))
	}
	return Outcome{Reachable: true, ResponseTimeMS: duration}
}
