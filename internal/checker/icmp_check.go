package checker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/MimoJanra/sitewatch/internal/models"
)

func (p *NetProber) probePing(ctx context.Context, m models.Monitor) Outcome {
	host := hostOf(m)
	if host == "" {
		return failure(0, errors.New("ping monitor has no host"))
	}

	start := time.Now()
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return failure(elapsedMS(start), fmt.Errorf("failed to create pinger: %w", err))
	}
	pinger.Count = 1
	pinger.Timeout = p.timeout
	// windows only supports privileged pings
	pinger.SetPrivileged(p.privileged || runtime.GOOS == "windows")

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- pinger.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			return failure(elapsedMS(start), fmt.Errorf("ping failed: %w", err))
		}
		stats := pinger.Statistics()
		if stats.PacketsRecv == 0 {
			return failure(elapsedMS(start), errors.New("no response received"))
		}
		rtt := stats.AvgRtt.Milliseconds()
		if rtt == 0 && stats.MinRtt > 0 {
			rtt = stats.MinRtt.Milliseconds()
		}
		return Outcome{Reachable: true, ResponseTimeMS: int(rtt)}
	case <-ctx.Done():
		pinger.Stop()
		return failure(elapsedMS(start), fmt.Errorf("ping timeout exceeded: %w", ctx.Err()))
	}
}
