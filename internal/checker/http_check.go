package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MimoJanra/sitewatch/internal/models"
)

// maxKeywordBody caps how much of a response body is kept for keyword matching.
const maxKeywordBody = 1 << 20

func (p *NetProber) probeHTTP(ctx context.Context, m models.Monitor) Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, normalizeMethod(m.Method), m.URL, nil)
	if err != nil {
		return failure(0, err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	for k, v := range m.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return failure(elapsedMS(start), err)
	}
	defer closeResponseBody(resp.Body)

	var body string
	if m.Type == models.TypeKeyword {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxKeywordBody))
		if err != nil {
			return failure(elapsedMS(start), fmt.Errorf("read body: %w", err))
		}
		body = string(raw)
	}

	code := resp.StatusCode
	return Outcome{
		Reachable:      true,
		ResponseTimeMS: elapsedMS(start),
		ResponseCode:   &code,
		Body:           body,
	}
}

func normalizeMethod(method string) string {
	if method == "" {
		return models.DefaultMethod
	}
	return method
}

func closeResponseBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
