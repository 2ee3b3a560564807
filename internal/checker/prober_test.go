package checker

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/MimoJanra/sitewatch/internal/config"
	"github.com/MimoJanra/sitewatch/internal/models"
)

func newTestProber(t *testing.T, timeout time.Duration) *NetProber {
	return NewProber(config.ProberConfig{Timeout: timeout, UserAgent: "SiteWatch/test"}, zaptest.NewLogger(t))
}

func TestProbeHTTPRecordsStatusWithoutJudging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := newTestProber(t, time.Second).Probe(context.Background(), models.Monitor{Type: models.TypeHTTP, URL: srv.URL})

	assert.True(t, o.Reachable)
	require.NotNil(t, o.ResponseCode)
	assert.Equal(t, http.StatusInternalServerError, *o.ResponseCode)
	assert.Empty(t, o.FailureReason)
	assert.Empty(t, o.Body)
}

func TestProbeHTTPSendsMethodAndHeaders(t *testing.T) {
	seen := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Clone(context.Background())
	}))
	defer srv.Close()

	m := models.Monitor{Type: models.TypeHTTP, URL: srv.URL, Method: http.MethodHead, Headers: map[string]string{"X-Token": "abc"}}
	o := newTestProber(t, time.Second).Probe(context.Background(), m)

	require.True(t, o.Reachable)
	got := <-seen
	assert.Equal(t, http.MethodHead, got.Method)
	assert.Equal(t, "abc", got.Header.Get("X-Token"))
	assert.Equal(t, "SiteWatch/test", got.UserAgent())
}

func TestProbeKeywordKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>Scheduled Maintenance</html>"))
	}))
	defer srv.Close()

	m := models.Monitor{Type: models.TypeKeyword, URL: srv.URL, Keywords: []string{"maintenance"}, ShouldExist: false}
	o := newTestProber(t, time.Second).Probe(context.Background(), m)

	require.True(t, o.Reachable)
	assert.Contains(t, o.Body, "Scheduled Maintenance")
	assert.Equal(t, models.StatusDown, Evaluate(m, o))
}

func TestProbeKeywordBodyIsCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", maxKeywordBody+1024)))
	}))
	defer srv.Close()

	o := newTestProber(t, 5*time.Second).Probe(context.Background(), models.Monitor{Type: models.TypeKeyword, URL: srv.URL})

	require.True(t, o.Reachable)
	assert.Len(t, o.Body, maxKeywordBody)
}

func TestProbeHTTPConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL
	srv.Close()

	o := newTestProber(t, time.Second).Probe(context.Background(), models.Monitor{Type: models.TypeHTTP, URL: target})

	assert.False(t, o.Reachable)
	assert.Nil(t, o.ResponseCode)
	assert.NotEmpty(t, o.FailureReason)
}

func TestProbeHTTPTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	o := newTestProber(t, 50*time.Millisecond).Probe(context.Background(), models.Monitor{Type: models.TypeHTTP, URL: srv.URL})

	assert.False(t, o.Reachable)
	assert.Nil(t, o.ResponseCode)
	assert.NotEmpty(t, o.FailureReason)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProbeHTTPInvalidURL(t *testing.T) {
	o := newTestProber(t, time.Second).Probe(context.Background(), models.Monitor{Type: models.TypeHTTP, URL: "://bad"})

	assert.False(t, o.Reachable)
	assert.NotEmpty(t, o.FailureReason)
}

func TestProbePort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	o := newTestProber(t, time.Second).Probe(context.Background(), models.Monitor{Type: models.TypePort, Host: "127.0.0.1", Port: port})

	assert.True(t, o.Reachable)
	assert.Nil(t, o.ResponseCode)
}

func TestProbePortClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	srv.Close()

	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	o := newTestProber(t, time.Second).Probe(context.Background(), models.Monitor{Type: models.TypePort, Host: u.Hostname(), Port: port})

	assert.False(t, o.Reachable)
	assert.Contains(t, o.FailureReason, "TCP connection failed")
}

func TestProbePortInvalidTarget(t *testing.T) {
	o := newTestProber(t, time.Second).Probe(context.Background(), models.Monitor{Type: models.TypePort, Host: "127.0.0.1", Port: 0})

	assert.False(t, o.Reachable)
	assert.Contains(t, o.FailureReason, "invalid port target")
}

func TestProbeUnsupportedType(t *testing.T) {
	o := newTestProber(t, time.Second).Probe(context.Background(), models.Monitor{Type: "dns"})

	assert.False(t, o.Reachable)
	assert.Contains(t, o.FailureReason, "unsupported monitor type")
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "example.com", hostOf(models.Monitor{Host: "example.com", URL: "https://other.org"}))
	assert.Equal(t, "other.org", hostOf(models.Monitor{URL: "https://other.org:8443/path"}))
	assert.Equal(t, "bare.host", hostOf(models.Monitor{URL: "bare.host"}))
}
