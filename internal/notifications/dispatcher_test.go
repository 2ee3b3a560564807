package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MimoJanra/sitewatch/internal/config"
	"github.com/MimoJanra/sitewatch/internal/models"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func notifyingMonitor() models.Monitor {
	return models.Monitor{
		ID:   "m1",
		Name: "Shop",
		Type: models.TypeHTTP,
		URL:  "https://shop.example.com",
		Notifications: models.NotificationPrefs{
			Enabled:  true,
			Emails:   []string{"ops@example.com"},
			Downtime: true,
			Uptime:   true,
		},
	}
}

func TestDecideTable(t *testing.T) {
	statuses := []models.Status{models.StatusUp, models.StatusDown}
	for _, enabled := range []bool{true, false} {
		for _, downtime := range []bool{true, false} {
			for _, uptime := range []bool{true, false} {
				for _, prev := range statuses {
					for _, next := range statuses {
						m := notifyingMonitor()
						m.Notifications.Enabled = enabled
						m.Notifications.Downtime = downtime
						m.Notifications.Uptime = uptime

						want := KindNone
						switch {
						case enabled && downtime && prev == models.StatusUp && next == models.StatusDown:
							want = KindDown
						case enabled && uptime && prev == models.StatusDown && next == models.StatusUp:
							want = KindUp
						}

						name := fmt.Sprintf("enabled=%v/downtime=%v/uptime=%v/%s->%s", enabled, downtime, uptime, prev, next)
						assert.Equal(t, want, Decide(m, prev, next), name)
					}
				}
			}
		}
	}
}

func TestDecideFromPending(t *testing.T) {
	m := notifyingMonitor()

	assert.Equal(t, KindDown, Decide(m, models.StatusPending, models.StatusDown))
	assert.Equal(t, KindNone, Decide(m, models.StatusPending, models.StatusUp))
}

func TestMaybeNotifySendsDownEmail(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, zap.NewNop())
	d.now = func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }

	m := notifyingMonitor()
	m.LastError = "dial tcp: connection refused"
	d.MaybeNotify(context.Background(), m, models.StatusUp, models.StatusDown)

	require.Len(t, mailer.sent, 1)
	mail := mailer.sent[0]
	assert.Equal(t, []string{"ops@example.com"}, mail.to)
	assert.Equal(t, "🔴 Downtime Alert: Shop", mail.subject)
	assert.Contains(t, mail.body, "https://shop.example.com")
	assert.Contains(t, mail.body, "Down")
	assert.Contains(t, mail.body, "connection refused")
	assert.Contains(t, mail.body, "Mon, 04 May 2026 12:00:00 UTC")
}

func TestMaybeNotifySendsRecoveryEmail(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, zap.NewNop())

	d.MaybeNotify(context.Background(), notifyingMonitor(), models.StatusDown, models.StatusUp)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "✅ Service Restored: Shop", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].body, "back online")
}

func TestMaybeNotifyEscapesMonitorName(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, zap.NewNop())

	m := notifyingMonitor()
	m.Name = "<script>x</script>"
	d.MaybeNotify(context.Background(), m, models.StatusUp, models.StatusDown)

	require.Len(t, mailer.sent, 1)
	assert.NotContains(t, mailer.sent[0].body, "<script>")
}

func TestMaybeNotifyNoTransition(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, zap.NewNop())

	d.MaybeNotify(context.Background(), notifyingMonitor(), models.StatusDown, models.StatusDown)
	d.MaybeNotify(context.Background(), notifyingMonitor(), models.StatusUp, models.StatusUp)

	assert.Empty(t, mailer.sent)
}

func TestMaybeNotifySwallowsTransportFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	mailer := &fakeMailer{err: errors.New("smtp: 421 try later")}
	d := NewDispatcher(mailer, zap.New(core))

	assert.NotPanics(t, func() {
		d.MaybeNotify(context.Background(), notifyingMonitor(), models.StatusUp, models.StatusDown)
	})

	entries := logs.FilterMessage("failed to send notification").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "m1", entries[0].ContextMap()["monitor_id"])
}

func TestMaybeNotifyWithoutRecipients(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, zap.New(core))

	m := notifyingMonitor()
	m.Notifications.Emails = []string{"", "  "}
	d.MaybeNotify(context.Background(), m, models.StatusUp, models.StatusDown)

	assert.Empty(t, mailer.sent)
	assert.Equal(t, 1, logs.FilterMessage("notification enabled but no recipients configured").Len())
}

func TestNewMailerFallsBackToLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	mailer := NewMailer(config.SMTPConfig{}, zap.New(core))

	require.IsType(t, &LogMailer{}, mailer)
	require.NoError(t, mailer.Send(context.Background(), []string{"a@example.com"}, "subj", "<p>x</p>"))
	assert.Equal(t, 1, logs.FilterMessage("email not sent, smtp disabled").Len())
}
