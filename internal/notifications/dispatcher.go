package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MimoJanra/sitewatch/internal/models"
)

type Kind int

const (
	KindNone Kind = iota
	KindDown
	KindUp
)

func (k Kind) String() string {
	switch k {
	case KindDown:
		return "down"
	case KindUp:
		return "up"
	default:
		return "none"
	}
}

// Decide reports which email, if any, a status transition calls for. Only
// entering down and recovering from down notify.
func Decide(m models.Monitor, previous, next models.Status) Kind {
	if !m.Notifications.Enabled {
		return KindNone
	}
	switch {
	case previous != models.StatusDown && next == models.StatusDown && m.Notifications.Downtime:
		return KindDown
	case previous == models.StatusDown && next == models.StatusUp && m.Notifications.Uptime:
		return KindUp
	}
	return KindNone
}

type Dispatcher struct {
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time
}

func NewDispatcher(mailer Mailer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, logger: logger.Named("notifications"), now: time.Now}
}

// MaybeNotify sends the email Decide asks for. Delivery errors are logged and
// never returned.
func (d *Dispatcher) MaybeNotify(ctx context.Context, m models.Monitor, previous, next models.Status) {
	kind := Decide(m, previous, next)
	if kind == KindNone {
		return
	}
	log := d.logger.With(zap.String("monitor_id", m.ID), zap.Stringer("kind", kind))

	to := recipients(m.Notifications.Emails)
	if len(to) == 0 {
		log.Warn("notification enabled but no recipients configured")
		return
	}

	subject, body, err := render(kind, m, d.now())
	if err != nil {
		log.Error("failed to render notification", zap.Error(err))
		return
	}
	if err := d.mailer.Send(ctx, to, subject, body); err != nil {
		log.Error("failed to send notification", zap.Strings("to", to), zap.Error(err))
		return
	}
	log.Info("notification sent", zap.Strings("to", to))
}

func recipients(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

var emailTmpl = template.Must(template.New("email").Parse(`<h2>{{.Heading}}</h2>
<p>{{.Lead}}</p>
<ul>
  <li><strong>Monitor Name:</strong> {{.Name}}</li>
  <li><strong>URL:</strong> {{.Target}}</li>
  <li><strong>Status:</strong> {{.Status}}</li>
  <li><strong>Time:</strong> {{.Time}}</li>
  {{- if .Reason}}
  <li><strong>Error:</strong> {{.Reason}}</li>
  {{- end}}
</ul>
{{- if .Footer}}
<p>{{.Footer}}</p>
{{- end}}
`))

type emailData struct {
	Heading string
	Lead    string
	Name    string
	Target  string
	Status  string
	Time    string
	Reason  string
	Footer  string
}

func render(kind Kind, m models.Monitor, at time.Time) (subject, body string, err error) {
	data := emailData{
		Name:   m.Name,
		Target: m.Target(),
		Time:   at.UTC().Format(time.RFC1123),
	}
	switch kind {
	case KindDown:
		subject = "🔴 Downtime Alert: " + m.Name
		data.Heading = "Monitor Status Alert"
		data.Lead = "Your monitored service is currently down:"
		data.Status = "Down"
		data.Reason = m.LastError
		data.Footer = "We will notify you when the service is back up."
	case KindUp:
		subject = "✅ Service Restored: " + m.Name
		data.Heading = "Monitor Status Update"
		data.Lead = "Your monitored service is back online:"
		data.Status = "Up"
	default:
		return "", "", fmt.Errorf("no email for kind %s", kind)
	}

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s email: %w", kind, err)
	}
	return subject, buf.String(), nil
}
