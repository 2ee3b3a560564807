package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimoJanra/sitewatch/internal/models"
)

func code(c int) *int { return &c }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		monitor models.Monitor
		outcome Outcome
		want    models.Status
	}{
		{
			name:    "unreachable is down",
			monitor: models.Monitor{Type: models.TypeHTTP},
			outcome: Outcome{Reachable: false, FailureReason: "timeout"},
			want:    models.StatusDown,
		},
		{
			name:    "server error still counts as up",
			monitor: models.Monitor{Type: models.TypeHTTP, ExpectedStatus: "200"},
			outcome: Outcome{Reachable: true, ResponseCode: code(500)},
			want:    models.StatusUp,
		},
		{
			name:    "ping reachable",
			monitor: models.Monitor{Type: models.TypePing},
			outcome: Outcome{Reachable: true},
			want:    models.StatusUp,
		},
		{
			name:    "port unreachable",
			monitor: models.Monitor{Type: models.TypePort},
			outcome: Outcome{Reachable: false},
			want:    models.StatusDown,
		},
		{
			name:    "keyword present and expected",
			monitor: models.Monitor{Type: models.TypeKeyword, Keywords: []string{"Welcome"}, ShouldExist: true},
			outcome: Outcome{Reachable: true, ResponseCode: code(200), Body: "<h1>welcome home</h1>"},
			want:    models.StatusUp,
		},
		{
			name:    "one keyword missing",
			monitor: models.Monitor{Type: models.TypeKeyword, Keywords: []string{"welcome", "cart"}, ShouldExist: true},
			outcome: Outcome{Reachable: true, Body: "welcome"},
			want:    models.StatusDown,
		},
		{
			name:    "forbidden keyword present",
			monitor: models.Monitor{Type: models.TypeKeyword, Keywords: []string{"maintenance"}, ShouldExist: false},
			outcome: Outcome{Reachable: true, Body: "Site under Maintenance"},
			want:    models.StatusDown,
		},
		{
			name:    "forbidden keyword absent",
			monitor: models.Monitor{Type: models.TypeKeyword, Keywords: []string{"maintenance"}, ShouldExist: false},
			outcome: Outcome{Reachable: true, Body: "all good"},
			want:    models.StatusUp,
		},
		{
			name:    "empty keywords are always found",
			monitor: models.Monitor{Type: models.TypeKeyword, ShouldExist: true},
			outcome: Outcome{Reachable: true, Body: ""},
			want:    models.StatusUp,
		},
		{
			name:    "empty keywords with should not exist",
			monitor: models.Monitor{Type: models.TypeKeyword, ShouldExist: false},
			outcome: Outcome{Reachable: true, Body: "anything"},
			want:    models.StatusDown,
		},
		{
			name:    "keyword monitor unreachable",
			monitor: models.Monitor{Type: models.TypeKeyword, ShouldExist: false},
			outcome: Outcome{Reachable: false},
			want:    models.StatusDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.monitor, tt.outcome))
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	m := models.Monitor{Type: models.TypeKeyword, Keywords: []string{"ok"}, ShouldExist: true}
	o := Outcome{Reachable: true, Body: "OK"}

	first := Evaluate(m, o)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(m, o))
	}
}

func TestEvaluatorEnforcesExpectedStatus(t *testing.T) {
	e := Evaluator{EnforceExpectedStatus: true}

	httpMonitor := models.Monitor{Type: models.TypeHTTP, ExpectedStatus: "200"}
	assert.Equal(t, models.StatusUp, e.Evaluate(httpMonitor, Outcome{Reachable: true, ResponseCode: code(200)}))
	assert.Equal(t, models.StatusDown, e.Evaluate(httpMonitor, Outcome{Reachable: true, ResponseCode: code(500)}))

	classMonitor := models.Monitor{Type: models.TypeHTTP, ExpectedStatus: "2xx,301"}
	assert.Equal(t, models.StatusUp, e.Evaluate(classMonitor, Outcome{Reachable: true, ResponseCode: code(204)}))
	assert.Equal(t, models.StatusUp, e.Evaluate(classMonitor, Outcome{Reachable: true, ResponseCode: code(301)}))
	assert.Equal(t, models.StatusDown, e.Evaluate(classMonitor, Outcome{Reachable: true, ResponseCode: code(302)}))

	keyword := models.Monitor{Type: models.TypeKeyword, ExpectedStatus: "200", Keywords: []string{"ok"}, ShouldExist: true}
	assert.Equal(t, models.StatusDown, e.Evaluate(keyword, Outcome{Reachable: true, ResponseCode: code(503), Body: "ok"}))

	// non http monitors carry no status code
	assert.Equal(t, models.StatusUp, e.Evaluate(models.Monitor{Type: models.TypePort}, Outcome{Reachable: true}))
}

func TestParseStatusPredicate(t *testing.T) {
	tests := []struct {
		expr    string
		match   []int
		noMatch []int
	}{
		{expr: "", match: []int{200, 204, 299}, noMatch: []int{301, 500}},
		{expr: "200", match: []int{200}, noMatch: []int{201}},
		{expr: "200, 204", match: []int{200, 204}, noMatch: []int{202}},
		{expr: "3XX", match: []int{300, 399}, noMatch: []int{200, 400}},
		{expr: "200-399", match: []int{200, 302, 399}, noMatch: []int{199, 400}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			pred, err := ParseStatusPredicate(tt.expr)
			require.NoError(t, err)
			for _, c := range tt.match {
				assert.True(t, pred.Match(c), "%d should match", c)
			}
			for _, c := range tt.noMatch {
				assert.False(t, pred.Match(c), "%d should not match", c)
			}
		})
	}

	for _, bad := range []string{"abc", "9xx", "399-200", "42", ",", "200-"} {
		_, err := ParseStatusPredicate(bad)
		assert.Error(t, err, bad)
	}
}
