package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MimoJanra/sitewatch/internal/models"
)

// Evaluator turns a probe outcome into a monitor status. The zero value
// judges reachability and keywords only.
type Evaluator struct {
	// EnforceExpectedStatus also requires http and keyword responses to match
	// the monitor's ExpectedStatus predicate.
	EnforceExpectedStatus bool
}

// Evaluate applies the default rules.
func Evaluate(m models.Monitor, o Outcome) models.Status {
	return Evaluator{}.Evaluate(m, o)
}

func (e Evaluator) Evaluate(m models.Monitor, o Outcome) models.Status {
	if !o.Reachable {
		return models.StatusDown
	}

	isHTTP := m.Type == models.TypeHTTP || m.Type == models.TypeKeyword
	if e.EnforceExpectedStatus && isHTTP {
		pred, err := ParseStatusPredicate(m.ExpectedStatus)
		if err != nil || o.ResponseCode == nil || !pred.Match(*o.ResponseCode) {
			return models.StatusDown
		}
	}

	if m.Type == models.TypeKeyword && keywordsFound(o.Body, m.Keywords) != m.ShouldExist {
		return models.StatusDown
	}
	return models.StatusUp
}

// keywordsFound reports whether every keyword occurs in body, ignoring case.
// An empty keyword list is vacuously found.
func keywordsFound(body string, keywords []string) bool {
	lower := strings.ToLower(body)
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

type statusRange struct {
	lo, hi int
}

// StatusPredicate is a parsed expected-status expression such as
// "200", "200,204", "2xx" or "200-399".
type StatusPredicate []statusRange

// ParseStatusPredicate parses a comma separated list of codes, Nxx classes
// and a-b ranges. An empty expression means any 2xx code.
func ParseStatusPredicate(expr string) (StatusPredicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return StatusPredicate{{200, 299}}, nil
	}

	var pred StatusPredicate
	for _, tok := range strings.Split(expr, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		r, err := parseStatusToken(tok)
		if err != nil {
			return nil, err
		}
		pred = append(pred, r)
	}
	if len(pred) == 0 {
		return nil, fmt.Errorf("expected status %q has no codes", expr)
	}
	return pred, nil
}

func parseStatusToken(tok string) (statusRange, error) {
	if len(tok) == 3 && strings.HasSuffix(tok, "xx") {
		class := int(tok[0] - '0')
		if class < 1 || class > 5 {
			return statusRange{}, fmt.Errorf("invalid status class %q", tok)
		}
		return statusRange{class * 100, class*100 + 99}, nil
	}

	if lo, hi, ok := strings.Cut(tok, "-"); ok {
		a, errA := parseStatusCode(lo)
		b, errB := parseStatusCode(hi)
		if errA != nil || errB != nil || a > b {
			return statusRange{}, fmt.Errorf("invalid status range %q", tok)
		}
		return statusRange{a, b}, nil
	}

	code, err := parseStatusCode(tok)
	if err != nil {
		return statusRange{}, err
	}
	return statusRange{code, code}, nil
}

func parseStatusCode(s string) (int, error) {
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || code < 100 || code > 599 {
		return 0, fmt.Errorf("invalid status code %q", s)
	}
	return code, nil
}

func (p StatusPredicate) Match(code int) bool {
	for _, r := range p {
		if code >= r.lo && code <= r.hi {
			return true
		}
	}
	return false
}
