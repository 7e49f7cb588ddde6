package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/parole-stats/internal/datetext"
)

// ErrInvalidCaseDate is returned when a per-day row label is not a date
var ErrInvalidCaseDate = errors.New("invalid case date")

// Kind is the classification of one table row
type Kind int

const (
	KindCaseDate Kind = iota
	KindTotal
	KindUnknownDate
	KindDenied
	KindSkip
)

func (k Kind) String() string {
	switch k {
	case KindCaseDate:
		return "case_date"
	case KindTotal:
		return "total"
	case KindUnknownDate:
		return "unknown_date"
	case KindDenied:
		return "denied"
	case KindSkip:
		return "skip"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Rule maps a row to a Kind when Match returns true.
// Labels are passed trimmed and lowercased.
type Rule struct {
	Name  string
	Kind  Kind
	Match func(label string, value int) bool
}

func labelEquals(s string) func(string, int) bool {
	return func(label string, _ int) bool { return label == s }
}

func labelContains(subs ...string) func(string, int) bool {
	return func(label string, _ int) bool {
		for _, s := range subs {
			if strings.Contains(label, s) {
				return true
			}
		}
		return false
	}
}

// DefaultRules are evaluated in order, first match wins. A row matching no
// rule is a per-day approved count.
var DefaultRules = []Rule{
	{Name: "total", Kind: KindTotal, Match: labelEquals("total")},
	{Name: "unknown date", Kind: KindUnknownDate, Match: labelContains("desconoce", "precisar", "sin fecha")},
	{Name: "denied", Kind: KindDenied, Match: labelContains("denegados")},
	{Name: "zero", Kind: KindSkip, Match: func(_ string, value int) bool { return value == 0 }},
}

// Case is the approved count for one case day
type Case struct {
	Date     time.Time
	Approved int
}

// Totals accumulates the classified rows of one report.
// Calculated only ever includes unknown-date and per-day values.
type Totals struct {
	Total       *int
	UnknownDate *int
	Denied      *int
	Calculated  int
	Cases       []Case
}

// Classifier sorts table rows into Totals
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over rules, or DefaultRules when none are given
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Kind returns the kind of the first rule matching the row
func (c *Classifier) Kind(label string, value int) Kind {
	for _, r := range c.rules {
		if r.Match(label, value) {
			return r.Kind
		}
	}
	return KindCaseDate
}

// Classify consumes rows in order. Rows whose value is not an integer are
// ignored. Per-day labels are parsed with the year of reportDate as fallback,
// and any label that fails to parse fails the whole report.
// When no total row is present Total is set to Calculated.
func (c *Classifier) Classify(rows []Row, reportDate time.Time) (*Totals, error) {
	totals := &Totals{Cases: make([]Case, 0)}

	for _, row := range rows {
		value, err := strconv.Atoi(strings.TrimSpace(row.Value))
		if err != nil {
			continue
		}

		label := strings.ToLower(strings.TrimSpace(row.Label))

		switch c.Kind(label, value) {
		case KindTotal:
			totals.Total = intPtr(value)
		case KindUnknownDate:
			totals.UnknownDate = intPtr(value)
			totals.Calculated += value
		case KindDenied:
			totals.Denied = intPtr(value)
		case KindSkip:
			continue
		case KindCaseDate:
			date, err := datetext.Parse(label, reportDate.Year())
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidCaseDate, err)
			}
			totals.Cases = append(totals.Cases, Case{Date: date, Approved: value})
			totals.Calculated += value
		}
	}

	if totals.Total == nil {
		totals.Total = intPtr(totals.Calculated)
	}

	return totals, nil
}

func intPtr(v int) *int {
	return &v
}
