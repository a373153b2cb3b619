package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/PabloGalante/goal-forge/internal/domain"
	"github.com/PabloGalante/goal-forge/internal/ledger"
)

func TestGoalDecodesEitherCalendarShape(t *testing.T) {
	var fromMap, fromList domain.Goal
	if err := json.Unmarshal([]byte(`{"id":"g1","estimatedEffort":90,"progressCalendar":{"2024-01-01":30}}`), &fromMap); err != nil {
		t.Fatalf("decode map form: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"id":"g1","estimatedEffort":90,"progressCalendar":[{"date":"2024-01-01","effort":30}]}`), &fromList); err != nil {
		t.Fatalf("decode list form: %v", err)
	}

	for _, g := range []domain.Goal{fromMap, fromList} {
		totals := g.Totals()
		if totals.Invested != 30 || totals.Remaining != 60 {
			t.Fatalf("expected invested=30 remaining=60, got %+v", totals)
		}
	}
}

func TestRefreshTotals(t *testing.T) {
	g := &domain.Goal{
		EstimatedEffort:  50,
		ProgressCalendar: ledger.Ledger{{Date: "2024-01-01", Effort: 70}},
	}
	g.RefreshTotals()
	if g.InvestedEffort != 70 || g.RemainingEffort != 0 {
		t.Fatalf("unexpected totals: invested=%v remaining=%v", g.InvestedEffort, g.RemainingEffort)
	}
}

func TestStatusRules(t *testing.T) {
	if domain.StatusNotStarted.AcceptsEffort() {
		t.Fatalf("not started goals must refuse effort")
	}
	if !domain.GoalStatus("").AcceptsEffort() {
		t.Fatalf("legacy goals without status must accept effort")
	}

	allowed := []struct{ from, to domain.GoalStatus }{
		{domain.StatusNotStarted, domain.StatusActive},
		{domain.StatusActive, domain.StatusPaused},
		{domain.StatusPaused, domain.StatusActive},
		{domain.StatusActive, domain.StatusCompleted},
		{domain.StatusPaused, domain.StatusCompleted},
	}
	for _, c := range allowed {
		if !c.from.CanTransition(c.to) {
			t.Errorf("expected %s -> %s to be allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to domain.GoalStatus }{
		{domain.StatusNotStarted, domain.StatusPaused},
		{domain.StatusCompleted, domain.StatusActive},
		{domain.StatusActive, domain.StatusNotStarted},
	}
	for _, c := range denied {
		if c.from.CanTransition(c.to) {
			t.Errorf("expected %s -> %s to be rejected", c.from, c.to)
		}
	}
}

func TestParseProgressType(t *testing.T) {
	cases := map[string]domain.ProgressType{
		"dur": domain.ProgressDuration,
		"hr":  domain.ProgressDuration,
		"CNT": domain.ProgressCount,
	}
	for in, want := range cases {
		got, ok := domain.ParseProgressType(in)
		if !ok || got != want {
			t.Errorf("ParseProgressType(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := domain.ParseProgressType("km"); ok {
		t.Errorf("expected unknown type to be rejected")
	}
}

func TestFormatEffortByType(t *testing.T) {
	dur := &domain.Goal{ProgressType: domain.ProgressDuration}
	cnt := &domain.Goal{ProgressType: domain.ProgressCount}
	if got := dur.FormatEffort(90); got != "1h30m" {
		t.Errorf("duration format = %q", got)
	}
	if got := cnt.FormatEffort(90); got != "90" {
		t.Errorf("count format = %q", got)
	}
}
