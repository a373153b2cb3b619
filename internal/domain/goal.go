package domain

import "github.com/PabloGalante/goal-forge/internal/ledger"

// Goal is a target effort plus the ledger of effort logged against it.
// InvestedEffort and RemainingEffort are cached by the backends; Totals
// always recomputes them from the ledger.
type Goal struct {
	ID               GoalID        `json:"id"`
	Name             string        `json:"goalName"`
	ProgressType     ProgressType  `json:"progressType"`
	EstimatedEffort  float64       `json:"estimatedEffort"`
	ProgressCalendar ledger.Ledger `json:"progressCalendar"`
	InvestedEffort   float64       `json:"investedEffort"`
	RemainingEffort  float64       `json:"remainingEffort"`
	StartDate        *string       `json:"startDate,omitempty"`
	Status           GoalStatus    `json:"status,omitempty"`
}

// Totals recomputes invested and remaining effort from the ledger.
func (g *Goal) Totals() ledger.Totals {
	return ledger.Aggregate(g.ProgressCalendar, g.EstimatedEffort)
}

// RefreshTotals writes the recomputed totals back into the cached fields.
func (g *Goal) RefreshTotals() {
	t := g.Totals()
	g.InvestedEffort = t.Invested
	g.RemainingEffort = t.Remaining
}

// FormatEffort renders v in the goal's unit.
func (g *Goal) FormatEffort(v float64) string {
	if g.ProgressType == ProgressDuration {
		return ledger.FormatDuration(v)
	}
	return ledger.FormatCount(v)
}

// GoalChanges holds the editable fields of a goal. Nil fields are left as is.
type GoalChanges struct {
	Name            *string       `json:"goalName,omitempty"`
	ProgressType    *ProgressType `json:"progressType,omitempty"`
	EstimatedEffort *float64      `json:"estimatedEffort,omitempty"`
	Status          *GoalStatus   `json:"status,omitempty"`
	StartDate       *string       `json:"startDate,omitempty"`
}

// Apply copies the set fields onto g.
func (c GoalChanges) Apply(g *Goal) {
	if c.Name != nil {
		g.Name = *c.Name
	}
	if c.ProgressType != nil {
		g.ProgressType = *c.ProgressType
	}
	if c.EstimatedEffort != nil {
		g.EstimatedEffort = *c.EstimatedEffort
	}
	if c.Status != nil {
		g.Status = *c.Status
	}
	if c.StartDate != nil {
		g.StartDate = c.StartDate
	}
}

// NewGoal is the input for creating a goal.
type NewGoal struct {
	Name            string       `json:"goalName"`
	ProgressType    ProgressType `json:"progressType"`
	EstimatedEffort float64      `json:"estimatedEffort"`
}

// User is the signed-in account as returned by the auth backend.
type User struct {
	ID      string `json:"id,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Session is the persisted sign-in state. An empty token means anonymous.
type Session struct {
	Token string
	User  *User
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}
