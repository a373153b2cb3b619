package domain

import (
	"context"

	"github.com/PabloGalante/goal-forge/internal/ledger"
)

// GoalBackend is where goals and their ledgers live: the remote API for
// signed-in users, the device store otherwise.
type GoalBackend interface {
	Name() string
	ListGoals(ctx context.Context) ([]*Goal, error)
	GetGoal(ctx context.Context, id GoalID) (*Goal, error)
	CreateGoal(ctx context.Context, in NewGoal) (*Goal, error)
	UpdateGoal(ctx context.Context, id GoalID, changes GoalChanges) (*Goal, error)
	DeleteGoal(ctx context.Context, id GoalID) error
	ReorderGoals(ctx context.Context, ids []GoalID) error

	// CommitEffort records effort for date, replacing any earlier entry for
	// that date. Implementations write nothing when validation fails.
	CommitEffort(ctx context.Context, id GoalID, date string, effort float64) (*Goal, error)
}

// KeyValueStore is the on-device persistence primitive. Get returns
// ErrNotFound for an absent key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ImportMode selects how device goals are merged into an account.
type ImportMode string

const (
	ImportAppend ImportMode = "append"
	ImportReset  ImportMode = "reset"
)

// ImportGoal is the payload shape the import endpoint expects: the
// progress calendar in its {date: effort} form.
type ImportGoal struct {
	ID               GoalID             `json:"id"`
	Name             string             `json:"goalName"`
	ProgressType     ProgressType       `json:"progressType"`
	EstimatedEffort  float64            `json:"estimatedEffort"`
	ProgressCalendar map[string]float64 `json:"progressCalendar"`
	InvestedEffort   float64            `json:"investedEffort"`
	RemainingEffort  float64            `json:"remainingEffort"`
	StartDate        *string            `json:"startDate,omitempty"`
	Status           GoalStatus         `json:"status,omitempty"`
}

// ToImport converts a goal to its import payload.
func ToImport(g *Goal) ImportGoal {
	cal := g.ProgressCalendar
	if cal == nil {
		cal = ledger.Ledger{}
	}
	return ImportGoal{
		ID:               g.ID,
		Name:             g.Name,
		ProgressType:     g.ProgressType,
		EstimatedEffort:  g.EstimatedEffort,
		ProgressCalendar: cal.ToMap(),
		InvestedEffort:   g.InvestedEffort,
		RemainingEffort:  g.RemainingEffort,
		StartDate:        g.StartDate,
		Status:           g.Status,
	}
}

// GoalImporter pushes device goals into a signed-in account.
type GoalImporter interface {
	ImportGoals(ctx context.Context, goals []ImportGoal, mode ImportMode) error
}
