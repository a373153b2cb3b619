// Package device implements domain.GoalBackend on top of an on-device
// key-value store. All goals live in a single JSON record under GoalsKey
// and every write replaces that record.
package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/goal-forge/internal/domain"
	"github.com/PabloGalante/goal-forge/internal/ledger"
)

// GoalsKey is the record holding the ordered goal list.
const GoalsKey = "goals"

type Store struct {
	kv domain.KeyValueStore

	// mu serializes read-modify-write cycles of this process. Another
	// process sharing the same kv can still interleave and lose updates.
	mu sync.Mutex

	newID func() string
}

func NewStore(kv domain.KeyValueStore) *Store {
	return &Store{
		kv:    kv,
		newID: uuid.NewString,
	}
}

func (s *Store) Name() string { return "device" }

// load reads the goals record. A missing record is an empty list.
func (s *Store) load(ctx context.Context) ([]*domain.Goal, error) {
	data, err := s.kv.Get(ctx, GoalsKey)
	if errors.Is(err, domain.ErrNotFound) {
		return []*domain.Goal{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading device goals: %w", err)
	}

	var goals []*domain.Goal
	if err := json.Unmarshal(data, &goals); err != nil {
		return nil, fmt.Errorf("decoding device goals: %w", err)
	}

	out := goals[:0]
	for _, g := range goals {
		if g == nil {
			continue
		}
		if g.ProgressCalendar == nil {
			g.ProgressCalendar = ledger.Ledger{}
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) save(ctx context.Context, goals []*domain.Goal) error {
	data, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("encoding device goals: %w", err)
	}
	if err := s.kv.Set(ctx, GoalsKey, data); err != nil {
		return fmt.Errorf("writing device goals: %w", err)
	}
	return nil
}

func find(goals []*domain.Goal, id domain.GoalID) (int, *domain.Goal) {
	for i, g := range goals {
		if g.ID == id {
			return i, g
		}
	}
	return -1, nil
}

func (s *Store) ListGoals(ctx context.Context) ([]*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *Store) GetGoal(ctx context.Context, id domain.GoalID) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	_, g := find(goals, id)
	if g == nil {
		return nil, domain.ErrGoalNotFound
	}
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, in domain.NewGoal) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	g := &domain.Goal{
		ID:               domain.GoalID(s.newID()),
		Name:             in.Name,
		ProgressType:     in.ProgressType,
		EstimatedEffort:  in.EstimatedEffort,
		ProgressCalendar: ledger.Ledger{},
		Status:           domain.StatusNotStarted,
	}
	g.RefreshTotals()

	if err := s.save(ctx, append(goals, g)); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, id domain.GoalID, changes domain.GoalChanges) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	_, g := find(goals, id)
	if g == nil {
		return nil, domain.ErrGoalNotFound
	}

	changes.Apply(g)
	g.RefreshTotals()

	if err := s.save(ctx, goals); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id domain.GoalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.load(ctx)
	if err != nil {
		return err
	}
	i, _ := find(goals, id)
	if i < 0 {
		return domain.ErrGoalNotFound
	}

	return s.save(ctx, append(goals[:i], goals[i+1:]...))
}

// ReorderGoals puts the listed goals first, in the given order. Goals not
// listed keep their relative order after them.
func (s *Store) ReorderGoals(ctx context.Context, ids []domain.GoalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.load(ctx)
	if err != nil {
		return err
	}

	placed := make(map[domain.GoalID]bool, len(ids))
	out := make([]*domain.Goal, 0, len(goals))
	for _, id := range ids {
		if placed[id] {
			return &domain.ValidationError{Field: "goalIds", Message: fmt.Sprintf("goal %s listed twice", id)}
		}
		_, g := find(goals, id)
		if g == nil {
			return domain.ErrGoalNotFound
		}
		placed[id] = true
		out = append(out, g)
	}
	for _, g := range goals {
		if !placed[g.ID] {
			out = append(out, g)
		}
	}

	return s.save(ctx, out)
}

// CommitEffort reads the record, applies the entry, checks the estimate and
// only then writes. Any failure leaves the stored record untouched.
func (s *Store) CommitEffort(ctx context.Context, id domain.GoalID, date string, effort float64) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	_, g := find(goals, id)
	if g == nil {
		return nil, domain.ErrGoalNotFound
	}
	if !g.Status.AcceptsEffort() {
		return nil, &domain.ValidationError{Field: "status", Message: "goal has not been started"}
	}

	updated, err := ledger.Upsert(g.ProgressCalendar, date, effort)
	if err != nil {
		return nil, err
	}
	totals := ledger.Aggregate(updated, g.EstimatedEffort)
	if totals.Invested > g.EstimatedEffort {
		return nil, &domain.CapacityExceededError{
			GoalID:    id,
			Invested:  totals.Invested,
			Estimated: g.EstimatedEffort,
		}
	}

	g.ProgressCalendar = updated
	g.RefreshTotals()

	if err := s.save(ctx, goals); err != nil {
		return nil, err
	}
	return g, nil
}

// Clear removes the goals record, used once device goals were imported
// into an account.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, GoalsKey); err != nil {
		return fmt.Errorf("clearing device goals: %w", err)
	}
	return nil
}
