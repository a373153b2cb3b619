// Package goals manages goals on the current backend: creation, edits,
// ordering, status changes and the one-shot import of device goals into
// an account.
package goals

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/PabloGalante/goal-forge/internal/domain"
	"github.com/PabloGalante/goal-forge/internal/ledger"
	"github.com/PabloGalante/goal-forge/internal/observability"
)

type BackendResolver interface {
	Backend(ctx context.Context) (domain.GoalBackend, error)
}

// LocalGoals is the device store as seen by the import.
type LocalGoals interface {
	ListGoals(ctx context.Context) ([]*domain.Goal, error)
	Clear(ctx context.Context) error
}

type Service struct {
	backends BackendResolver
	local    LocalGoals
	importer domain.GoalImporter
	now      func() time.Time
}

type Option func(*Service)

// WithNow replaces the clock used to stamp start dates.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(backends BackendResolver, local LocalGoals, importer domain.GoalImporter, opts ...Option) *Service {
	s := &Service{
		backends: backends,
		local:    local,
		importer: importer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*domain.Goal, error) {
	b, err := s.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.ListGoals(ctx)
}

func (s *Service) Get(ctx context.Context, id domain.GoalID) (*domain.Goal, error) {
	b, err := s.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.GetGoal(ctx, id)
}

type AddInput struct {
	Name            string
	ProgressType    string
	EstimatedEffort float64
}

func (s *Service) Add(ctx context.Context, in AddInput) (*domain.Goal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "goalName", Message: "goal name is required"}
	}
	pt, ok := domain.ParseProgressType(in.ProgressType)
	if !ok {
		return nil, &domain.ValidationError{Field: "progressType", Message: fmt.Sprintf("unknown progress type %q", in.ProgressType)}
	}
	if err := checkEstimate(in.EstimatedEffort); err != nil {
		return nil, err
	}

	b, err := s.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With("backend", b.Name(), "goal_name", name)
	g, err := b.CreateGoal(ctx, domain.NewGoal{Name: name, ProgressType: pt, EstimatedEffort: in.EstimatedEffort})
	if err != nil {
		log.Error("creating goal failed", "error", err)
		return nil, err
	}
	log.Info("goal created", "goal_id", g.ID)
	return g, nil
}

// EditInput carries the fields to change. Empty strings and nil pointers
// are left untouched.
type EditInput struct {
	Name            string
	ProgressType    string
	EstimatedEffort *float64
}

func (s *Service) Edit(ctx context.Context, id domain.GoalID, in EditInput) (*domain.Goal, error) {
	var changes domain.GoalChanges
	if name := strings.TrimSpace(in.Name); name != "" {
		changes.Name = &name
	}
	if in.ProgressType != "" {
		pt, ok := domain.ParseProgressType(in.ProgressType)
		if !ok {
			return nil, &domain.ValidationError{Field: "progressType", Message: fmt.Sprintf("unknown progress type %q", in.ProgressType)}
		}
		changes.ProgressType = &pt
	}
	if in.EstimatedEffort != nil {
		if err := checkEstimate(*in.EstimatedEffort); err != nil {
			return nil, err
		}
		changes.EstimatedEffort = in.EstimatedEffort
	}
	return s.update(ctx, id, changes)
}

func (s *Service) Delete(ctx context.Context, id domain.GoalID) error {
	b, err := s.backends.Backend(ctx)
	if err != nil {
		return err
	}
	if err := b.DeleteGoal(ctx, id); err != nil {
		return err
	}
	observability.LoggerFromContext(ctx).Info("goal deleted", "goal_id", id, "backend", b.Name())
	return nil
}

func (s *Service) Reorder(ctx context.Context, ids []domain.GoalID) error {
	if len(ids) == 0 {
		return &domain.ValidationError{Field: "goalIds", Message: "no goals to reorder"}
	}
	b, err := s.backends.Backend(ctx)
	if err != nil {
		return err
	}
	return b.ReorderGoals(ctx, ids)
}

// Start moves a goal out of not_started and stamps today as its start date.
func (s *Service) Start(ctx context.Context, id domain.GoalID) (*domain.Goal, error) {
	today := s.now().Format(ledger.DateLayout)
	return s.transition(ctx, id, domain.StatusActive, &today)
}

func (s *Service) Pause(ctx context.Context, id domain.GoalID) (*domain.Goal, error) {
	return s.transition(ctx, id, domain.StatusPaused, nil)
}

func (s *Service) Resume(ctx context.Context, id domain.GoalID) (*domain.Goal, error) {
	return s.transition(ctx, id, domain.StatusActive, nil)
}

func (s *Service) Complete(ctx context.Context, id domain.GoalID) (*domain.Goal, error) {
	return s.transition(ctx, id, domain.StatusCompleted, nil)
}

func (s *Service) transition(ctx context.Context, id domain.GoalID, next domain.GoalStatus, startDate *string) (*domain.Goal, error) {
	b, err := s.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}
	g, err := b.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	from := g.Status.Normalized()
	if !from.CanTransition(next) {
		return nil, &domain.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot move goal from %s to %s", from, next),
		}
	}

	changes := domain.GoalChanges{Status: &next, StartDate: startDate}
	updated, err := b.UpdateGoal(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	observability.LoggerFromContext(ctx).Info("goal status changed",
		"goal_id", id, "from", from, "to", next, "backend", b.Name())
	return updated, nil
}

func (s *Service) update(ctx context.Context, id domain.GoalID, changes domain.GoalChanges) (*domain.Goal, error) {
	b, err := s.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}
	return b.UpdateGoal(ctx, id, changes)
}

// ImportLocal pushes every device goal into the signed-in account and then
// clears the device record. It returns how many goals were sent; zero
// means there was nothing to import and nothing was called.
func (s *Service) ImportLocal(ctx context.Context, mode domain.ImportMode) (int, error) {
	if mode != domain.ImportAppend && mode != domain.ImportReset {
		return 0, &domain.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown import mode %q", mode)}
	}

	log := observability.LoggerFromContext(ctx).With("mode", mode)

	local, err := s.local.ListGoals(ctx)
	if err != nil {
		return 0, err
	}
	if len(local) == 0 {
		log.Info("no device goals to import")
		return 0, nil
	}

	payload := make([]domain.ImportGoal, 0, len(local))
	for _, g := range local {
		payload = append(payload, domain.ToImport(g))
	}

	if err := s.importer.ImportGoals(ctx, payload, mode); err != nil {
		log.Error("import failed, device goals kept", "error", err)
		return 0, err
	}
	if err := s.local.Clear(ctx); err != nil {
		return len(payload), fmt.Errorf("goals imported but device copy not cleared: %w", err)
	}

	log.Info("device goals imported", "count", len(payload))
	return len(payload), nil
}

func checkEstimate(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &domain.ValidationError{Field: "estimatedEffort", Message: "estimated effort must be greater than 0"}
	}
	return nil
}
