// Package effort commits effort entries to whichever backend holds the
// user's goals.
package effort

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/PabloGalante/goal-forge/internal/domain"
	"github.com/PabloGalante/goal-forge/internal/ledger"
	"github.com/PabloGalante/goal-forge/internal/observability"
)

// BackendResolver picks the backend for the current session.
type BackendResolver interface {
	Backend(ctx context.Context) (domain.GoalBackend, error)
}

type Service struct {
	backends BackendResolver
}

func NewService(backends BackendResolver) *Service {
	return &Service{backends: backends}
}

type CommitInput struct {
	GoalID domain.GoalID
	Date   string
	Effort float64
}

type CommitOutput struct {
	// Goal is nil when the remote accepted the entry but the goal could
	// not be re-read afterwards.
	Goal    *domain.Goal
	Totals  ledger.Totals
	Backend string
}

func (in CommitInput) validate() error {
	if in.GoalID == "" {
		return &domain.ValidationError{Field: "goalId", Message: "goal id is required"}
	}
	if _, err := time.Parse(ledger.DateLayout, in.Date); err != nil {
		return &domain.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	if math.IsNaN(in.Effort) || math.IsInf(in.Effort, 0) || in.Effort <= 0 {
		return &domain.ValidationError{Field: "effort", Message: "Effort must be greater than 0"}
	}
	return nil
}

// Commit records in.Effort for in.Date, replacing any earlier entry for
// that date. Nothing is sent or written when validation fails.
func (s *Service) Commit(ctx context.Context, in CommitInput) (*CommitOutput, error) {
	log := observability.LoggerFromContext(ctx).With(
		"goal_id", in.GoalID,
		"date", in.Date,
		"effort", in.Effort,
	)

	if err := in.validate(); err != nil {
		log.Info("effort rejected", "error", err)
		return nil, err
	}

	backend, err := s.backends.Backend(ctx)
	if err != nil {
		log.Error("resolving backend failed", "error", err)
		return nil, err
	}
	log = log.With("backend", backend.Name())

	ctx, span := observability.StartSpan(ctx, "effort.commit",
		attribute.String("goal.id", string(in.GoalID)),
		attribute.String("backend", backend.Name()),
	)
	defer span.End()

	g, err := backend.CommitEffort(ctx, in.GoalID, in.Date, in.Effort)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		log.Warn("effort commit failed", "error", err)
		return nil, err
	}

	out := &CommitOutput{Goal: g, Backend: backend.Name()}
	if g != nil {
		out.Totals = g.Totals()
	}
	log.Info("effort committed", "invested", out.Totals.Invested, "remaining", out.Totals.Remaining)
	return out, nil
}

// LedgerView is a goal with its recomputed totals.
type LedgerView struct {
	Goal   *domain.Goal
	Totals ledger.Totals
}

func (s *Service) Show(ctx context.Context, id domain.GoalID) (*LedgerView, error) {
	backend, err := s.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}
	g, err := backend.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LedgerView{Goal: g, Totals: g.Totals()}, nil
}
