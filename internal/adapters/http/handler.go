package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/PabloGalante/goal-forge/internal/app/effort"
	"github.com/PabloGalante/goal-forge/internal/app/goals"
	"github.com/PabloGalante/goal-forge/internal/domain"
	"github.com/PabloGalante/goal-forge/internal/ledger"
	"github.com/PabloGalante/goal-forge/internal/liveness"
	"github.com/PabloGalante/goal-forge/internal/observability"
)

// StatusSource reports backend readiness, normally a *liveness.Monitor.
type StatusSource interface {
	State() liveness.State
	Ready() bool
}

// GoalReader is the read side of the goals service.
type GoalReader interface {
	List(ctx context.Context) ([]*domain.Goal, error)
	Get(ctx context.Context, id domain.GoalID) (*domain.Goal, error)
}

type EffortCommitter interface {
	Commit(ctx context.Context, in effort.CommitInput) (*effort.CommitOutput, error)
}

type Server struct {
	goals  GoalReader
	effort EffortCommitter
	status StatusSource
}

var _ GoalReader = (*goals.Service)(nil)

func NewServer(goalSvc GoalReader, effortSvc EffortCommitter, status StatusSource) http.Handler {
	s := &Server{goals: goalSvc, effort: effortSvc, status: status}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)

	// /goals → list (GET)
	mux.HandleFunc("/goals", s.handleGoals)

	// /goals/{id}          → GET: goal with ledger and totals
	// /goals/{id}/progress → POST: commit effort
	mux.HandleFunc("/goals/", s.handleGoalWithID)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type statusResponse struct {
	Ready bool   `json:"ready"`
	State string `json:"state"`
}

type formattedTotals struct {
	Invested  string `json:"investedEffort"`
	Remaining string `json:"remainingEffort"`
	Estimated string `json:"estimatedEffort"`
}

type goalResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"goalName"`
	ProgressType     string          `json:"progressType"`
	Status           string          `json:"status"`
	StartDate        *string         `json:"startDate,omitempty"`
	EstimatedEffort  float64         `json:"estimatedEffort"`
	InvestedEffort   float64         `json:"investedEffort"`
	RemainingEffort  float64         `json:"remainingEffort"`
	Formatted        formattedTotals `json:"formatted"`
	ProgressCalendar ledger.Ledger   `json:"progressCalendar,omitempty"`
}

type commitRequest struct {
	Date   string  `json:"date"`
	Effort float64 `json:"effort"`
}

type commitResponse struct {
	Backend string        `json:"backend"`
	Goal    *goalResponse `json:"goal,omitempty"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Ready: s.status.Ready(),
		State: s.status.State().String(),
	})
}

// /goals
func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListGoals(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /goals/{id} or /goals/{id}/progress
func (s *Server) handleGoalWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/goals/")
	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetGoal(w, r, domain.GoalID(id))
	case len(parts) == 2 && parts[1] == "progress":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleCommit(w, r, domain.GoalID(id))
	default:
		http.NotFound(w, r)
	}
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	list, err := s.goals.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]goalResponse, 0, len(list))
	for _, g := range list {
		out = append(out, toGoalResponse(g, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request, id domain.GoalID) {
	g, err := s.goals.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g, true))
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request, id domain.GoalID) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.effort.Commit(r.Context(), effort.CommitInput{
		GoalID: id,
		Date:   req.Date,
		Effort: req.Effort,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := commitResponse{Backend: out.Backend}
	if out.Goal != nil {
		g := toGoalResponse(out.Goal, true)
		resp.Goal = &g
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─────────────────────────────────────────────
// Goal helpers
// ─────────────────────────────────────────────

func toGoalResponse(g *domain.Goal, withLedger bool) goalResponse {
	t := g.Totals()
	resp := goalResponse{
		ID:              string(g.ID),
		Name:            g.Name,
		ProgressType:    string(g.ProgressType),
		Status:          string(g.Status.Normalized()),
		StartDate:       g.StartDate,
		EstimatedEffort: t.Total,
		InvestedEffort:  t.Invested,
		RemainingEffort: t.Remaining,
		Formatted: formattedTotals{
			Invested:  g.FormatEffort(t.Invested),
			Remaining: g.FormatEffort(t.Remaining),
			Estimated: g.FormatEffort(t.Total),
		},
	}
	if withLedger {
		resp.ProgressCalendar = g.ProgressCalendar
		if resp.ProgressCalendar == nil {
			resp.ProgressCalendar = ledger.Ledger{}
		}
	}
	return resp
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		cerr *domain.CapacityExceededError
		rej  *domain.RemoteRejection
		tf   *domain.TransportFailure
	)

	switch {
	case errors.As(err, &verr):
		badRequest(w, verr.Error())
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusConflict, map[string]string{"error": cerr.Error()})
	case errors.As(err, &rej):
		status := rej.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]string{"error": rej.Message})
	case errors.As(err, &tf):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": tf.Error()})
	case errors.Is(err, domain.ErrGoalNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}
