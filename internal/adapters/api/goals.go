package api

import (
	"context"
	"net/http"

	"github.com/PabloGalante/goal-forge/internal/domain"
)

func (c *Client) ListGoals(ctx context.Context) ([]*domain.Goal, error) {
	var goals []*domain.Goal
	err := c.do(ctx, request{
		op:       "list_goals",
		method:   http.MethodGet,
		path:     "/api/goals",
		out:      &goals,
		fallback: "Failed to fetch goals",
	})
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []*domain.Goal{}
	}
	return goals, nil
}

// GetGoal has no endpoint of its own; the backend only lists.
func (c *Client) GetGoal(ctx context.Context, id domain.GoalID) (*domain.Goal, error) {
	goals, err := c.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range goals {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, domain.ErrGoalNotFound
}

func (c *Client) CreateGoal(ctx context.Context, in domain.NewGoal) (*domain.Goal, error) {
	var g domain.Goal
	err := c.do(ctx, request{
		op:       "create_goal",
		method:   http.MethodPost,
		path:     "/api/goals",
		in:       in,
		out:      &g,
		fallback: "Error adding goal",
	})
	if err != nil {
		return nil, err
	}
	if g.ID == "" {
		g.Name, g.ProgressType, g.EstimatedEffort = in.Name, in.ProgressType, in.EstimatedEffort
	}
	return &g, nil
}

func (c *Client) UpdateGoal(ctx context.Context, id domain.GoalID, changes domain.GoalChanges) (*domain.Goal, error) {
	var g domain.Goal
	err := c.do(ctx, request{
		op:       "update_goal",
		method:   http.MethodPut,
		path:     goalPath(id, ""),
		in:       changes,
		out:      &g,
		fallback: "Failed to update goal",
	})
	if err != nil {
		return nil, err
	}
	if g.ID == "" {
		return c.GetGoal(ctx, id)
	}
	return &g, nil
}

func (c *Client) DeleteGoal(ctx context.Context, id domain.GoalID) error {
	return c.do(ctx, request{
		op:       "delete_goal",
		method:   http.MethodDelete,
		path:     goalPath(id, ""),
		fallback: "Failed to delete goal",
	})
}

func (c *Client) ReorderGoals(ctx context.Context, ids []domain.GoalID) error {
	return c.do(ctx, request{
		op:       "reorder_goals",
		method:   http.MethodPut,
		path:     "/api/goals/reorder",
		in:       map[string][]domain.GoalID{"goalIds": ids},
		fallback: "Failed to save goal order. Please try again.",
	})
}

type progressRequest struct {
	Date   string  `json:"date"`
	Effort float64 `json:"effort"`
}

// CommitEffort posts the entry and re-reads the goal. Capacity is the
// backend's call; its message comes back as a RemoteRejection. When the
// post succeeds but the re-read fails, the goal is nil and err is nil.
func (c *Client) CommitEffort(ctx context.Context, id domain.GoalID, date string, effort float64) (*domain.Goal, error) {
	err := c.do(ctx, request{
		op:       "commit_effort",
		method:   http.MethodPost,
		path:     goalPath(id, "/progress"),
		in:       progressRequest{Date: date, Effort: effort},
		fallback: "Failed to save effort",
	})
	if err != nil {
		return nil, err
	}

	g, err := c.GetGoal(ctx, id)
	if err != nil {
		c.log.Warn("effort saved but goal refresh failed", "goal_id", id, "error", err)
		return nil, nil
	}
	return g, nil
}

type importRequest struct {
	Goals []domain.ImportGoal `json:"goals"`
	Mode  domain.ImportMode   `json:"mode"`
}

func (c *Client) ImportGoals(ctx context.Context, goals []domain.ImportGoal, mode domain.ImportMode) error {
	fallback := "Failed to import local goals"
	if mode == domain.ImportReset {
		fallback = "Failed to reset and import local goals"
	}
	return c.do(ctx, request{
		op:       "import_goals",
		method:   http.MethodPost,
		path:     "/api/goals/import",
		in:       importRequest{Goals: goals, Mode: mode},
		fallback: fallback,
	})
}
