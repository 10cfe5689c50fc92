package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store"
)

type GoalService struct {
	goals store.GoalStore
	now   func() time.Time
}

func NewGoalService(goals store.GoalStore) *GoalService {
	return &GoalService{goals: goals, now: time.Now}
}

// Get returns the owner's goal, creating the defaults on first access.
func (s *GoalService) Get(ctx context.Context, owner string) (*models.Goal, error) {
	goal, err := s.goals.GetGoal(ctx, owner)
	if err == nil {
		return goal, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load goal: %w", err)
	}

	goal = models.NewDefaultGoal(owner, s.now().UTC())
	err = s.goals.CreateGoal(ctx, goal)
	if errors.Is(err, store.ErrDuplicate) {
		// A concurrent first read created it; the unique owner key means
		// there is exactly one to return.
		return s.goals.GetGoal(ctx, owner)
	}
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

// Update merges the supplied fields into the goal, creating it with the
// defaults for everything else if it does not exist yet.
func (s *GoalService) Update(ctx context.Context, owner string, update models.GoalUpdate) (*models.Goal, error) {
	if err := validatePayload(&update); err != nil {
		return nil, err
	}
	goal, err := s.goals.UpsertGoal(ctx, owner, update, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("upsert goal: %w", err)
	}
	return goal, nil
}
