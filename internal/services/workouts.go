package services

import (
	"context"
	"fmt"
	"time"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store"
)

type WorkoutService struct {
	workouts store.WorkoutStore
	loc      *time.Location
	now      func() time.Time
}

func NewWorkoutService(workouts store.WorkoutStore, loc *time.Location) *WorkoutService {
	return &WorkoutService{workouts: workouts, loc: loc, now: time.Now}
}

func (s *WorkoutService) Create(ctx context.Context, owner string, req models.CreateWorkoutRequest) (*models.Workout, error) {
	if err := validatePayload(&req); err != nil {
		return nil, err
	}
	workout := req.ToWorkout(owner, s.now().UTC())
	if err := s.workouts.CreateWorkout(ctx, workout); err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	return workout, nil
}

func (s *WorkoutService) List(ctx context.Context, owner string) ([]models.Workout, error) {
	return s.workouts.ListWorkouts(ctx, owner, nil)
}

func (s *WorkoutService) ListToday(ctx context.Context, owner string) ([]models.Workout, error) {
	today := DayRange(s.now(), s.loc)
	return s.workouts.ListWorkouts(ctx, owner, &today)
}

func (s *WorkoutService) ListRange(ctx context.Context, owner string, window store.TimeRange) ([]models.Workout, error) {
	return s.workouts.ListWorkouts(ctx, owner, &window)
}

func (s *WorkoutService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.workouts.DeleteWorkout(ctx, owner, id); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}
