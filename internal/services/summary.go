package services

import (
	"context"
	"time"

	"github.com/evofit/evofit-backend/internal/analytics"
	"github.com/evofit/evofit-backend/internal/models"
)

const (
	DefaultSummaryDays = 7
	MaxSummaryDays     = 90
)

// SummaryReport is the server-side rendition of the analytics page.
type SummaryReport struct {
	Summary  analytics.Summary      `json:"summary"`
	Days     []analytics.DayBucket  `json:"days"`
	Today    analytics.DayBucket    `json:"today"`
	Goal     *models.Goal           `json:"goal"`
	Progress analytics.GoalProgress `json:"progress"`
}

type SummaryService struct {
	meals    *MealService
	workouts *WorkoutService
	goals    *GoalService
	loc      *time.Location
	now      func() time.Time
}

func NewSummaryService(meals *MealService, workouts *WorkoutService, goals *GoalService, loc *time.Location) *SummaryService {
	return &SummaryService{meals: meals, workouts: workouts, goals: goals, loc: loc, now: time.Now}
}

// ClampDays bounds a requested range to 1..MaxSummaryDays.
func ClampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxSummaryDays {
		return MaxSummaryDays
	}
	return days
}

// Summary buckets the owner's last days of meals and workouts and compares
// today against the goal.
func (s *SummaryService) Summary(ctx context.Context, owner string, days int) (*SummaryReport, error) {
	days = ClampDays(days)
	now := s.now().In(s.loc)
	window := SinceDays(now, s.loc, days)

	meals, err := s.meals.ListRange(ctx, owner, window)
	if err != nil {
		return nil, err
	}
	workouts, err := s.workouts.ListRange(ctx, owner, window)
	if err != nil {
		return nil, err
	}
	goal, err := s.goals.Get(ctx, owner)
	if err != nil {
		return nil, err
	}

	buckets := analytics.Bucket(meals, workouts, days, now)
	today := buckets[len(buckets)-1]
	return &SummaryReport{
		Summary:  analytics.Summarize(buckets),
		Days:     buckets,
		Today:    today,
		Goal:     goal,
		Progress: analytics.ProgressFor(today, *goal),
	}, nil
}
