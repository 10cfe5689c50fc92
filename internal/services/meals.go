package services

import (
	"context"
	"fmt"
	"time"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store"
)

// MealService scopes every operation to the calling user.
type MealService struct {
	meals store.MealStore
	loc   *time.Location
	now   func() time.Time
}

func NewMealService(meals store.MealStore, loc *time.Location) *MealService {
	return &MealService{meals: meals, loc: loc, now: time.Now}
}

func (s *MealService) Create(ctx context.Context, owner string, req models.CreateMealRequest) (*models.Meal, error) {
	if err := validatePayload(&req); err != nil {
		return nil, err
	}
	meal := req.ToMeal(owner, s.now().UTC())
	if err := s.meals.CreateMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}
	return meal, nil
}

// List returns all of the owner's meals, newest first.
func (s *MealService) List(ctx context.Context, owner string) ([]models.Meal, error) {
	return s.meals.ListMeals(ctx, owner, nil)
}

// ListToday returns the meals logged on the current local calendar day.
func (s *MealService) ListToday(ctx context.Context, owner string) ([]models.Meal, error) {
	today := DayRange(s.now(), s.loc)
	return s.meals.ListMeals(ctx, owner, &today)
}

// ListRange returns the meals created inside window, newest first.
func (s *MealService) ListRange(ctx context.Context, owner string, window store.TimeRange) ([]models.Meal, error) {
	return s.meals.ListMeals(ctx, owner, &window)
}

// Delete removes the meal if owner owns it. Anything else is a no-op.
func (s *MealService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.meals.DeleteMeal(ctx, owner, id); err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}
