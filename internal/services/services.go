// Package services holds the business operations behind the HTTP API.
// Every operation that touches user data takes the caller's id explicitly;
// nothing here reads identity from the request.
package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evofit/evofit-backend/internal/auth"
	"github.com/evofit/evofit-backend/internal/metrics"
	"github.com/evofit/evofit-backend/internal/store"
)

// Params carries the dependencies shared by the services.
type Params struct {
	Store     store.Store
	Hasher    *auth.PasswordHasher
	Tokens    *auth.TokenService
	Hub       *FeedHub
	Nutrition *NutritionService
	Uploader  ImageUploader // nil disables uploads
	Location  *time.Location
	Logger    logrus.FieldLogger
	Metrics   *metrics.Metrics
}

type Services struct {
	Accounts  *AccountService
	Meals     *MealService
	Workouts  *WorkoutService
	Posts     *PostService
	Goals     *GoalService
	Nutrition *NutritionService
	Images    *ImageService
	Summary   *SummaryService
	Feed      *FeedHub
}

func New(p Params) *Services {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	meals := NewMealService(p.Store, loc)
	workouts := NewWorkoutService(p.Store, loc)
	goals := NewGoalService(p.Store)

	return &Services{
		Accounts:  NewAccountService(p.Store, p.Hasher, p.Tokens, p.Logger),
		Meals:     meals,
		Workouts:  workouts,
		Posts:     NewPostService(p.Store, p.Store, p.Hub, p.Logger, p.Metrics),
		Goals:     goals,
		Nutrition: p.Nutrition,
		Images:    NewImageService(p.Uploader),
		Summary:   NewSummaryService(meals, workouts, goals, loc),
		Feed:      p.Hub,
	}
}
