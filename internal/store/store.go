// Package store defines the persistence boundary of the API. Every record
// except users is owned by exactly one user, and every owner-scoped method
// filters on that owner before touching a record.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/evofit/evofit-backend/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by key matches no record.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("store: duplicate key")
)

// TimeRange is a half-open creation time window [From, To).
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

type UserStore interface {
	// CreateUser assigns u.ID. It returns ErrDuplicate when the username or
	// email is already taken.
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// Username and email matching ignores case.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	// GetAuthors returns snapshots for the ids that still exist.
	GetAuthors(ctx context.Context, ids []string) (map[string]models.Author, error)
	DeleteUser(ctx context.Context, id string) error
}

type MealStore interface {
	CreateMeal(ctx context.Context, m *models.Meal) error
	// ListMeals returns the owner's meals newest first, optionally limited to
	// a creation window.
	ListMeals(ctx context.Context, owner string, window *TimeRange) ([]models.Meal, error)
	// DeleteMeal removes the meal only when it belongs to owner and reports
	// whether anything was removed.
	DeleteMeal(ctx context.Context, owner, id string) (bool, error)
	DeleteMealsByOwner(ctx context.Context, owner string) error
}

type WorkoutStore interface {
	CreateWorkout(ctx context.Context, w *models.Workout) error
	ListWorkouts(ctx context.Context, owner string, window *TimeRange) ([]models.Workout, error)
	DeleteWorkout(ctx context.Context, owner, id string) (bool, error)
	DeleteWorkoutsByOwner(ctx context.Context, owner string) error
}

type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) error
	// ListRecentPosts returns the newest posts across all users.
	ListRecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	// IncrementLikes atomically adds one like and returns the updated post.
	IncrementLikes(ctx context.Context, id string) (*models.Post, error)
	DeletePostsByOwner(ctx context.Context, owner string) error
}

type GoalStore interface {
	GetGoal(ctx context.Context, owner string) (*models.Goal, error)
	// CreateGoal returns ErrDuplicate when the owner already has a goal.
	CreateGoal(ctx context.Context, g *models.Goal) error
	// UpsertGoal merges update into the owner's goal, creating a default goal
	// first when none exists.
	UpsertGoal(ctx context.Context, owner string, update models.GoalUpdate, now time.Time) (*models.Goal, error)
	DeleteGoal(ctx context.Context, owner string) error
}

// Store is the full persistence surface one backend provides.
type Store interface {
	UserStore
	MealStore
	WorkoutStore
	PostStore
	GoalStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
