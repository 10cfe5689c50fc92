package models

import (
	"time"
)

// Default nutrition targets for a freshly created goal.
const (
	DefaultTargetCalories = 2000
	DefaultTargetProtein  = 150
	DefaultTargetCarbs    = 200
	DefaultTargetFats     = 65
)

// Goal holds a user's nutrition targets. There is at most one per user.
type Goal struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	TargetWeight   *float64  `json:"targetWeight"`
	TargetCalories int       `json:"targetCalories"`
	TargetProtein  int       `json:"targetProtein"`
	TargetCarbs    int       `json:"targetCarbs"`
	TargetFats     int       `json:"targetFats"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewDefaultGoal returns the goal a user gets before setting any targets.
func NewDefaultGoal(owner string, now time.Time) *Goal {
	return &Goal{
		UserID:         owner,
		TargetCalories: DefaultTargetCalories,
		TargetProtein:  DefaultTargetProtein,
		TargetCarbs:    DefaultTargetCarbs,
		TargetFats:     DefaultTargetFats,
		UpdatedAt:      now,
	}
}

// GoalUpdate is a partial update: nil fields keep their current value.
type GoalUpdate struct {
	TargetWeight   *float64 `json:"targetWeight" validate:"omitempty,min=0,max=999.99"`
	TargetCalories *int     `json:"targetCalories" validate:"omitempty,min=0,max=2147483647"`
	TargetProtein  *int     `json:"targetProtein" validate:"omitempty,min=0,max=2147483647"`
	TargetCarbs    *int     `json:"targetCarbs" validate:"omitempty,min=0,max=2147483647"`
	TargetFats     *int     `json:"targetFats" validate:"omitempty,min=0,max=2147483647"`
}

// Apply merges u into g and stamps the update time.
func (u GoalUpdate) Apply(g *Goal, now time.Time) {
	if u.TargetWeight != nil {
		w := *u.TargetWeight
		g.TargetWeight = &w
	}
	if u.TargetCalories != nil {
		g.TargetCalories = *u.TargetCalories
	}
	if u.TargetProtein != nil {
		g.TargetProtein = *u.TargetProtein
	}
	if u.TargetCarbs != nil {
		g.TargetCarbs = *u.TargetCarbs
	}
	if u.TargetFats != nil {
		g.TargetFats = *u.TargetFats
	}
	g.UpdatedAt = now
}
