package models

import (
	"time"
)

type Workout struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	ExerciseName string    `json:"exerciseName"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
	Weight       *float64  `json:"weight"`
	Duration     *int      `json:"duration"` // minutes
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateWorkoutRequest struct {
	ExerciseName string   `json:"exerciseName" validate:"required"`
	Sets         *int     `json:"sets" validate:"required,gt=0,max=2147483647"`
	Reps         *int     `json:"reps" validate:"required,gt=0,max=2147483647"`
	Weight       *float64 `json:"weight" validate:"omitempty,min=0,max=9999.99"`
	Duration     *int     `json:"duration" validate:"omitempty,min=0,max=2147483647"`
	Notes        *string  `json:"notes"`
}

func (r *CreateWorkoutRequest) ToWorkout(owner string, now time.Time) *Workout {
	return &Workout{
		UserID:       owner,
		ExerciseName: r.ExerciseName,
		Sets:         *r.Sets,
		Reps:         *r.Reps,
		Weight:       r.Weight,
		Duration:     r.Duration,
		Notes:        r.Notes,
		CreatedAt:    now,
	}
}
