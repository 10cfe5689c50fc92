package models

import (
	"time"
)

// MealType is one of the fixed meal slots of a day.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// Valid reports whether t is one of the known meal types.
func (t MealType) Valid() bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

type Meal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	MealType    MealType  `json:"mealType"`
	Calories    int       `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fats        float64   `json:"fats"`
	ServingSize *string   `json:"servingSize"`
	IsCustom    bool      `json:"isCustom"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateMealRequest is the client payload for POST /api/meals.
// Numeric fields are pointers so a missing value can be told apart from zero.
// Upper bounds follow the widest column any store uses.
type CreateMealRequest struct {
	Name        string   `json:"name" validate:"required"`
	MealType    string   `json:"mealType" validate:"required,oneof=breakfast lunch dinner snack"`
	Calories    *int     `json:"calories" validate:"required,min=0,max=2147483647"`
	Protein     *float64 `json:"protein" validate:"required,min=0,max=9999.99"`
	Carbs       *float64 `json:"carbs" validate:"required,min=0,max=9999.99"`
	Fats        *float64 `json:"fats" validate:"required,min=0,max=9999.99"`
	ServingSize *string  `json:"servingSize"`
	IsCustom    bool     `json:"isCustom"`
}

// ToMeal builds the record for owner. The request must have passed Validate.
func (r *CreateMealRequest) ToMeal(owner string, now time.Time) *Meal {
	return &Meal{
		UserID:      owner,
		Name:        r.Name,
		MealType:    MealType(r.MealType),
		Calories:    *r.Calories,
		Protein:     *r.Protein,
		Carbs:       *r.Carbs,
		Fats:        *r.Fats,
		ServingSize: r.ServingSize,
		IsCustom:    r.IsCustom,
		CreatedAt:   now,
	}
}
