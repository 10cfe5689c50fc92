package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evofit/evofit-backend/internal/models"
)

// Collection names and field names follow the documents the original
// Node service wrote, so an existing database can be served as is.
const (
	usersCollection    = "users"
	mealsCollection    = "meals"
	workoutsCollection = "workouts"
	postsCollection    = "posts"
	goalsCollection    = "goals"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	FullName  string             `bson:"fullName"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDoc) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		CreatedAt:    d.CreatedAt,
		PasswordHash: d.Password,
	}
}

type mealDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId"`
	Name        string             `bson:"name"`
	MealType    string             `bson:"mealType"`
	Calories    int                `bson:"calories"`
	Protein     float64            `bson:"protein"`
	Carbs       float64            `bson:"carbs"`
	Fats        float64            `bson:"fats"`
	ServingSize *string            `bson:"servingSize,omitempty"`
	IsCustom    bool               `bson:"isCustom"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d mealDoc) model() models.Meal {
	return models.Meal{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Name:        d.Name,
		MealType:    models.MealType(d.MealType),
		Calories:    d.Calories,
		Protein:     d.Protein,
		Carbs:       d.Carbs,
		Fats:        d.Fats,
		ServingSize: d.ServingSize,
		IsCustom:    d.IsCustom,
		CreatedAt:   d.CreatedAt,
	}
}

type workoutDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"userId"`
	ExerciseName string             `bson:"exerciseName"`
	Sets         int                `bson:"sets"`
	Reps         int                `bson:"reps"`
	Weight       *float64           `bson:"weight,omitempty"`
	Duration     *int               `bson:"duration,omitempty"`
	Notes        *string            `bson:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d workoutDoc) model() models.Workout {
	return models.Workout{
		ID:           d.ID.Hex(),
		UserID:       d.UserID.Hex(),
		ExerciseName: d.ExerciseName,
		Sets:         d.Sets,
		Reps:         d.Reps,
		Weight:       d.Weight,
		Duration:     d.Duration,
		Notes:        d.Notes,
		CreatedAt:    d.CreatedAt,
	}
}

type postDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Content   string             `bson:"content"`
	ImageURL  *string            `bson:"imageUrl,omitempty"`
	Likes     int                `bson:"likes"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d postDoc) model() models.Post {
	return models.Post{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Content:   d.Content,
		ImageURL:  d.ImageURL,
		Likes:     d.Likes,
		CreatedAt: d.CreatedAt,
	}
}

type goalDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"userId"`
	TargetWeight   *float64           `bson:"targetWeight,omitempty"`
	TargetCalories int                `bson:"targetCalories"`
	TargetProtein  int                `bson:"targetProtein"`
	TargetCarbs    int                `bson:"targetCarbs"`
	TargetFats     int                `bson:"targetFats"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d goalDoc) model() *models.Goal {
	return &models.Goal{
		ID:             d.ID.Hex(),
		UserID:         d.UserID.Hex(),
		TargetWeight:   d.TargetWeight,
		TargetCalories: d.TargetCalories,
		TargetProtein:  d.TargetProtein,
		TargetCarbs:    d.TargetCarbs,
		TargetFats:     d.TargetFats,
		UpdatedAt:      d.UpdatedAt,
	}
}
