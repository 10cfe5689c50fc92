// Package analytics derives display aggregates from meal and workout
// lists. Nothing here touches storage; results are never persisted.
package analytics

import (
	"math"
	"time"

	"github.com/evofit/evofit-backend/internal/models"
)

const (
	dateLayout  = "2006-01-02"
	labelLayout = "Jan 2"
)

// DayBucket sums one calendar day.
type DayBucket struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Workouts int     `json:"workouts"`
}

// Bucket returns days buckets, oldest first, the last one being the
// calendar day of now in now's location. Records are assigned by the date
// their CreatedAt falls on in that same location; records outside the
// range are ignored.
func Bucket(meals []models.Meal, workouts []models.Workout, days int, now time.Time) []DayBucket {
	if days <= 0 {
		return []DayBucket{}
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	buckets := make([]DayBucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-(days-1))
		key := day.Format(dateLayout)
		buckets[i] = DayBucket{Date: key, Label: day.Format(labelLayout)}
		index[key] = i
	}

	for _, m := range meals {
		i, ok := index[m.CreatedAt.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		buckets[i].Calories += m.Calories
		buckets[i].Protein += m.Protein
		buckets[i].Carbs += m.Carbs
		buckets[i].Fats += m.Fats
	}
	for _, w := range workouts {
		if i, ok := index[w.CreatedAt.In(loc).Format(dateLayout)]; ok {
			buckets[i].Workouts++
		}
	}
	return buckets
}

// Summary is the headline figures for a bucketed range.
type Summary struct {
	Days          int `json:"days"`
	AvgCalories   int `json:"avgCalories"`
	AvgProtein    int `json:"avgProtein"`
	TotalWorkouts int `json:"totalWorkouts"`
}

// Summarize averages over every bucket, empty days included.
func Summarize(buckets []DayBucket) Summary {
	s := Summary{Days: len(buckets)}
	if len(buckets) == 0 {
		return s
	}

	var calories, protein float64
	for _, b := range buckets {
		calories += float64(b.Calories)
		protein += b.Protein
		s.TotalWorkouts += b.Workouts
	}
	n := float64(len(buckets))
	s.AvgCalories = int(math.Round(calories / n))
	s.AvgProtein = int(math.Round(protein / n))
	return s
}

// Progress returns actual as a percentage of target. It is not clamped,
// so overshooting a goal yields more than 100. A non-positive target
// yields 0.
func Progress(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return actual / target * 100
}

// GoalProgress is the percentage of each daily target reached.
type GoalProgress struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// ProgressFor compares one day's totals with the goal's targets.
func ProgressFor(day DayBucket, goal models.Goal) GoalProgress {
	return GoalProgress{
		Calories: Progress(float64(day.Calories), float64(goal.TargetCalories)),
		Protein:  Progress(day.Protein, float64(goal.TargetProtein)),
		Carbs:    Progress(day.Carbs, float64(goal.TargetCarbs)),
		Fats:     Progress(day.Fats, float64(goal.TargetFats)),
	}
}
