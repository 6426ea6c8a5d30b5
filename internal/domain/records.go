package domain

import "time"

// WorkoutLog is a single completed workout.
type WorkoutLog struct {
	ClientID  string    `json:"client_id"`
	Timestamp time.Time `json:"timestamp"`
	IsPR      bool      `json:"is_pr"`
}

// MealTrackingEntry is the daily nutrition aggregate for a client.
type MealTrackingEntry struct {
	ClientID    string    `json:"client_id"`
	Date        time.Time `json:"date"`
	Calories    float64   `json:"calories"`
	CalorieGoal float64   `json:"calorie_goal"`
	Protein     float64   `json:"protein"`
	ProteinGoal float64   `json:"protein_goal"`
	Carbs       float64   `json:"carbs"`
	CarbsGoal   float64   `json:"carbs_goal"`
	Fat         float64   `json:"fat"`
	FatGoal     float64   `json:"fat_goal"`
}

// ProteinGoalHit reports whether the day met a positive protein goal.
func (e MealTrackingEntry) ProteinGoalHit() bool {
	return e.ProteinGoal > 0 && e.Protein >= e.ProteinGoal
}

// Meal types recognised in meal logs.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// MealLog is one logged meal.
type MealLog struct {
	ClientID string    `json:"client_id"`
	LoggedAt time.Time `json:"logged_at"`
	MealType string    `json:"meal_type"`
}

// HydrationLog records water intake for a day.
type HydrationLog struct {
	ClientID string    `json:"client_id"`
	Date     time.Time `json:"date"`
	AmountML float64   `json:"amount_ml"`
}

// WeightLog is a single weigh-in.
type WeightLog struct {
	ClientID string    `json:"client_id"`
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
}

// CheckIn is a coach check-in submission.
type CheckIn struct {
	ClientID  string    `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
}
