package rules

import "example.com/insights/internal/domain"

// Streak rules.
var (
	WorkoutStreak3 = domain.Rule{
		ID: "workout-streak-3", Name: "Momentum Builder", Type: domain.TypeStreak, Priority: domain.PriorityMedium,
		Title:           "Momentum Builder",
		MessageTemplate: "{days} days of training in a row. The habit is starting to stick!",
		DataKeys:        []string{"days"},
	}
	WorkoutStreak7 = domain.Rule{
		ID: "workout-streak-7", Name: "Week Warrior", Type: domain.TypeStreak, Priority: domain.PriorityHigh,
		Title:           "Week Warrior",
		MessageTemplate: "Week Warrior! You trained every day for {days} days straight.",
		DataKeys:        []string{"days"},
	}
	WorkoutStreak14 = domain.Rule{
		ID: "workout-streak-14", Name: "Fortnight Fighter", Type: domain.TypeStreak, Priority: domain.PriorityHigh,
		Title:           "Fortnight Fighter",
		MessageTemplate: "Two full weeks without missing a session. {days} days and counting!",
		DataKeys:        []string{"days"},
	}
	WorkoutStreak30 = domain.Rule{
		ID: "workout-streak-30", Name: "Monthly Master", Type: domain.TypeStreak, Priority: domain.PriorityHigh,
		Title:           "Monthly Master",
		MessageTemplate: "A {days}-day workout streak. This is who you are now.",
		DataKeys:        []string{"days"},
	}
	WorkoutStreakMilestone = domain.Rule{
		ID: "workout-streak-milestone", Name: "Streak Milestone", Type: domain.TypeStreak, Priority: domain.PriorityMedium,
		Title:           "Streak Milestone",
		MessageTemplate: "{days} consecutive workout days. Keep the chain going!",
		DataKeys:        []string{"days"},
	}
	ComebackNudge = domain.Rule{
		ID: "comeback-nudge", Name: "Comeback", Type: domain.TypeMotivation, Priority: domain.PriorityMedium,
		Title:           "Ready for a comeback?",
		MessageTemplate: "It has been {days} days since your last workout. A short session today gets you back on track.",
		DataKeys:        []string{"days"},
	}
	ProteinStreak = domain.Rule{
		ID: "protein-streak", Name: "Protein Streak", Type: domain.TypeStreak, Priority: domain.PriorityMedium,
		Title:           "Protein on point",
		MessageTemplate: "You hit your protein goal {days} days in a row.",
		DataKeys:        []string{"days"},
	}
	HydrationStreak = domain.Rule{
		ID: "hydration-streak", Name: "Hydration Streak", Type: domain.TypeStreak, Priority: domain.PriorityLow,
		Title:           "Hydration hero",
		MessageTemplate: "{days} days in a row drinking at least {target_ml} ml of water.",
		DataKeys:        []string{"days", "target_ml"},
	}
	CheckInConsistency = domain.Rule{
		ID: "checkin-consistency", Name: "Check-in Consistency", Type: domain.TypeStreak, Priority: domain.PriorityLow,
		Title:           "Consistent check-ins",
		MessageTemplate: "You checked in during {weeks} different weeks recently. Your coach loves the updates!",
		DataKeys:        []string{"weeks"},
	}
	WeightLogConsistency = domain.Rule{
		ID: "weight-log-consistency", Name: "Weigh-in Consistency", Type: domain.TypeStreak, Priority: domain.PriorityLow,
		Title:           "Steady weigh-ins",
		MessageTemplate: "You logged your weight at least 3 times a week for {weeks} weeks.",
		DataKeys:        []string{"weeks"},
	}
)

// Meal rules.
var (
	LowProteinAlert = domain.Rule{
		ID: "low-protein-alert", Name: "Low Protein", Type: domain.TypeNutrition, Priority: domain.PriorityHigh,
		Title:           "Protein running low",
		MessageTemplate: "You're averaging {percentage}% of your protein goal this week. Add a protein source to your next meal.",
		DataKeys:        []string{"percentage"},
	}
	PerfectMacros = domain.Rule{
		ID: "perfect-macros", Name: "Perfect Macros", Type: domain.TypeNutrition, Priority: domain.PriorityMedium,
		Title:           "Macros dialed in",
		MessageTemplate: "Protein, carbs and fat all landed within 10% of target this week.",
	}
	MealTimingConsistency = domain.Rule{
		ID: "meal-timing-consistency", Name: "Meal Timing", Type: domain.TypeNutrition, Priority: domain.PriorityLow,
		Title:           "Great meal rhythm",
		MessageTemplate: "You logged 4 to 6 meals on each of the last {days} tracked days.",
		DataKeys:        []string{"days"},
	}
	SkipBreakfast = domain.Rule{
		ID: "skip-breakfast", Name: "Skipped Breakfast", Type: domain.TypeNutrition, Priority: domain.PriorityMedium,
		Title:           "Breakfast matters",
		MessageTemplate: "No breakfast logged on {days} of the last few days. A quick morning meal helps keep energy steady.",
		DataKeys:        []string{"days"},
	}
	CalorieConsistencyChampion = domain.Rule{
		ID: "calorie-consistency-champion", Name: "Consistency Champion", Type: domain.TypeNutrition, Priority: domain.PriorityMedium,
		Title:           "Consistency champion",
		MessageTemplate: "Your daily calories stayed within a tight range across {days} days.",
		DataKeys:        []string{"days"},
	}
	UndereatingWarning = domain.Rule{
		ID: "undereating-warning", Name: "Under-eating", Type: domain.TypeWarning, Priority: domain.PriorityHigh,
		Title:           "Fuel up",
		MessageTemplate: "You're averaging {percentage}% of your calorie goal. Eating too little can stall progress.",
		DataKeys:        []string{"percentage"},
	}
	MealPrepMaster = domain.Rule{
		ID: "meal-prep-master", Name: "Prep Master", Type: domain.TypeNutrition, Priority: domain.PriorityLow,
		Title:           "Prep master",
		MessageTemplate: "Your Sunday prep is paying off: {weeks} weeks of planned meals.",
		DataKeys:        []string{"weeks"},
	}
	CheatMealBalance = domain.Rule{
		ID: "cheat-meal-balance", Name: "Balanced Treats", Type: domain.TypeNutrition, Priority: domain.PriorityLow,
		Title:           "Balance, not perfection",
		MessageTemplate: "Two higher-calorie days in two weeks is a healthy balance. Enjoy them!",
	}
	CheatMealRefocus = domain.Rule{
		ID: "cheat-meal-refocus", Name: "Refocus", Type: domain.TypeWarning, Priority: domain.PriorityMedium,
		Title:           "Time to refocus",
		MessageTemplate: "{count} days went well over your calorie goal in the last two weeks. Let's plan the next few meals together.",
		DataKeys:        []string{"count"},
	}
	ProteinLevelUp = domain.Rule{
		ID: "protein-level-up", Name: "Level Up", Type: domain.TypeNutrition, Priority: domain.PriorityMedium,
		Title:           "Level up!",
		MessageTemplate: "Your protein goal hit-rate improved by {improvement} points this week.",
		DataKeys:        []string{"improvement"},
	}
)

// Workout rules.
var (
	WorkoutVolumeUp = domain.Rule{
		ID: "workout-volume-up", Name: "Volume Up", Type: domain.TypeWorkout, Priority: domain.PriorityLow,
		Title:           "Training volume up",
		MessageTemplate: "{count} workouts this week, up from {previous} last week.",
		DataKeys:        []string{"count", "previous"},
	}
)

// Trigger rules fired directly by lifecycle events.
var (
	PersonalRecord = domain.Rule{
		ID: "personal-record", Name: "Personal Record", Type: domain.TypeMilestone, Priority: domain.PriorityHigh,
		Title:           "New personal record!",
		MessageTemplate: "You just set a new PR on {exercise}. Outstanding work!",
		DataKeys:        []string{"exercise"},
	}
	ProteinGoalHit = domain.Rule{
		ID: "protein-goal-hit", Name: "Protein Goal Hit", Type: domain.TypeNutrition, Priority: domain.PriorityMedium,
		Title:           "Protein goal hit",
		MessageTemplate: "{protein}g of protein today. Goal of {protein_goal}g reached!",
		DataKeys:        []string{"protein", "protein_goal"},
	}
	WeightMilestone = domain.Rule{
		ID: "weight-milestone", Name: "Weight Milestone", Type: domain.TypeMilestone, Priority: domain.PriorityMedium,
		Title:           "Milestone reached",
		MessageTemplate: "You reached {milestone} {unit}. Every milestone counts!",
		DataKeys:        []string{"milestone", "unit"},
	}
	GoalAchieved = domain.Rule{
		ID: "goal-achieved", Name: "Goal Achieved", Type: domain.TypeMilestone, Priority: domain.PriorityHigh,
		Title:           "Goal achieved!",
		MessageTemplate: "You achieved {goal}. Time to celebrate and set the next one!",
		DataKeys:        []string{"goal"},
	}
)

// Catalog returns every rule the engine can emit.
func Catalog() []domain.Rule {
	return []domain.Rule{
		WorkoutStreak3, WorkoutStreak7, WorkoutStreak14, WorkoutStreak30, WorkoutStreakMilestone,
		ComebackNudge, ProteinStreak, HydrationStreak, CheckInConsistency, WeightLogConsistency,
		LowProteinAlert, PerfectMacros, MealTimingConsistency, SkipBreakfast,
		CalorieConsistencyChampion, UndereatingWarning, MealPrepMaster,
		CheatMealBalance, CheatMealRefocus, ProteinLevelUp,
		WorkoutVolumeUp,
		PersonalRecord, ProteinGoalHit, WeightMilestone, GoalAchieved,
	}
}
