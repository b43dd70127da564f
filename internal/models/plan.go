package models

// PlanStats holds the energy figures the plan was built around.
type PlanStats struct {
	BMR                  float64 `json:"bmr"`                  // kcal/day
	TDEE                 float64 `json:"tdee"`                 // kcal/day
	TargetCalories       float64 `json:"targetCalories"`       // kcal/day
	GoalDescription      string  `json:"goalDescription"`      // e.g. "Caloric deficit of 500 kcal"
	EstimatedMonthlyCost string  `json:"estimatedMonthlyCost"` // in NPR
}

// Macros are daily targets in grams.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

type Supplement struct {
	Name   string `json:"name"`
	Timing string `json:"timing"`
}

type MealItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// Meal is one eating occasion. Alternatives is requested to hold exactly two
// full replacement meals.
type Meal struct {
	Timing       string     `json:"timing"`
	Name         string     `json:"name"`
	Items        []MealItem `json:"items"`
	Alternatives []string   `json:"alternatives"`
}

type Exercise struct {
	Name  string `json:"name"`
	Sets  string `json:"sets"`
	Reps  string `json:"reps"`
	Rest  string `json:"rest"`
	Notes string `json:"notes"`
}

type WorkoutDay struct {
	Day       string     `json:"day"`
	Focus     string     `json:"focus"`
	Warmup    string     `json:"warmup"`
	Exercises []Exercise `json:"exercises"`
	Cardio    *string    `json:"cardio"`
	Abs       *string    `json:"abs"`
}

type Recovery struct {
	Sleep            string `json:"sleep"`
	Stress           string `json:"stress"`
	ProgressTracking string `json:"progressTracking"`
}

// FitnessPlan is one complete week of diet and training. Plans are produced
// whole by a generator and never edited afterwards.
type FitnessPlan struct {
	WeekNumber   int          `json:"weekNumber"`
	Stats        PlanStats    `json:"stats"`
	Macros       Macros       `json:"macros"`
	Hydration    string       `json:"hydration"`
	Supplements  []Supplement `json:"supplements"`
	DietPlan     []Meal       `json:"dietPlan"`
	WorkoutSplit []WorkoutDay `json:"workoutSplit"`
	Recovery     Recovery     `json:"recovery"`
}
