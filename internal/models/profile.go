package models

import (
	"fmt"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "Beginner"
	LevelIntermediate FitnessLevel = "Intermediate"
	LevelAdvanced     FitnessLevel = "Advanced"
)

type Goal string

const (
	GoalFatLoss       Goal = "Fat Loss"
	GoalLeanMuscle    Goal = "Lean Muscle"
	GoalBulk          Goal = "Bulk"
	GoalRecomposition Goal = "Recomposition"
	GoalSixPackAbs    Goal = "Six-Pack Abs"
)

type Location string

const (
	LocationGym  Location = "Gym"
	LocationHome Location = "Home"
)

type DietaryPreference string

const (
	DietVeg        DietaryPreference = "Veg"
	DietNonVeg     DietaryPreference = "Non-Veg"
	DietEggetarian DietaryPreference = "Eggetarian"
	DietVegan      DietaryPreference = "Vegan"
)

type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

type Split string

const (
	SplitAIRecommended Split = "AI Recommended"
	SplitFullBody      Split = "Full Body"
	SplitUpperLower    Split = "Upper/Lower"
	SplitPushPullLegs  Split = "Push/Pull/Legs"
	SplitBroSplit      Split = "Bro Split"
)

type Budget string

const (
	BudgetLow    Budget = "Low"
	BudgetMedium Budget = "Medium"
	BudgetHigh   Budget = "High"
)

// Accepted ranges for numeric profile fields.
const (
	MinGymDays       = 3
	MaxGymDays       = 7
	MinTimeAvailable = 15
	MaxTimeAvailable = 240
)

// UserProfile is the set of biometric and preference fields that drive one
// plan request. Height is in cm, weight in kg, body fat in percent and time
// available in minutes per session.
type UserProfile struct {
	Name               string            `json:"name"`
	Gender             Gender            `json:"gender"`
	Age                float64           `json:"age"`
	Height             float64           `json:"height"`
	Weight             float64           `json:"weight"`
	BodyFat            float64           `json:"bodyFat"`
	FitnessLevel       FitnessLevel      `json:"fitnessLevel"`
	Goal               Goal              `json:"goal"`
	Location           Location          `json:"location"`
	TimeAvailable      int               `json:"timeAvailable"`
	DietaryPreference  DietaryPreference `json:"dietaryPreference"`
	Allergies          string            `json:"allergies"`
	GymDays            int               `json:"gymDays"`
	IncludeSupplements YesNo             `json:"includeSupplements"`
	PreferredSplit     Split             `json:"preferredSplit"`
	Budget             Budget            `json:"budget"`
}

// ValidationError reports the first profile field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func oneOf[T ~string](field string, v T, allowed ...T) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not one of %s", v, strings.Join(names, ", "))}
}

// Validate checks every field against its enum or range.
func (p UserProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := oneOf("gender", p.Gender, GenderMale, GenderFemale, GenderOther); err != nil {
		return err
	}
	if p.Age <= 0 || p.Age > 120 {
		return &ValidationError{Field: "age", Reason: "must be between 1 and 120"}
	}
	if p.Height <= 0 {
		return &ValidationError{Field: "height", Reason: "must be positive"}
	}
	if p.Weight <= 0 {
		return &ValidationError{Field: "weight", Reason: "must be positive"}
	}
	if p.BodyFat <= 0 || p.BodyFat >= 100 {
		return &ValidationError{Field: "bodyFat", Reason: "must be a percentage between 0 and 100"}
	}
	if err := oneOf("fitnessLevel", p.FitnessLevel, LevelBeginner, LevelIntermediate, LevelAdvanced); err != nil {
		return err
	}
	if err := oneOf("goal", p.Goal, GoalFatLoss, GoalLeanMuscle, GoalBulk, GoalRecomposition, GoalSixPackAbs); err != nil {
		return err
	}
	if err := oneOf("location", p.Location, LocationGym, LocationHome); err != nil {
		return err
	}
	if p.TimeAvailable < MinTimeAvailable || p.TimeAvailable > MaxTimeAvailable {
		return &ValidationError{Field: "timeAvailable", Reason: fmt.Sprintf("must be between %d and %d minutes", MinTimeAvailable, MaxTimeAvailable)}
	}
	if err := oneOf("dietaryPreference", p.DietaryPreference, DietVeg, DietNonVeg, DietEggetarian, DietVegan); err != nil {
		return err
	}
	if p.GymDays < MinGymDays || p.GymDays > MaxGymDays {
		return &ValidationError{Field: "gymDays", Reason: fmt.Sprintf("must be between %d and %d", MinGymDays, MaxGymDays)}
	}
	if err := oneOf("includeSupplements", p.IncludeSupplements, Yes, No); err != nil {
		return err
	}
	if err := oneOf("preferredSplit", p.PreferredSplit, SplitAIRecommended, SplitFullBody, SplitUpperLower, SplitPushPullLegs, SplitBroSplit); err != nil {
		return err
	}
	return oneOf("budget", p.Budget, BudgetLow, BudgetMedium, BudgetHigh)
}
