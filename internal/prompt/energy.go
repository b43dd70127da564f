package prompt

import "github.com/franckalain/fitplan/internal/models"

// Exercise-count bands keyed by session length.
const (
	BandShort  = "3-4"
	BandMedium = "5-6"
	BandLong   = "7-9"
)

// ExerciseBand maps minutes available per session to the number of
// exercises a workout day should contain: up to 45 minutes is short,
// 46-75 medium, anything longer is long.
func ExerciseBand(minutes int) string {
	switch {
	case minutes <= 45:
		return BandShort
	case minutes <= 75:
		return BandMedium
	default:
		return BandLong
	}
}

// GoalCalorieDelta is the daily kcal offset applied to TDEE for a goal.
func GoalCalorieDelta(goal models.Goal) int {
	switch goal {
	case models.GoalFatLoss:
		return -500
	case models.GoalSixPackAbs:
		return -300
	case models.GoalLeanMuscle:
		return 250
	case models.GoalBulk:
		return 500
	default:
		return 0
	}
}

// ActivityMultiplier converts training days per week into a TDEE multiplier.
func ActivityMultiplier(gymDays int) float64 {
	switch {
	case gymDays <= 3:
		return 1.375
	case gymDays <= 5:
		return 1.55
	default:
		return 1.725
	}
}

// MifflinStJeor returns the basal metabolic rate in kcal/day. Profiles with
// gender Other use the midpoint of the male and female constants.
func MifflinStJeor(p models.UserProfile) float64 {
	bmr := 10*p.Weight + 6.25*p.Height - 5*p.Age
	switch p.Gender {
	case models.GenderMale:
		return bmr + 5
	case models.GenderFemale:
		return bmr - 161
	default:
		return bmr - 78
	}
}
