package ml

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/prompt"
)

const defaultProteinPerKg = 2.0

// LocalConfig holds configuration for the local model
type LocalConfig struct {
	BaseConfig
	ProteinPerKg float64 `json:"protein_per_kg"`
}

// Load loads the local configuration
func (c *LocalConfig) Load() error {
	if err := c.LoadConfig(c.ConfigPath, "local", c); err != nil {
		return err
	}

	// Fall back to environment variables if not set
	if c.ProteinPerKg == 0 {
		if v, err := strconv.ParseFloat(os.Getenv("LOCAL_PROTEIN_PER_KG"), 64); err == nil {
			c.ProteinPerKg = v
		}
	}
	if c.ProteinPerKg < 1.6 || c.ProteinPerKg > 2.2 {
		c.ProteinPerKg = defaultProteinPerKg
	}

	return nil
}

// LocalModel builds plans from the profile with fixed rules and no network.
// It backs offline development and tests; identical inputs give identical plans.
type LocalModel struct {
	config LocalConfig
}

// LocalModelFactory implements ModelFactory for local models
type LocalModelFactory struct {
	config LocalConfig
}

// NewLocalModelFactory creates a new local model factory
func NewLocalModelFactory(config LocalConfig) *LocalModelFactory {
	return &LocalModelFactory{config: config}
}

// CreateModel creates a new local model instance
func (f *LocalModelFactory) CreateModel() (Model, error) {
	return &LocalModel{
		config: f.config,
	}, nil
}

func (m *LocalModel) Load(ctx context.Context) error {
	if m.config.ProteinPerKg == 0 {
		m.config.ProteinPerKg = defaultProteinPerKg
	}
	return nil
}

func (m *LocalModel) Close() error {
	return nil
}

// Generate renders the plan to JSON and decodes it against the request
// schema, so local output passes the same checks as a remote response.
func (m *LocalModel) Generate(ctx context.Context, req prompt.Request) (*models.FitnessPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err, err)
	}

	text, err := encodePlan(m.buildPlan(req.Profile, req.WeekNumber))
	if err != nil {
		return nil, newError(KindSchemaMismatch, err)
	}
	return DecodePlan(text, req.Schema)
}

func (m *LocalModel) buildPlan(p models.UserProfile, week int) *models.FitnessPlan {
	bmr := math.Round(prompt.MifflinStJeor(p))
	tdee := math.Round(bmr * prompt.ActivityMultiplier(p.GymDays))
	delta := prompt.GoalCalorieDelta(p.Goal)
	target := tdee + float64(delta)

	protein := math.Round(p.Weight * m.config.ProteinPerKg)
	fats := math.Round(target * 0.25 / 9)
	carbs := math.Round((target - protein*4 - fats*9) / 4)
	if carbs < 0 {
		carbs = 0
	}

	return &models.FitnessPlan{
		WeekNumber: week,
		Stats: models.PlanStats{
			BMR:                  bmr,
			TDEE:                 tdee,
			TargetCalories:       target,
			GoalDescription:      goalDescription(p.Goal, delta),
			EstimatedMonthlyCost: monthlyCost(p.Budget, p.DietaryPreference),
		},
		Macros:       models.Macros{Protein: protein, Carbs: carbs, Fats: fats},
		Hydration:    fmt.Sprintf("%.1f litres of water per day, plus 500 ml per training hour", p.Weight*0.035),
		Supplements:  supplements(p),
		DietPlan:     dietPlan(p),
		WorkoutSplit: workoutSplit(p, week),
		Recovery: models.Recovery{
			Sleep:            "7-9 hours per night on a consistent schedule",
			Stress:           "10 minutes of breathing work or a walk after dinner",
			ProgressTracking: fmt.Sprintf("Weigh in every morning and compare weekly averages; log lifts for week %d", week),
		},
	}
}

func goalDescription(goal models.Goal, delta int) string {
	switch {
	case delta < 0:
		return fmt.Sprintf("%s: caloric deficit of %d kcal", goal, -delta)
	case delta > 0:
		return fmt.Sprintf("%s: caloric surplus of %d kcal", goal, delta)
	default:
		return fmt.Sprintf("%s: maintenance calories", goal)
	}
}

func monthlyCost(budget models.Budget, diet models.DietaryPreference) string {
	base := map[models.Budget]int{
		models.BudgetLow:    9000,
		models.BudgetMedium: 15000,
		models.BudgetHigh:   25000,
	}[budget]
	if diet == models.DietNonVeg {
		base += 3000
	}
	return fmt.Sprintf("%s %d - %d", prompt.Currency, base, base+base/5)
}

func supplements(p models.UserProfile) []models.Supplement {
	out := []models.Supplement{}
	if p.IncludeSupplements != models.Yes {
		return out
	}
	protein := "Whey protein"
	if p.DietaryPreference == models.DietVegan {
		protein = "Plant protein"
	}
	return append(out,
		models.Supplement{Name: protein, Timing: "Post-workout"},
		models.Supplement{Name: "Creatine monohydrate 5 g", Timing: "Any time, daily"},
	)
}

// proteinSources lists the main protein for breakfast, lunch and dinner.
func proteinSources(p models.UserProfile) [3]string {
	if p.Budget == models.BudgetLow {
		switch p.DietaryPreference {
		case models.DietVeg, models.DietVegan:
			return [3]string{"Soya Chunks (Nutrela)", "Lentils (Dal)", "Chickpeas (Chana)"}
		default:
			return [3]string{"Eggs", "Lentils (Dal)", "Soya Chunks (Nutrela)"}
		}
	}
	switch p.DietaryPreference {
	case models.DietNonVeg:
		return [3]string{"Eggs", "Chicken breast", "Fish"}
	case models.DietEggetarian:
		return [3]string{"Eggs", "Paneer", "Lentils (Dal)"}
	case models.DietVegan:
		return [3]string{"Tofu", "Chickpeas (Chana)", "Soya Chunks (Nutrela)"}
	default:
		return [3]string{"Greek yogurt", "Paneer", "Lentils (Dal)"}
	}
}

func dietPlan(p models.UserProfile) []models.Meal {
	src := proteinSources(p)
	staple := "Brown rice"
	if p.Budget == models.BudgetLow {
		staple = "Rice"
	}
	return []models.Meal{
		{
			Timing: "Breakfast",
			Name:   "Oats power bowl",
			Items: []models.MealItem{
				{Name: "Oats", Quantity: "60 g"},
				{Name: src[0], Quantity: "1 serving"},
				{Name: "Banana", Quantity: "1"},
			},
			Alternatives: []string{"Chiura with " + src[0] + " and seasonal fruit", "Roti with " + src[0] + " and vegetables"},
		},
		{
			Timing: "Lunch",
			Name:   "Dal bhat plate",
			Items: []models.MealItem{
				{Name: staple, Quantity: "150 g cooked"},
				{Name: src[1], Quantity: "1 serving"},
				{Name: "Seasonal vegetables (tarkari)", Quantity: "1 bowl"},
			},
			Alternatives: []string{"Roti with " + src[1] + " and saag", "Millet dhido with " + src[1] + " and salad"},
		},
		{
			Timing: "Pre-workout",
			Name:   "Light snack",
			Items: []models.MealItem{
				{Name: "Roasted chana", Quantity: "40 g"},
				{Name: "Seasonal fruit", Quantity: "1"},
			},
			Alternatives: []string{"Banana with peanut butter", "Bread with jaggery"},
		},
		{
			Timing: "Dinner",
			Name:   "Recovery dinner",
			Items: []models.MealItem{
				{Name: src[2], Quantity: "1 serving"},
				{Name: staple, Quantity: "100 g cooked"},
				{Name: "Mixed salad", Quantity: "1 bowl"},
			},
			Alternatives: []string{src[2] + " curry with roti", src[2] + " stir-fry with vegetables"},
		},
	}
}

var weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// trainingDays picks gymDays days starting Sunday, spread across the week.
func trainingDays(n int) []string {
	switch n {
	case 3:
		return []string{"Sunday", "Tuesday", "Thursday"}
	case 4:
		return []string{"Sunday", "Monday", "Wednesday", "Thursday"}
	case 5:
		return []string{"Sunday", "Monday", "Tuesday", "Thursday", "Friday"}
	case 6:
		return weekdays[:6]
	default:
		return weekdays
	}
}

func splitFoci(p models.UserProfile) []string {
	split := p.PreferredSplit
	if split == models.SplitAIRecommended {
		switch {
		case p.GymDays <= 3:
			split = models.SplitFullBody
		case p.GymDays == 4:
			split = models.SplitUpperLower
		default:
			split = models.SplitPushPullLegs
		}
	}
	switch split {
	case models.SplitUpperLower:
		return []string{"Upper Body", "Lower Body"}
	case models.SplitPushPullLegs:
		return []string{"Push", "Pull", "Legs"}
	case models.SplitBroSplit:
		return []string{"Chest", "Back", "Shoulders", "Legs", "Arms"}
	default:
		return []string{"Full Body"}
	}
}

var exercisePools = map[models.Location]map[string][]string{
	models.LocationGym: {
		"push": {"Barbell Bench Press", "Overhead Press", "Incline Dumbbell Press", "Weighted Dips", "Cable Fly", "Lateral Raise", "Triceps Pushdown", "Overhead Triceps Extension", "Pec Deck"},
		"pull": {"Deadlift", "Pull-up", "Barbell Row", "Lat Pulldown", "Seated Cable Row", "Face Pull", "Barbell Curl", "Hammer Curl", "Rear Delt Fly"},
		"legs": {"Back Squat", "Romanian Deadlift", "Leg Press", "Walking Lunge", "Leg Curl", "Leg Extension", "Hip Thrust", "Standing Calf Raise", "Seated Calf Raise"},
	},
	models.LocationHome: {
		"push": {"Push-up", "Pike Push-up", "Decline Push-up", "Chair Dips", "Diamond Push-up", "Backpack Floor Press", "Wide Push-up", "Bench Dips", "Plank Shoulder Tap"},
		"pull": {"Doorway Row", "Backpack Row", "Superman Hold", "Towel Row", "Reverse Snow Angel", "Backpack Curl", "Prone Y-Raise", "Towel Curl", "Band Pull-apart"},
		"legs": {"Bulgarian Split Squat", "Goblet Squat", "Single-leg Romanian Deadlift", "Reverse Lunge", "Glute Bridge", "Step-up", "Wall Sit", "Single-leg Calf Raise", "Jump Squat"},
	},
}

func families(focus string) []string {
	switch focus {
	case "Push", "Chest", "Shoulders":
		return []string{"push"}
	case "Pull", "Back", "Arms":
		return []string{"pull"}
	case "Legs", "Lower Body":
		return []string{"legs"}
	case "Upper Body":
		return []string{"push", "pull"}
	default:
		return []string{"legs", "push", "pull"}
	}
}

// exerciseCount stays inside the band for the session length and adds one
// exercise per progression week until the band's upper bound.
func exerciseCount(minutes, week int) int {
	lo, hi := 3, 4
	switch prompt.ExerciseBand(minutes) {
	case prompt.BandMedium:
		lo, hi = 5, 6
	case prompt.BandLong:
		lo, hi = 7, 9
	}
	return min(lo+week-1, hi)
}

func workoutSplit(p models.UserProfile, week int) []models.WorkoutDay {
	foci := splitFoci(p)
	pool := exercisePools[p.Location]
	count := exerciseCount(p.TimeAvailable, week)
	sets := min(3+(week-1)/2, 5)

	notes := "Controlled tempo; leave 2 reps in reserve"
	if week > 1 {
		notes = fmt.Sprintf("Controlled tempo; add load or one rep over week %d", week-1)
	}

	days := trainingDays(p.GymDays)
	out := make([]models.WorkoutDay, 0, len(days))
	for i, day := range days {
		focus := foci[i%len(foci)]
		fams := families(focus)

		exercises := make([]models.Exercise, 0, count)
		for j := 0; len(exercises) < count; j++ {
			fam := fams[j%len(fams)]
			name := pool[fam][j/len(fams)]
			exercises = append(exercises, models.Exercise{
				Name:  name,
				Sets:  strconv.Itoa(sets),
				Reps:  repRange(p.Goal, j),
				Rest:  restFor(j),
				Notes: notes,
			})
		}

		wd := models.WorkoutDay{
			Day:       day,
			Focus:     focus,
			Warmup:    "5 min light cardio, dynamic mobility, 2 ramp-up sets of the first lift",
			Exercises: exercises,
		}
		if p.Goal == models.GoalFatLoss || p.Goal == models.GoalSixPackAbs {
			cardio := fmt.Sprintf("%d min incline walk or cycling", 15+5*min(week-1, 3))
			wd.Cardio = &cardio
		}
		if p.Goal == models.GoalSixPackAbs || i%2 == 0 {
			abs := "3 rounds: hanging knee raise x12, plank 45 s, dead bug x10"
			wd.Abs = &abs
		}
		out = append(out, wd)
	}
	return out
}

func repRange(goal models.Goal, idx int) string {
	if idx == 0 {
		if goal == models.GoalBulk {
			return "5-6"
		}
		return "6-8"
	}
	if goal == models.GoalFatLoss || goal == models.GoalSixPackAbs {
		return "10-15"
	}
	return "8-12"
}

func restFor(idx int) string {
	if idx < 2 {
		return "2-3 min"
	}
	return "60-90 s"
}
