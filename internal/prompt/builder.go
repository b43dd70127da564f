// Package prompt turns a user profile into the instruction text and output
// schema sent to the plan generator.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/franckalain/fitplan/internal/models"
)

const (
	FoundationDirective  = "This is the starting foundation week."
	ProgressionDirective = "This is a progression from the previous week. Increase intensity, adjust volume, or modify exercises slightly to ensure progressive overload."

	LowBudgetDirective = "Since the budget is LOW, you MUST prioritize the most affordable protein sources: " +
		"Soya Chunks (Nutrela), Lentils (Dal), Chickpeas (Chana), Eggs, and seasonal vegetables. " +
		"Minimize expensive meats. Use rice/oats as primary carb sources."
	BalancedBudgetDirective = "Balance high-quality ingredients with standard staple foods."

	ExclusionDirective = "Do NOT include 'Buff', 'Buffalo', or 'Buffalo Meat'. Use Chicken, Goat (Mutton), Fish, or Eggs instead for non-veg."

	Currency      = "NPR"
	MarketContext = "local Nepali markets"
)

var ErrInvalidWeek = errors.New("week number must be at least 1")

// Request is everything a generator needs for one plan.
type Request struct {
	Profile     models.UserProfile
	WeekNumber  int
	Instruction string
	Schema      *genai.Schema
}

// Build validates the profile and assembles the request for the given week.
// The output depends only on its inputs.
func Build(profile models.UserProfile, weekNumber int) (Request, error) {
	if weekNumber < 1 {
		return Request{}, ErrInvalidWeek
	}
	if err := profile.Validate(); err != nil {
		return Request{}, err
	}
	return Request{
		Profile:     profile,
		WeekNumber:  weekNumber,
		Instruction: Instruction(profile, weekNumber),
		Schema:      PlanSchema(),
	}, nil
}

// Instruction renders the natural-language part of the request.
func Instruction(p models.UserProfile, weekNumber int) string {
	var b strings.Builder

	allergies := strings.TrimSpace(p.Allergies)
	if allergies == "" {
		allergies = "None"
	}

	b.WriteString("Act as an elite sports nutritionist and strength coach. Create a premium, highly personalized daily diet and workout plan for:\n\n")

	b.WriteString("PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "- Age: %s\n", formatNumber(p.Age))
	fmt.Fprintf(&b, "- Height: %s cm\n", formatNumber(p.Height))
	fmt.Fprintf(&b, "- Weight: %s kg\n", formatNumber(p.Weight))
	fmt.Fprintf(&b, "- Body Fat: %s%%\n", formatNumber(p.BodyFat))
	fmt.Fprintf(&b, "- Fitness Level: %s\n", p.FitnessLevel)
	fmt.Fprintf(&b, "- Goal: %s\n", p.Goal)
	fmt.Fprintf(&b, "- Location: %s\n", p.Location)
	fmt.Fprintf(&b, "- Time Available: %d minutes\n", p.TimeAvailable)
	fmt.Fprintf(&b, "- Diet Preference: %s\n", p.DietaryPreference)
	fmt.Fprintf(&b, "- Allergies/Notes: %s\n", allergies)
	fmt.Fprintf(&b, "- Training Days Per Week: %d\n", p.GymDays)
	fmt.Fprintf(&b, "- Preferred Workout Split: %s\n", p.PreferredSplit)
	fmt.Fprintf(&b, "- Include Supplements: %s\n", p.IncludeSupplements)
	fmt.Fprintf(&b, "- Budget: %s\n\n", p.Budget)

	b.WriteString("CURRENT PHASE:\n")
	fmt.Fprintf(&b, "This plan is for **Week %d**.\n", weekNumber)
	if weekNumber > 1 {
		b.WriteString(ProgressionDirective)
	} else {
		b.WriteString(FoundationDirective)
	}
	b.WriteString("\n\n")

	budget := BalancedBudgetDirective
	if p.Budget == models.BudgetLow {
		budget = LowBudgetDirective
	}
	band := ExerciseBand(p.TimeAvailable)

	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. Calculate BMR (Mifflin-St Jeor) and TDEE accurately using an activity multiplier of %g for %d training days. "+
		"Set the daily calorie target at TDEE %+d kcal for the goal '%s'.\n", ActivityMultiplier(p.GymDays), p.GymDays, GoalCalorieDelta(p.Goal), p.Goal)
	b.WriteString("2. Protein should be high (1.6g-2.2g per kg of bodyweight).\n")
	fmt.Fprintf(&b, "3. **CRITICAL: NEPALI MARKET CONTEXT**: The diet plan must strictly use foods available in %s.\n", MarketContext)
	fmt.Fprintf(&b, "4. **BUDGET ADJUSTMENT**: %s\n", budget)
	fmt.Fprintf(&b, "5. **STRICT EXCLUSION**: %s\n", ExclusionDirective)
	b.WriteString("6. **ALTERNATIVES**: For every meal, provide exactly 2 distinct alternative options.\n")
	fmt.Fprintf(&b, "7. **WORKOUT SCHEDULE**: Provide %d training days. Start on Sunday. Day 1 = Sunday, Day 2 = Monday, etc.\n", p.GymDays)
	fmt.Fprintf(&b, "8. **WORKOUT VOLUME & DURATION**: With %d minutes available, provide %s exercises per session. %s\n", p.TimeAvailable, band, bandFocus(band))
	fmt.Fprintf(&b, "9. Calculate and return an **Estimated Monthly Cost** for this specific diet plan in Nepalese Rupees (%s).\n", Currency)
	if p.IncludeSupplements == models.No {
		b.WriteString("10. Whole foods only: return an empty supplements list.\n")
	}
	b.WriteString("\nEnsure the tone is motivating, professional, and results-oriented.\n")

	return b.String()
}

func bandFocus(band string) string {
	switch band {
	case BandShort:
		return "Use heavy compound exercises and focus on intensity."
	case BandMedium:
		return "Balance compound and isolation work."
	default:
		return "Use high volume including accessories and isolation work."
	}
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
