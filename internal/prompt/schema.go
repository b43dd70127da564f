package prompt

import "cloud.google.com/go/vertexai/genai"

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func num(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: desc}
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func array(items *genai.Schema, desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items, Description: desc}
}

// PlanSchema returns the structured-output contract the model must honor.
// A new value is built on every call so callers may hand it to a client
// without sharing mutable state.
func PlanSchema() *genai.Schema {
	stats := object(map[string]*genai.Schema{
		"bmr":                  num("Basal Metabolic Rate"),
		"tdee":                 num("Total Daily Energy Expenditure"),
		"targetCalories":       num("Daily caloric intake goal"),
		"goalDescription":      str("Short summary of the strategy (e.g., 'Caloric deficit of 500 kcal')"),
		"estimatedMonthlyCost": str("Estimated monthly cost for the diet plan in NPR (Nepalese Rupees)"),
	}, "bmr", "tdee", "targetCalories", "goalDescription", "estimatedMonthlyCost")

	macros := object(map[string]*genai.Schema{
		"protein": num("Grams of protein"),
		"carbs":   num("Grams of carbohydrates"),
		"fats":    num("Grams of fats"),
	}, "protein", "carbs", "fats")

	supplement := object(map[string]*genai.Schema{
		"name":   str(""),
		"timing": str(""),
	}, "name", "timing")

	mealItem := object(map[string]*genai.Schema{
		"name":     str(""),
		"quantity": str(""),
	}, "name", "quantity")

	meal := object(map[string]*genai.Schema{
		"timing":       str("e.g., Breakfast, Pre-workout"),
		"name":         str("Name of the meal"),
		"items":        array(mealItem, ""),
		"alternatives": array(str(""), "Exactly 2 distinct alternative meal options. Each string should describe the full alternative meal."),
	}, "timing", "name", "items", "alternatives")

	exercise := object(map[string]*genai.Schema{
		"name":  str(""),
		"sets":  str(""),
		"reps":  str(""),
		"rest":  str(""),
		"notes": str("Form cue or tempo"),
	}, "name", "sets", "reps", "rest", "notes")

	workoutDay := object(map[string]*genai.Schema{
		"day":       str("Day of the week (Sunday, Monday, etc.)"),
		"focus":     str("e.g., Push, Pull, Legs"),
		"warmup":    str("5-10 min warmup routine"),
		"exercises": array(exercise, ""),
		"cardio":    {Type: genai.TypeString, Nullable: true},
		"abs":       {Type: genai.TypeString, Nullable: true},
	}, "day", "focus", "warmup", "exercises")

	recovery := object(map[string]*genai.Schema{
		"sleep":            str(""),
		"stress":           str(""),
		"progressTracking": str(""),
	}, "sleep", "stress", "progressTracking")

	return object(map[string]*genai.Schema{
		"weekNumber":   {Type: genai.TypeInteger, Description: "The week number of this plan (e.g., 1, 2, 3)"},
		"stats":        stats,
		"macros":       macros,
		"hydration":    str("Daily water intake recommendation"),
		"supplements":  array(supplement, ""),
		"dietPlan":     array(meal, ""),
		"workoutSplit": array(workoutDay, ""),
		"recovery":     recovery,
	}, "weekNumber", "stats", "macros", "dietPlan", "workoutSplit", "recovery", "hydration", "supplements")
}
