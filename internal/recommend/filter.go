package recommend

// Filter keeps the recipes that satisfy the pantry and preference constraints, in input order.
// Neither argument is modified.
func Filter(recipes []Recipe, pantry Pantry, prefs ResolvedPreferences) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if accepts(r.WithDefaults(), pantry, prefs) {
			out = append(out, r)
		}
	}
	return out
}

// accepts checks the constraints in a fixed order and stops at the first failure.
func accepts(r Recipe, pantry Pantry, prefs ResolvedPreferences) bool {
	if MatchRatio(r.Ingredients, pantry) < prefs.MatchThreshold {
		return false
	}
	if prefs.DietaryPreference != DefaultDietaryPreference && r.Diet != prefs.DietaryPreference {
		return false
	}
	if r.PrepTime > prefs.MaxPrepTime {
		return false
	}
	if r.Servings < prefs.MinServings {
		return false
	}
	if prefs.CookingMethod != DefaultCookingMethod && r.CookingMethod != prefs.CookingMethod {
		return false
	}
	return true
}

// MatchRatio is the share of distinct ingredients found in the pantry. A recipe with no
// ingredients scores 0.
func MatchRatio(ingredients []string, pantry Pantry) float64 {
	seen := make(map[string]struct{}, len(ingredients))
	matched := 0
	for _, ing := range ingredients {
		if _, dup := seen[ing]; dup {
			continue
		}
		seen[ing] = struct{}{}
		if pantry.Has(ing) {
			matched++
		}
	}
	return float64(matched) / float64(max(len(seen), 1))
}
