package recommend

import (
	"fmt"
	"math"
)

// Preference defaults.
const (
	DefaultDietaryPreference = "any"
	DefaultMaxPrepTime       = 60
	DefaultMinServings       = 1
	DefaultMatchThreshold    = 0.5
)

// Preferences are the user's recommendation settings as stored. Every field is optional.
type Preferences struct {
	DietaryPreference *string  `json:"dietary_preference,omitempty"`
	MaxPrepTime       *int     `json:"max_prep_time,omitempty"`
	MinServings       *int     `json:"min_servings,omitempty"`
	CookingMethod     *string  `json:"cooking_method,omitempty"`
	MatchThreshold    *float64 `json:"match_threshold,omitempty"`
}

// ResolvedPreferences has every default applied and every value inside its domain.
type ResolvedPreferences struct {
	DietaryPreference string
	MaxPrepTime       int
	MinServings       int
	CookingMethod     string
	MatchThreshold    float64
}

// DefaultPreferences is what an empty Preferences resolves to.
func DefaultPreferences() ResolvedPreferences {
	return ResolvedPreferences{
		DietaryPreference: DefaultDietaryPreference,
		MaxPrepTime:       DefaultMaxPrepTime,
		MinServings:       DefaultMinServings,
		CookingMethod:     DefaultCookingMethod,
		MatchThreshold:    DefaultMatchThreshold,
	}
}

// InvalidPreference describes a stored value that was replaced by its default.
type InvalidPreference struct {
	Field  string
	Value  any
	Reason string
}

func (e InvalidPreference) Error() string {
	return fmt.Sprintf("preference %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e InvalidPreference) Unwrap() error {
	return ErrInvalidPreference
}

// Resolve applies defaults and clamps out-of-domain values back to their default.
// The returned diagnostics are informational; resolution never fails.
func (p Preferences) Resolve() (ResolvedPreferences, []InvalidPreference) {
	out := DefaultPreferences()
	var issues []InvalidPreference

	if p.DietaryPreference != nil {
		if *p.DietaryPreference == "" {
			issues = append(issues, InvalidPreference{"dietary_preference", *p.DietaryPreference, "must not be empty"})
		} else {
			out.DietaryPreference = *p.DietaryPreference
		}
	}

	if p.MaxPrepTime != nil {
		if *p.MaxPrepTime < 0 {
			issues = append(issues, InvalidPreference{"max_prep_time", *p.MaxPrepTime, "must not be negative"})
		} else {
			out.MaxPrepTime = *p.MaxPrepTime
		}
	}

	if p.MinServings != nil {
		if *p.MinServings < 0 {
			issues = append(issues, InvalidPreference{"min_servings", *p.MinServings, "must not be negative"})
		} else {
			out.MinServings = *p.MinServings
		}
	}

	if p.CookingMethod != nil {
		if *p.CookingMethod == "" {
			issues = append(issues, InvalidPreference{"cooking_method", *p.CookingMethod, "must not be empty"})
		} else {
			out.CookingMethod = *p.CookingMethod
		}
	}

	if p.MatchThreshold != nil {
		t := *p.MatchThreshold
		if math.IsNaN(t) || t < 0 || t > 1 {
			issues = append(issues, InvalidPreference{"match_threshold", t, "must be within [0, 1]"})
		} else {
			out.MatchThreshold = t
		}
	}

	return out, issues
}
