// Package recommend implements the rule-based recipe recommendation pipeline:
// intent extraction, candidate filtering, semantic ranking and response composition.
//
// The package depends only on the collaborator interfaces declared in models.go, so the
// language model, the embedder and the storage layer can be swapped without touching it.
package recommend

import "sort"

// Recipe field defaults applied when a stored record leaves the field unset.
const (
	DefaultPrepTime      = 30
	DefaultServings      = 4
	DefaultCookingMethod = "any"
	DefaultDiet          = "any"
)

// Recipe is a corpus entry. Zero values for PrepTime, Servings, CookingMethod and Diet mean
// "missing" and resolve to the package defaults through WithDefaults.
type Recipe struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Instructions  string   `json:"instructions"`
	PrepTime      int      `json:"prep_time"`
	Servings      int      `json:"servings"`
	CookingMethod string   `json:"cooking_method"`
	Diet          string   `json:"diet"`
	Ingredients   []string `json:"ingredients"`
}

// WithDefaults returns a copy of r with missing fields filled in.
func (r Recipe) WithDefaults() Recipe {
	if r.PrepTime <= 0 {
		r.PrepTime = DefaultPrepTime
	}
	if r.Servings <= 0 {
		r.Servings = DefaultServings
	}
	if r.CookingMethod == "" {
		r.CookingMethod = DefaultCookingMethod
	}
	if r.Diet == "" {
		r.Diet = DefaultDiet
	}
	return r
}

// Document is the text a ranker embeds for this recipe.
func (r Recipe) Document() string {
	return r.Title + ". " + r.Instructions
}

// Pantry is the set of ingredient names a user has on hand. Names are compared exactly.
type Pantry map[string]struct{}

// NewPantry builds a pantry from a list of names; duplicates collapse.
func NewPantry(items ...string) Pantry {
	p := make(Pantry, len(items))
	for _, item := range items {
		p[item] = struct{}{}
	}
	return p
}

// Has reports whether name is in the pantry.
func (p Pantry) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Items returns the pantry contents in sorted order.
func (p Pantry) Items() []string {
	items := make([]string, 0, len(p))
	for item := range p {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// Profile is the per-user context the filter needs.
type Profile struct {
	Pantry      Pantry      `json:"pantry"`
	Preferences Preferences `json:"preferences"`
}

// Intent is the coarse classification of a free-text query.
type Intent string

const (
	IntentSuggestDish  Intent = "suggest_dish"
	IntentManagePantry Intent = "manage_pantry"
	IntentUnknown      Intent = "unknown"
)

// State is a step of the rule pipeline.
type State string

const (
	StateReceivedQuery    State = "received_query"
	StateIntentClassified State = "intent_classified"
	StateRejected         State = "rejected"
	StateFiltered         State = "filtered"
	StateRanked           State = "ranked"
	StateComposed         State = "composed"
	StateReturned         State = "returned"
)

// Conversation roles.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ScoredRecipe pairs a recipe with its similarity to the query. It only lives inside ranking.
type ScoredRecipe struct {
	Recipe Recipe
	Score  float64
}

// Result is what the pipeline hands back for one query.
type Result struct {
	Message         string   `json:"message"`
	Recommendations []Recipe `json:"recommendations"`
	History         []Turn   `json:"history"`
	Intent          Intent   `json:"intent"`
	State           State    `json:"state"`
	Trace           []State  `json:"-"`
}
