package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecipeWithDefaults(t *testing.T) {
	r := Recipe{ID: 7, Title: "Toast"}.WithDefaults()

	assert.Equal(t, DefaultPrepTime, r.PrepTime)
	assert.Equal(t, DefaultServings, r.Servings)
	assert.Equal(t, "any", r.CookingMethod)
	assert.Equal(t, "any", r.Diet)

	set := Recipe{ID: 8, PrepTime: 5, Servings: 1, CookingMethod: "grill", Diet: "vegan"}.WithDefaults()
	assert.Equal(t, 5, set.PrepTime)
	assert.Equal(t, 1, set.Servings)
	assert.Equal(t, "grill", set.CookingMethod)
	assert.Equal(t, "vegan", set.Diet)
}

func TestRecipeDocument(t *testing.T) {
	r := Recipe{Title: "Pasta", Instructions: "Boil water."}
	assert.Equal(t, "Pasta. Boil water.", r.Document())
}

func TestPantry(t *testing.T) {
	p := NewPantry("rice", "egg", "rice")

	assert.Len(t, p, 2)
	assert.True(t, p.Has("rice"))
	assert.False(t, p.Has("Rice"))
	assert.Equal(t, []string{"egg", "rice"}, p.Items())
}
