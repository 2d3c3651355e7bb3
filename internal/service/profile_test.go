package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chefai/backend/internal/recommend"
	"github.com/pageza/chefai/backend/internal/service"
	"github.com/pageza/chefai/backend/internal/testhelpers"
)

func TestProfileProjectsPantryAndPreferences(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "ana")
	ctx := context.Background()

	pantry := service.NewPantryService(db)
	_, err := pantry.Add(ctx, user.ID, service.PantryInput{Category: "dairy", Name: "egg"})
	require.NoError(t, err)
	_, err = pantry.Add(ctx, user.ID, service.PantryInput{Category: "veg", Name: "spinach", Temporary: true})
	require.NoError(t, err)

	diet := "vegetarian"
	_, err = service.NewSettingsService(db).Put(ctx, user.ID, service.SettingsInput{
		Recommendation: recommend.Preferences{DietaryPreference: &diet},
	})
	require.NoError(t, err)

	profiles := service.NewProfileService(db)
	profile, err := profiles.Get(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"egg", "spinach"}, profile.Pantry.Items())
	resolved, issues := profile.Preferences.Resolve()
	assert.Empty(t, issues)
	assert.Equal(t, "vegetarian", resolved.DietaryPreference)
	assert.Equal(t, recommend.DefaultMaxPrepTime, resolved.MaxPrepTime)

	staples, extras, err := profiles.PantryNames(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"egg"}, staples)
	assert.Equal(t, []string{"spinach"}, extras)
}

func TestProfileUnknownUserIsEmpty(t *testing.T) {
	db := testhelpers.SetupSQLite(t)

	profile, err := service.NewProfileService(db).Get(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, profile.Pantry)
	assert.NotNil(t, profile.Pantry)
	assert.Equal(t, recommend.DefaultPreferences(), func() recommend.ResolvedPreferences {
		r, _ := profile.Preferences.Resolve()
		return r
	}())
}
