package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/model"
	"github.com/foodgram-app/backend/internal/testhelpers"
)

func setupRecipeService(t *testing.T) (*gorm.DB, *RecipeService, *model.User, *model.User, *model.Ingredient, *model.Ingredient, *model.Tag) {
	db := testhelpers.SetupTestDB(t)
	svc := NewRecipeService(db)
	user := testhelpers.CreateTestUser(t, db, "author")
	other := testhelpers.CreateTestUser(t, db, "reader")
	flour := testhelpers.CreateTestIngredient(t, db, "Flour", "g")
	sugar := testhelpers.CreateTestIngredient(t, db, "Sugar", "g")
	tag := testhelpers.CreateTestTag(t, db, "Dinner", "dinner")
	return db, svc, user, other, flour, sugar, tag
}

func validInput(flour *model.Ingredient, tag *model.Tag) RecipeInput {
	return RecipeInput{
		Name:        "Bread",
		Text:        "Mix and bake",
		CookingTime: 45,
		Ingredients: []IngredientAmount{{IngredientID: flour.ID, Amount: 200}},
		TagIDs:      []uint{tag.ID},
	}
}

func TestRecipeCreateAndGet(t *testing.T) {
	_, svc, user, _, flour, _, tag := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, validInput(flour, tag))
	require.NoError(t, err)
	assert.Equal(t, "Bread", recipe.Name)
	assert.Equal(t, user.ID, recipe.AuthorID)
	require.Len(t, recipe.RecipeIngredients, 1)
	assert.Equal(t, 200.0, recipe.RecipeIngredients[0].Amount)
	assert.Equal(t, "Flour", recipe.RecipeIngredients[0].Ingredient.Name)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "dinner", recipe.Tags[0].Slug)
	assert.Equal(t, "author", recipe.Author.Username)
}

func TestRecipeGetNotFound(t *testing.T) {
	_, svc, _, _, _, _, _ := setupRecipeService(t)

	_, err := svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRecipeCreateValidation(t *testing.T) {
	_, svc, user, _, flour, _, tag := setupRecipeService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RecipeInput)
	}{
		{"empty name", func(in *RecipeInput) { in.Name = "" }},
		{"empty text", func(in *RecipeInput) { in.Text = "" }},
		{"zero cooking time", func(in *RecipeInput) { in.CookingTime = 0 }},
		{"no ingredients", func(in *RecipeInput) { in.Ingredients = nil }},
		{"no tags", func(in *RecipeInput) { in.TagIDs = nil }},
		{"amount below one", func(in *RecipeInput) { in.Ingredients[0].Amount = 0.5 }},
		{"unknown ingredient", func(in *RecipeInput) { in.Ingredients[0].IngredientID = 999 }},
		{"unknown tag", func(in *RecipeInput) { in.TagIDs = []uint{999} }},
		{"duplicate ingredient", func(in *RecipeInput) {
			in.Ingredients = append(in.Ingredients, IngredientAmount{IngredientID: flour.ID, Amount: 50})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(flour, tag)
			tt.mutate(&input)
			_, err := svc.Create(ctx, user.ID, input)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestRecipeUpdateReplacesIngredientSet(t *testing.T) {
	_, svc, user, _, flour, sugar, tag := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, validInput(flour, tag))
	require.NoError(t, err)

	input := validInput(flour, tag)
	input.Name = "Sweet bread"
	input.Ingredients = []IngredientAmount{{IngredientID: sugar.ID, Amount: 100}}

	updated, err := svc.Update(ctx, recipe.ID, user.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Sweet bread", updated.Name)
	require.Len(t, updated.RecipeIngredients, 1)
	assert.Equal(t, sugar.ID, updated.RecipeIngredients[0].IngredientID)
	assert.Equal(t, 100.0, updated.RecipeIngredients[0].Amount)
}

func TestRecipeUpdateForbiddenForNonAuthor(t *testing.T) {
	_, svc, user, other, flour, _, tag := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, validInput(flour, tag))
	require.NoError(t, err)

	_, err = svc.Update(ctx, recipe.ID, other.ID, validInput(flour, tag))
	assert.ErrorIs(t, err, model.ErrForbidden)

	err = svc.Delete(ctx, recipe.ID, other.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestRecipeDelete(t *testing.T) {
	_, svc, user, other, flour, _, tag := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, validInput(flour, tag))
	require.NoError(t, err)

	_, err = svc.AddRelation(ctx, other.ID, recipe.ID, model.RelationFavorite)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, recipe.ID, user.ID))

	_, err = svc.Get(ctx, recipe.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// The relation rows go with the recipe.
	has, err := svc.HasRelation(ctx, other.ID, recipe.ID, model.RelationFavorite)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRecipeRelationToggle(t *testing.T) {
	_, svc, user, other, flour, _, tag := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, validInput(flour, tag))
	require.NoError(t, err)

	for _, kind := range []string{model.RelationFavorite, model.RelationShoppingCart} {
		t.Run(kind, func(t *testing.T) {
			// Removing before adding is not found.
			err := svc.RemoveRelation(ctx, other.ID, recipe.ID, kind)
			assert.ErrorIs(t, err, model.ErrNotFound)

			got, err := svc.AddRelation(ctx, other.ID, recipe.ID, kind)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, got.ID)

			// Adding twice is a conflict.
			_, err = svc.AddRelation(ctx, other.ID, recipe.ID, kind)
			assert.ErrorIs(t, err, model.ErrConflict)

			require.NoError(t, svc.RemoveRelation(ctx, other.ID, recipe.ID, kind))
			err = svc.RemoveRelation(ctx, other.ID, recipe.ID, kind)
			assert.ErrorIs(t, err, model.ErrNotFound)
		})
	}
}

func TestRecipeRelationKindsIndependent(t *testing.T) {
	_, svc, user, _, flour, _, tag := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, validInput(flour, tag))
	require.NoError(t, err)

	_, err = svc.AddRelation(ctx, user.ID, recipe.ID, model.RelationFavorite)
	require.NoError(t, err)

	// Favoriting does not touch the cart.
	_, err = svc.AddRelation(ctx, user.ID, recipe.ID, model.RelationShoppingCart)
	require.NoError(t, err)

	err = svc.RemoveRelation(ctx, user.ID, recipe.ID, model.RelationFavorite)
	require.NoError(t, err)
	has, err := svc.HasRelation(ctx, user.ID, recipe.ID, model.RelationShoppingCart)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRecipeAddRelationUnknownRecipe(t *testing.T) {
	_, svc, user, _, _, _, _ := setupRecipeService(t)

	_, err := svc.AddRelation(context.Background(), user.ID, 999, model.RelationFavorite)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRecipeListFilters(t *testing.T) {
	db, svc, user, other, flour, _, tag := setupRecipeService(t)
	ctx := context.Background()

	breakfast := testhelpers.CreateTestTag(t, db, "Breakfast", "breakfast")

	bread, err := svc.Create(ctx, user.ID, validInput(flour, tag))
	require.NoError(t, err)

	input := validInput(flour, tag)
	input.Name = "Porridge"
	input.TagIDs = []uint{breakfast.ID}
	porridge, err := svc.Create(ctx, other.ID, input)
	require.NoError(t, err)

	_, err = svc.AddRelation(ctx, user.ID, porridge.ID, model.RelationFavorite)
	require.NoError(t, err)

	t.Run("by author", func(t *testing.T) {
		recipes, count, err := svc.List(ctx, RecipeFilter{AuthorID: user.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		require.Len(t, recipes, 1)
		assert.Equal(t, bread.ID, recipes[0].ID)
	})

	t.Run("by tag slug", func(t *testing.T) {
		recipes, count, err := svc.List(ctx, RecipeFilter{TagSlugs: []string{"breakfast"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		require.Len(t, recipes, 1)
		assert.Equal(t, porridge.ID, recipes[0].ID)
	})

	t.Run("by several tag slugs", func(t *testing.T) {
		_, count, err := svc.List(ctx, RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("favorited", func(t *testing.T) {
		yes := true
		recipes, count, err := svc.List(ctx, RecipeFilter{UserID: user.ID, Favorited: &yes})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		require.Len(t, recipes, 1)
		assert.Equal(t, porridge.ID, recipes[0].ID)
	})

	t.Run("not favorited", func(t *testing.T) {
		no := false
		recipes, count, err := svc.List(ctx, RecipeFilter{UserID: user.ID, Favorited: &no})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		require.Len(t, recipes, 1)
		assert.Equal(t, bread.ID, recipes[0].ID)
	})

	t.Run("favorited ignored for anonymous", func(t *testing.T) {
		yes := true
		_, count, err := svc.List(ctx, RecipeFilter{Favorited: &yes})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("pagination", func(t *testing.T) {
		recipes, count, err := svc.List(ctx, RecipeFilter{Page: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		require.Len(t, recipes, 1)
		// Newest first.
		assert.Equal(t, porridge.ID, recipes[0].ID)

		recipes, _, err = svc.List(ctx, RecipeFilter{Page: 2, Limit: 1})
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, bread.ID, recipes[0].ID)
	})
}

func TestRecipeRelationRecipeIDs(t *testing.T) {
	_, svc, user, _, flour, _, tag := setupRecipeService(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, user.ID, validInput(flour, tag))
	require.NoError(t, err)
	_, err = svc.AddRelation(ctx, user.ID, recipe.ID, model.RelationFavorite)
	require.NoError(t, err)

	set, err := svc.RelationRecipeIDs(ctx, user.ID, model.RelationFavorite)
	require.NoError(t, err)
	assert.True(t, set[recipe.ID])

	anon, err := svc.RelationRecipeIDs(ctx, 0, model.RelationFavorite)
	require.NoError(t, err)
	assert.Empty(t, anon)
}
