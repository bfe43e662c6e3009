package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/model"
	"github.com/foodgram-app/backend/internal/testhelpers"
)

func TestShoppingListAggregate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewShoppingListService(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "shopper")
	flour := testhelpers.CreateTestIngredient(t, db, "Flour", "g")
	salt := testhelpers.CreateTestIngredient(t, db, "Salt", "g")
	tag := testhelpers.CreateTestTag(t, db, "Dinner", "dinner")

	bread := testhelpers.CreateTestRecipe(t, db, user, "Bread", map[uint]float64{
		flour.ID: 200,
		salt.ID:  10,
	}, tag)
	pancakes := testhelpers.CreateTestRecipe(t, db, user, "Pancakes", map[uint]float64{
		flour.ID: 50,
	}, tag)

	testhelpers.AddRelation(t, db, user, bread, model.RelationShoppingCart)
	testhelpers.AddRelation(t, db, user, pancakes, model.RelationShoppingCart)

	items, recipes, err := svc.Aggregate(ctx, user.ID)
	require.NoError(t, err)

	// Flour sums across both recipes; items come back alphabetically.
	require.Len(t, items, 2)
	assert.Equal(t, "Flour", items[0].Name)
	assert.Equal(t, "g", items[0].MeasurementUnit)
	assert.Equal(t, 250.0, items[0].TotalAmount)
	assert.Equal(t, "Salt", items[1].Name)
	assert.Equal(t, 10.0, items[1].TotalAmount)

	require.Len(t, recipes, 2)
	assert.Equal(t, "Bread", recipes[0].Name)
	assert.Equal(t, "Pancakes", recipes[1].Name)
}

func TestShoppingListAggregateGroupsByUnit(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewShoppingListService(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "shopper")
	milkML := testhelpers.CreateTestIngredient(t, db, "Milk", "ml")
	milkG := testhelpers.CreateTestIngredient(t, db, "Milk", "g")
	tag := testhelpers.CreateTestTag(t, db, "Breakfast", "breakfast")

	porridge := testhelpers.CreateTestRecipe(t, db, user, "Porridge", map[uint]float64{
		milkML.ID: 300,
		milkG.ID:  100,
	}, tag)
	testhelpers.AddRelation(t, db, user, porridge, model.RelationShoppingCart)

	items, _, err := svc.Aggregate(ctx, user.ID)
	require.NoError(t, err)

	// Same name, different unit stays two lines.
	require.Len(t, items, 2)
	units := []string{items[0].MeasurementUnit, items[1].MeasurementUnit}
	assert.ElementsMatch(t, []string{"ml", "g"}, units)
}

func TestShoppingListAggregateOnlyOwnCart(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewShoppingListService(db)
	ctx := context.Background()

	alice := testhelpers.CreateTestUser(t, db, "alice")
	bob := testhelpers.CreateTestUser(t, db, "bob")
	flour := testhelpers.CreateTestIngredient(t, db, "Flour", "g")
	tag := testhelpers.CreateTestTag(t, db, "Dinner", "dinner")

	bread := testhelpers.CreateTestRecipe(t, db, alice, "Bread", map[uint]float64{flour.ID: 200}, tag)
	testhelpers.AddRelation(t, db, bob, bread, model.RelationShoppingCart)
	// Alice favorited it but never put it in her cart.
	testhelpers.AddRelation(t, db, alice, bread, model.RelationFavorite)

	items, recipes, err := svc.Aggregate(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, recipes)

	items, _, err = svc.Aggregate(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 200.0, items[0].TotalAmount)
}

func TestShoppingListRender(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewShoppingListService(db)
	ctx := context.Background()

	user := testhelpers.CreateTestUser(t, db, "shopper")
	flour := testhelpers.CreateTestIngredient(t, db, "Flour", "g")
	tag := testhelpers.CreateTestTag(t, db, "Dinner", "dinner")
	bread := testhelpers.CreateTestRecipe(t, db, user, "Bread", map[uint]float64{flour.ID: 200}, tag)
	testhelpers.AddRelation(t, db, user, bread, model.RelationShoppingCart)

	body, fileName, err := svc.Render(ctx, user.ID)
	require.NoError(t, err)

	html := string(body)
	assert.Contains(t, html, "Flour")
	assert.Contains(t, html, "200")
	assert.Contains(t, html, "Bread")
	assert.True(t, strings.HasPrefix(fileName, "shopping_list_"))
	assert.True(t, strings.HasSuffix(fileName, ".html"))
}

func TestShoppingListRenderEmptyCart(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewShoppingListService(db)

	user := testhelpers.CreateTestUser(t, db, "shopper")

	body, _, err := svc.Render(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
