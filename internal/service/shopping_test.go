package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListAggregation(t *testing.T) {
	g := testDB(t)
	media := testMedia(t)
	s := NewShopping(g, testLogger())
	relations := NewRelations(g, testLogger())

	author := createUser(t, g, "author")
	buyer := createUser(t, g, "buyer")
	flour := createIngredient(t, g, "Flour", "g")
	egg := createIngredient(t, g, "Egg", "pcs")

	recipeA := createRecipe(t, g, media, author, "pancakes", []IngredientAmount{
		{ID: flour.ID, Amount: 200},
		{ID: egg.ID, Amount: 2},
	})
	recipeB := createRecipe(t, g, media, author, "bread", []IngredientAmount{
		{ID: flour.ID, Amount: 100},
	})

	_, err := relations.Add(RelationShoppingCart, buyer, recipeA.ID)
	require.NoError(t, err)
	_, err = relations.Add(RelationShoppingCart, buyer, recipeB.ID)
	require.NoError(t, err)

	items, err := s.BuildItems(buyer.ID)
	require.NoError(t, err)

	// sorted by name, amounts summed across recipes
	require.Len(t, items, 2)
	assert.Equal(t, ShoppingListItem{Name: "Egg", MeasurementUnit: "pcs", TotalAmount: 2}, items[0])
	assert.Equal(t, ShoppingListItem{Name: "Flour", MeasurementUnit: "g", TotalAmount: 300}, items[1])

	report, err := s.BuildReport(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Список покупок:\n\n1. Egg (pcs) — 2\n2. Flour (g) — 300\n", report)
}

func TestShoppingListGroupsByDisplayKey(t *testing.T) {
	g := testDB(t)
	media := testMedia(t)
	s := NewShopping(g, testLogger())
	relations := NewRelations(g, testLogger())

	author := createUser(t, g, "author")
	buyer := createUser(t, g, "buyer")
	// same name, different unit: two distinct display keys
	saltG := createIngredient(t, g, "Salt", "g")
	saltPinch := createIngredient(t, g, "Salt", "pinch")

	recipe := createRecipe(t, g, media, author, "stew", []IngredientAmount{
		{ID: saltG.ID, Amount: 10},
		{ID: saltPinch.ID, Amount: 2},
	})

	_, err := relations.Add(RelationShoppingCart, buyer, recipe.ID)
	require.NoError(t, err)

	items, err := s.BuildItems(buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Salt", items[0].Name)
	assert.Equal(t, "Salt", items[1].Name)
	assert.NotEqual(t, items[0].MeasurementUnit, items[1].MeasurementUnit)
}

func TestShoppingListEmptyCart(t *testing.T) {
	g := testDB(t)
	s := NewShopping(g, testLogger())

	buyer := createUser(t, g, "buyer")

	report, err := s.BuildReport(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Список покупок:\n\n", report)
}

func TestRenderShoppingList(t *testing.T) {
	assert.Equal(t, "Список покупок:\n\n", RenderShoppingList(nil))

	got := RenderShoppingList([]ShoppingListItem{
		{Name: "Мука", MeasurementUnit: "г", TotalAmount: 300},
		{Name: "Яйцо", MeasurementUnit: "шт", TotalAmount: 2},
	})
	assert.Equal(t, "Список покупок:\n\n1. Мука (г) — 300\n2. Яйцо (шт) — 2\n", got)
}
