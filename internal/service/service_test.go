package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smizereens/foodgram-st/internal/config"
	"github.com/smizereens/foodgram-st/internal/db"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	g, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(g))
	return g
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func testMedia(t *testing.T) *Media {
	t.Helper()

	media, err := NewMedia(&config.Config{MediaDir: t.TempDir()}, testLogger())
	require.NoError(t, err)
	return media
}

func testDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png bytes"))
}

func createUser(t *testing.T, g *gorm.DB, username string) *db.User {
	t.Helper()

	user := db.User{
		Email:    username + "@example.com",
		Username: username,
		Password: "hash",
	}
	require.NoError(t, g.Create(&user).Error)
	return &user
}

func createIngredient(t *testing.T, g *gorm.DB, name, unit string) *db.Ingredient {
	t.Helper()

	ingredient := db.Ingredient{
		Name:            name,
		MeasurementUnit: unit,
	}
	require.NoError(t, g.Create(&ingredient).Error)
	return &ingredient
}

func createTag(t *testing.T, g *gorm.DB, slug string) *db.Tag {
	t.Helper()

	tag := db.Tag{
		Name: slug,
		Slug: slug,
	}
	require.NoError(t, g.Create(&tag).Error)
	return &tag
}

func createRecipe(t *testing.T, g *gorm.DB, media *Media, author *db.User, name string, items []IngredientAmount) *db.Recipe {
	t.Helper()

	recipes := NewRecipes(g, media, testLogger())
	recipe, err := recipes.Create(author, RecipeInput{
		Name:        name,
		Text:        "text",
		CookingTime: 10,
		Image:       testDataURI(),
		Ingredients: items,
	})
	require.NoError(t, err)
	return recipe
}
