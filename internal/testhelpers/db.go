package testhelpers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram-app/backend/internal/model"
)

// TestPassword is the known password used for every fixture user.
const TestPassword = "testpassword123"

// SetupTestDB opens an in-memory sqlite database and migrates the schema.
// The pool is pinned to a single connection so every query sees the same
// in-memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.User{},
		&model.Tag{},
		&model.Ingredient{},
		&model.Recipe{},
		&model.RecipeIngredient{},
		&model.UserRecipeRelation{},
		&model.Subscription{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateTestUser inserts a user with a bcrypt-hashed TestPassword. The
// username also seeds the email and names so fixtures stay distinguishable.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := model.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hashed),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// CreateTestIngredient inserts an ingredient fixture.
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *model.Ingredient {
	t.Helper()

	ingredient := model.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return &ingredient
}

// CreateTestTag inserts a tag fixture.
func CreateTestTag(t *testing.T, db *gorm.DB, name, slug string) *model.Tag {
	t.Helper()

	tag := model.Tag{Name: name, Slug: slug}
	require.NoError(t, db.Create(&tag).Error)
	return &tag
}

// CreateTestRecipe inserts a recipe with the given ingredient amounts and
// tags, wiring the join rows directly.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *model.User, name string, amounts map[uint]float64, tags ...*model.Tag) *model.Recipe {
	t.Helper()

	recipe := model.Recipe{
		Name:        name,
		Text:        fmt.Sprintf("How to cook %s", name),
		AuthorID:    author.ID,
		CookingTime: 30,
	}
	require.NoError(t, db.Create(&recipe).Error)

	for ingredientID, amount := range amounts {
		row := model.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredientID,
			Amount:       amount,
		}
		require.NoError(t, db.Create(&row).Error)
	}
	for _, tag := range tags {
		require.NoError(t, db.Model(&recipe).Association("Tags").Append(tag))
	}
	return &recipe
}

// AddRelation inserts a favorite or shopping-cart row directly.
func AddRelation(t *testing.T, db *gorm.DB, user *model.User, recipe *model.Recipe, kind string) {
	t.Helper()

	rel := model.UserRecipeRelation{UserID: user.ID, RecipeID: recipe.ID, Kind: kind}
	require.NoError(t, db.Create(&rel).Error)
}
