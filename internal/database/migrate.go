package database

import (
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/model"
)

// AutoMigrate creates or updates the schema for all domain entities.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Tag{},
		&model.Ingredient{},
		&model.Recipe{},
		&model.RecipeIngredient{},
		&model.UserRecipeRelation{},
		&model.Subscription{},
	)
}
