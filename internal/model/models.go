package model

import (
	"time"
)

// Relation kinds stored in the user_recipe_relations kind column.
const (
	RelationFavorite     = "favorite"
	RelationShoppingCart = "shopping_cart"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	FirstName    string    `gorm:"size:150;not null" json:"first_name"`
	LastName     string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	AvatarURL    string    `gorm:"size:255" json:"avatar"`

	Recipes []Recipe `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Slug string `gorm:"size:64;not null;uniqueIndex" json:"slug"`
}

type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:128;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

type Recipe struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	ImageURL    string    `gorm:"size:255" json:"image"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	CookingTime int       `gorm:"not null" json:"cooking_time"`

	Author            User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Tags              []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"-"`
	RecipeIngredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// RecipeIngredient links a recipe to an ingredient with an amount.
type RecipeIngredient struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	RecipeID     uint    `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint    `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       float64 `gorm:"not null" json:"amount"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserRecipeRelation is the single table behind both the favorite and the
// shopping-cart toggles; Kind selects which relation a row belongs to.
type UserRecipeRelation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_recipe_kind" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_user_recipe_kind" json:"recipe_id"`
	Kind      string    `gorm:"size:32;not null;uniqueIndex:idx_user_recipe_kind" json:"kind"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (UserRecipeRelation) TableName() string {
	return "user_recipe_relations"
}

// Subscription records that UserID follows AuthorID.
type Subscription struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_user_author" json:"author_id"`

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}
