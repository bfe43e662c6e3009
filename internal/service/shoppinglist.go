package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/model"
)

//go:embed templates/shopping_list.html
var shoppingListHTML string

var shoppingListTmpl = template.Must(template.New("shopping_list").Parse(shoppingListHTML))

// ShoppingListItem is one aggregated ingredient line: the summed amount of an
// ingredient across every recipe in the user's cart.
type ShoppingListItem struct {
	Name            string  `json:"name"`
	MeasurementUnit string  `json:"measurement_unit"`
	TotalAmount     float64 `json:"total_amount"`
}

// ShoppingListService computes grouped ingredient totals for a user's cart
// and renders the downloadable document.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate collects the recipes in the user's cart and the per-ingredient
// totals, grouped by (name, measurement unit) and ordered alphabetically.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uint) ([]ShoppingListItem, []model.Recipe, error) {
	cartRecipeIDs := s.db.Model(&model.UserRecipeRelation{}).
		Select("recipe_id").
		Where("user_id = ? AND kind = ?", userID, model.RelationShoppingCart)

	var recipes []model.Recipe
	err := s.db.WithContext(ctx).
		Where("id IN (?)", cartRecipeIDs).
		Order("name").
		Find(&recipes).Error
	if err != nil {
		return nil, nil, err
	}

	var items []ShoppingListItem
	err = s.db.WithContext(ctx).Model(&model.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN (?)", cartRecipeIDs).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, nil, err
	}

	return items, recipes, nil
}

// Render produces the downloadable HTML shopping list and its filename.
func (s *ShoppingListService) Render(ctx context.Context, userID uint) ([]byte, string, error) {
	items, recipes, err := s.Aggregate(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	data := struct {
		Items   []ShoppingListItem
		Recipes []model.Recipe
		Date    string
	}{
		Items:   items,
		Recipes: recipes,
		Date:    now.Format("02.01.2006"),
	}

	var buf bytes.Buffer
	if err := shoppingListTmpl.Execute(&buf, data); err != nil {
		return nil, "", fmt.Errorf("%w: failed to render shopping list: %v", model.ErrNotFound, err)
	}

	fileName := fmt.Sprintf("shopping_list_%d_%s.html", userID, now.Format("20060102_150405"))
	return buf.Bytes(), fileName, nil
}
