package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/model"
)

// RecipeService handles recipe CRUD and the favorite / shopping-cart toggles.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientAmount is one {id, amount} pair from the write shape.
type IngredientAmount struct {
	IngredientID uint
	Amount       float64
}

// RecipeInput is the validated write shape for create and update.
type RecipeInput struct {
	Name        string
	Text        string
	ImageURL    string
	CookingTime int
	Ingredients []IngredientAmount
	TagIDs      []uint
}

// RecipeFilter selects recipes for listing.
type RecipeFilter struct {
	// UserID is the acting identity; 0 means anonymous, which turns the
	// Favorited and InCart filters into no-ops.
	UserID    uint
	AuthorID  uint
	TagSlugs  []string
	Favorited *bool
	InCart    *bool
	Page      int
	Limit     int
}

// Get retrieves a recipe with its tags, ingredients and author.
func (s *RecipeService) Get(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("RecipeIngredients.Ingredient").
		Preload("Author").
		First(&recipe, "recipes.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe id=%d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return &recipe, nil
}

// Exists reports whether a recipe id is known. Used by the short-link lookup.
func (s *RecipeService) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns a page of recipes matching the filter plus the total count.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter) ([]model.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Recipe{})

	if f.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		query = query.Where("recipes.id IN (?)", s.db.
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.Favorited != nil && f.UserID != 0 {
		query = s.relationFilter(query, f.UserID, model.RelationFavorite, *f.Favorited)
	}
	if f.InCart != nil && f.UserID != 0 {
		query = s.relationFilter(query, f.UserID, model.RelationShoppingCart, *f.InCart)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		offset := 0
		if f.Page > 1 {
			offset = (f.Page - 1) * f.Limit
		}
		query = query.Offset(offset).Limit(f.Limit)
	}

	var recipes []model.Recipe
	err := query.
		Preload("Tags").
		Preload("RecipeIngredients.Ingredient").
		Preload("Author").
		Order("recipes.created_at DESC, recipes.id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

func (s *RecipeService) relationFilter(query *gorm.DB, userID uint, kind string, want bool) *gorm.DB {
	sub := s.db.Model(&model.UserRecipeRelation{}).
		Select("recipe_id").
		Where("user_id = ? AND kind = ?", userID, kind)
	if want {
		return query.Where("recipes.id IN (?)", sub)
	}
	return query.Where("recipes.id NOT IN (?)", sub)
}

// Create validates the input and stores the recipe with its ingredient rows
// and tag links in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uint, input RecipeInput) (*model.Recipe, error) {
	if err := s.validateInput(ctx, &input); err != nil {
		return nil, err
	}

	recipe := model.Recipe{
		Name:        input.Name,
		Text:        input.Text,
		ImageURL:    input.ImageURL,
		AuthorID:    authorID,
		CookingTime: input.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := s.replaceAssociations(tx, &recipe, input); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe's fields and its entire ingredient and tag sets
// atomically. Only the author may update.
func (s *RecipeService) Update(ctx context.Context, id, actorID uint, input RecipeInput) (*model.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, fmt.Errorf("%w: only the author may edit this recipe", model.ErrForbidden)
	}
	if err := s.validateInput(ctx, &input); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         input.Name,
			"text":         input.Text,
			"cooking_time": input.CookingTime,
		}
		if input.ImageURL != "" {
			updates["image_url"] = input.ImageURL
		}
		if err := tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return s.replaceAssociations(tx, recipe, input)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a recipe together with its ingredient rows and relation
// rows. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, id, actorID uint) error {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != actorID {
		return fmt.Errorf("%w: only the author may delete this recipe", model.ErrForbidden)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.UserRecipeRelation{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&model.Recipe{}, "id = ?", id).Error
	})
}

// AddRelation adds a favorite or shopping-cart row and returns the recipe
// for the reduced projection. A duplicate add is a conflict.
func (s *RecipeService) AddRelation(ctx context.Context, userID, recipeID uint, kind string) (*model.Recipe, error) {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.HasRelation(ctx, userID, recipeID, kind)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: recipe %q is already in %s", model.ErrConflict, recipe.Name, kind)
	}

	relation := model.UserRecipeRelation{
		UserID:   userID,
		RecipeID: recipeID,
		Kind:     kind,
	}
	if err := s.db.WithContext(ctx).Create(&relation).Error; err != nil {
		// A concurrent duplicate insert loses on the unique constraint.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: recipe %q is already in %s", model.ErrConflict, recipe.Name, kind)
		}
		return nil, err
	}
	return recipe, nil
}

// RemoveRelation deletes a favorite or shopping-cart row. Removing an absent
// relation is a not-found error.
func (s *RecipeService) RemoveRelation(ctx context.Context, userID, recipeID uint, kind string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Delete(&model.UserRecipeRelation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: recipe id=%d is not in %s", model.ErrNotFound, recipeID, kind)
	}
	return nil
}

// RelationRecipeIDs returns the set of recipe ids the user has a relation of
// the given kind to. Empty for anonymous callers.
func (s *RecipeService) RelationRecipeIDs(ctx context.Context, userID uint, kind string) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if userID == 0 {
		return set, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(&model.UserRecipeRelation{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// HasRelation reports whether the relation row exists. Anonymous callers
// (userID 0) never have relations.
func (s *RecipeService) HasRelation(ctx context.Context, userID, recipeID uint, kind string) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserRecipeRelation{}).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *RecipeService) validateInput(ctx context.Context, input *RecipeInput) error {
	if input.Name == "" || input.Text == "" {
		return fmt.Errorf("%w: name and text are required", model.ErrInvalidInput)
	}
	if err := model.ValidateCookingTime(input.CookingTime); err != nil {
		return err
	}
	if len(input.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", model.ErrInvalidInput)
	}
	if len(input.TagIDs) == 0 {
		return fmt.Errorf("%w: at least one tag is required", model.ErrInvalidInput)
	}

	seen := make(map[uint]bool, len(input.Ingredients))
	ids := make([]uint, 0, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		if seen[ing.IngredientID] {
			return fmt.Errorf("%w: duplicate ingredient id=%d", model.ErrInvalidInput, ing.IngredientID)
		}
		seen[ing.IngredientID] = true
		ids = append(ids, ing.IngredientID)
		if err := model.ValidateIngredientAmount(ing.Amount); err != nil {
			return err
		}
	}

	var ingredientCount int64
	if err := s.db.WithContext(ctx).Model(&model.Ingredient{}).Where("id IN ?", ids).Count(&ingredientCount).Error; err != nil {
		return err
	}
	if ingredientCount != int64(len(ids)) {
		return fmt.Errorf("%w: unknown ingredient id", model.ErrInvalidInput)
	}

	var tagCount int64
	if err := s.db.WithContext(ctx).Model(&model.Tag{}).Where("id IN ?", input.TagIDs).Count(&tagCount).Error; err != nil {
		return err
	}
	if tagCount != int64(len(input.TagIDs)) {
		return fmt.Errorf("%w: unknown tag id", model.ErrInvalidInput)
	}
	return nil
}

func (s *RecipeService) replaceAssociations(tx *gorm.DB, recipe *model.Recipe, input RecipeInput) error {
	rows := make([]model.RecipeIngredient, 0, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		rows = append(rows, model.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ing.IngredientID,
			Amount:       ing.Amount,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return err
	}

	var tags []model.Tag
	if err := tx.Where("id IN ?", input.TagIDs).Find(&tags).Error; err != nil {
		return err
	}
	return tx.Model(recipe).Association("Tags").Replace(&tags)
}
