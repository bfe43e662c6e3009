package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/model"
)

// IngredientHandler serves the read-only ingredient endpoints with
// case-insensitive name prefix search. No pagination.
type IngredientHandler struct {
	db *gorm.DB
}

func NewIngredientHandler(db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{db: db}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&model.Ingredient{})

	if name := c.Query("name"); name != "" {
		// ILIKE folds case for any alphabet; the sqlite fallback folds
		// ASCII only.
		if h.db.Dialector.Name() == "postgres" {
			query = query.Where("name ILIKE ?", name+"%")
		} else {
			query = query.Where("LOWER(name) LIKE ?", strings.ToLower(name)+"%")
		}
	}

	var ingredients []model.Ingredient
	if err := query.Order("name").Find(&ingredients).Error; err != nil {
		respondError(c, err)
		return
	}

	results := make([]IngredientResponse, 0, len(ingredients))
	for _, ing := range ingredients {
		results = append(results, newIngredientResponse(ing))
	}
	c.JSON(http.StatusOK, results)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var ingredient model.Ingredient
	if err := h.db.WithContext(c.Request.Context()).First(&ingredient, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ingredient not found"})
		return
	}
	c.JSON(http.StatusOK, newIngredientResponse(ingredient))
}
