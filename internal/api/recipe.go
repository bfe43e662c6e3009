package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/model"
	"github.com/foodgram-app/backend/internal/service"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type RecipeHandler struct {
	recipeService   *service.RecipeService
	userService     *service.UserService
	shoppingService *service.ShoppingListService
	imageService    *service.ImageService
	validator       middleware.TokenValidator
	limiter         gin.HandlerFunc
	baseURL         string
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	userService *service.UserService,
	shoppingService *service.ShoppingListService,
	imageService *service.ImageService,
	validator middleware.TokenValidator,
	limiter gin.HandlerFunc,
	baseURL string,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		userService:     userService,
		shoppingService: shoppingService,
		imageService:    imageService,
		validator:       validator,
		limiter:         limiter,
		baseURL:         baseURL,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuthMiddleware(h.validator)
	required := middleware.AuthMiddleware(h.validator)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.GET("/:id/get-link", h.GetShortLink)

		recipes.POST("", h.write(h.CreateRecipe)...)
		recipes.PATCH("/:id", h.write(h.UpdateRecipe)...)
		recipes.DELETE("/:id", h.write(h.DeleteRecipe)...)

		recipes.POST("/:id/favorite", h.write(h.relationAdd(model.RelationFavorite))...)
		recipes.DELETE("/:id/favorite", h.write(h.relationRemove(model.RelationFavorite))...)
		recipes.POST("/:id/shopping_cart", h.write(h.relationAdd(model.RelationShoppingCart))...)
		recipes.DELETE("/:id/shopping_cart", h.write(h.relationRemove(model.RelationShoppingCart))...)
	}
}

// write prepends auth (and the rate limiter, when present) to a handler.
func (h *RecipeHandler) write(handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{middleware.AuthMiddleware(h.validator)}
	if h.limiter != nil {
		chain = append(chain, h.limiter)
	}
	return append(chain, handler)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	filter := service.RecipeFilter{
		UserID:    userID,
		TagSlugs:  c.QueryArray("tags"),
		Favorited: boolQuery(c, "is_favorited"),
		InCart:    boolQuery(c, "is_in_shopping_cart"),
		Page:      intQuery(c, "page", 1),
		Limit:     pageLimit(c),
	}
	if author := c.Query("author"); author != "" {
		id, err := strconv.ParseUint(author, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = uint(id)
	}

	recipes, count, err := h.recipeService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	favs, err := h.recipeService.RelationRecipeIDs(c.Request.Context(), userID, model.RelationFavorite)
	if err != nil {
		respondError(c, err)
		return
	}
	cart, err := h.recipeService.RelationRecipeIDs(c.Request.Context(), userID, model.RelationShoppingCart)
	if err != nil {
		respondError(c, err)
		return
	}
	subscribed, err := h.userService.SubscribedAuthorIDs(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		results = append(results, newRecipeResponse(r, subscribed[r.AuthorID], favs[r.ID], cart[r.ID]))
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   count,
		"results": results,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.recipeResponse(c, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	input, ok := h.bindRecipeInput(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, *input)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.recipeResponse(c, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	input, ok := h.bindRecipeInput(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), id, userID, *input)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.recipeResponse(c, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) relationAdd(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)
		id, ok := pathID(c)
		if !ok {
			return
		}

		recipe, err := h.recipeService.AddRelation(c.Request.Context(), userID, id, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, newRecipeShortResponse(recipe))
	}
}

func (h *RecipeHandler) relationRemove(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)
		id, ok := pathID(c)
		if !ok {
			return
		}

		if err := h.recipeService.RemoveRelation(c.Request.Context(), userID, id, kind); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) GetShortLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	exists, err := h.recipeService.Exists(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("recipe id=%d not found", id)})
		return
	}

	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	c.JSON(http.StatusOK, gin.H{"short-link": fmt.Sprintf("%s/s/%d", base, id)})
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	doc, fileName, err := h.shoppingService.Render(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}

func (h *RecipeHandler) bindRecipeInput(c *gin.Context) (*service.RecipeInput, bool) {
	var req RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	input := service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
	}
	for _, ing := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, service.IngredientAmount{
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		})
	}

	if req.Image != "" {
		url, err := h.imageService.SaveBase64(c.Request.Context(), req.Image, "recipes")
		if err != nil {
			respondError(c, err)
			return nil, false
		}
		input.ImageURL = url
	}
	return &input, true
}

// recipeResponse assembles the full read shape for the acting identity.
func (h *RecipeHandler) recipeResponse(c *gin.Context, recipe *model.Recipe) (RecipeResponse, error) {
	userID := middleware.CurrentUserID(c)
	ctx := c.Request.Context()

	isSubscribed, err := h.userService.IsSubscribed(ctx, userID, recipe.AuthorID)
	if err != nil {
		return RecipeResponse{}, err
	}
	isFavorited, err := h.recipeService.HasRelation(ctx, userID, recipe.ID, model.RelationFavorite)
	if err != nil {
		return RecipeResponse{}, err
	}
	inCart, err := h.recipeService.HasRelation(ctx, userID, recipe.ID, model.RelationShoppingCart)
	if err != nil {
		return RecipeResponse{}, err
	}
	return newRecipeResponse(recipe, isSubscribed, isFavorited, inCart), nil
}

// pathID parses the :id segment; unknown or malformed ids are not found.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

func boolQuery(c *gin.Context, name string) *bool {
	switch c.Query(name) {
	case "1", "true", "True":
		v := true
		return &v
	case "0", "false", "False":
		v := false
		return &v
	}
	return nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func pageLimit(c *gin.Context) int {
	limit := intQuery(c, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit
}
