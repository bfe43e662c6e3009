package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/model"
	"github.com/foodgram-app/backend/internal/service"
)

type UserHandler struct {
	userService  *service.UserService
	imageService *service.ImageService
	validator    middleware.TokenValidator
}

func NewUserHandler(userService *service.UserService, imageService *service.ImageService, validator middleware.TokenValidator) *UserHandler {
	return &UserHandler{
		userService:  userService,
		imageService: imageService,
		validator:    validator,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuthMiddleware(h.validator)
	required := middleware.AuthMiddleware(h.validator)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.GET("/me", required, h.Me)
		users.GET("/subscriptions", required, h.Subscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
		users.PUT("/me/avatar", required, h.SetAvatar)
		users.DELETE("/me/avatar", required, h.ClearAvatar)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	users, count, err := h.userService.List(c.Request.Context(), intQuery(c, "page", 1), pageLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed, err := h.userService.SubscribedAuthorIDs(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]UserResponse, 0, len(users))
	for i := range users {
		results = append(results, newUserResponse(&users[i], subscribed[users[i].ID]))
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   count,
		"results": results,
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	isSubscribed, err := h.userService.IsSubscribed(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, isSubscribed))
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, false))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	authorID, ok := pathID(c)
	if !ok {
		return
	}

	author, err := h.userService.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.userWithRecipes(c, author, true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	authorID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	authors, count, err := h.userService.Subscriptions(c.Request.Context(), userID, intQuery(c, "page", 1), pageLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]UserWithRecipesResponse, 0, len(authors))
	for i := range authors {
		resp, err := h.userWithRecipes(c, &authors[i], true)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, resp)
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   count,
		"results": results,
	})
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.CurrentUserID(c)
	url, err := h.imageService.SaveBase64(c.Request.Context(), req.Avatar, "users")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.userService.SetAvatar(c.Request.Context(), userID, url); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) ClearAvatar(c *gin.Context) {
	if err := h.userService.ClearAvatar(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// userWithRecipes builds the user-with-recipes projection, truncating the
// embedded recipe list by the recipes_limit query parameter.
func (h *UserHandler) userWithRecipes(c *gin.Context, author *model.User, isSubscribed bool) (UserWithRecipesResponse, error) {
	limit := intQuery(c, "recipes_limit", 0)

	recipes, count, err := h.userService.RecipesByAuthor(c.Request.Context(), author.ID, limit)
	if err != nil {
		return UserWithRecipesResponse{}, err
	}

	short := make([]RecipeShortResponse, 0, len(recipes))
	for i := range recipes {
		short = append(short, newRecipeShortResponse(&recipes[i]))
	}
	return UserWithRecipesResponse{
		UserResponse: newUserResponse(author, isSubscribed),
		Recipes:      short,
		RecipesCount: count,
	}, nil
}
