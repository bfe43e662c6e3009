package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-app/backend/internal/service"
)

// ShortLinkHandler resolves /s/:id short links to the canonical recipe path.
type ShortLinkHandler struct {
	recipeService *service.RecipeService
}

func NewShortLinkHandler(recipeService *service.RecipeService) *ShortLinkHandler {
	return &ShortLinkHandler{recipeService: recipeService}
}

func (h *ShortLinkHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/s/:id", h.Redirect)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
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
	c.Redirect(http.StatusFound, fmt.Sprintf("/recipes/%d", id))
}
