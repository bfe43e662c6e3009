package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/model"
)

// TagHandler serves the read-only tag endpoints. No pagination: the tag set
// is small.
type TagHandler struct {
	db *gorm.DB
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&model.Tag{})

	if search := c.Query("search"); search != "" {
		if h.db.Dialector.Name() == "postgres" {
			query = query.Where("name ILIKE ?", "%"+search+"%")
		} else {
			query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
	}

	var tags []model.Tag
	if err := query.Order("name").Find(&tags).Error; err != nil {
		respondError(c, err)
		return
	}

	results := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		results = append(results, newTagResponse(t))
	}
	c.JSON(http.StatusOK, results)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var tag model.Tag
	if err := h.db.WithContext(c.Request.Context()).First(&tag, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
		return
	}
	c.JSON(http.StatusOK, newTagResponse(tag))
}
