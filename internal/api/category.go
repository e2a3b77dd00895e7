package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"strings"  // String manipulation

	"ecommerce_backend/internal/domain" // Importing domain models
	"ecommerce_backend/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// CategoryRequest is the body of category create and update
type CategoryRequest struct {
	Name string `json:"name" binding:"required"` // Category name, slug is derived from it
}

// categoryListResponse is the cached body of GET /category/get-category
type categoryListResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Categories []domain.Category `json:"category"`
	Cached     bool              `json:"cached"`
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, utils.CodeValidation, name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// CreateCategoryHandler adds a category (admin)
func CreateCategoryHandler(db *gorm.DB, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
		name := strings.TrimSpace(req.Name)
		slug := utils.Slugify(name)
		if name == "" || slug == "" {
			fail(c, utils.CodeValidation, "name is required")
			return
		}
		tx := db.WithContext(c.Request.Context())
		// Duplicate names, or names that collapse to the same slug, are conflicts
		var existing int64
		if err := tx.Model(&domain.Category{}).Where("name = ? OR slug = ?", name, slug).Count(&existing).Error; err != nil {
			respondError(c, err)
			return
		}
		if existing > 0 {
			fail(c, utils.CodeConflict, "Category already exists")
			return
		}
		category := domain.Category{Name: name, Slug: slug}
		if err := tx.Create(&category).Error; err != nil {
			respondError(c, err) // Duplicate maps to 409
			return
		}
		cache.invalidate(c)
		logrus.WithFields(logrus.Fields{"category_id": category.ID, "slug": slug}).Info("category created")
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "New category created",
			"category": category,
		})
	}
}

// UpdateCategoryHandler renames a category and regenerates its slug (admin)
func UpdateCategoryHandler(db *gorm.DB, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
		name := strings.TrimSpace(req.Name)
		slug := utils.Slugify(name)
		if name == "" || slug == "" {
			fail(c, utils.CodeValidation, "name is required")
			return
		}
		tx := db.WithContext(c.Request.Context())
		var category domain.Category
		if err := tx.First(&category, id).Error; err != nil {
			respondError(c, err) // Not found maps to 404
			return
		}
		var clash int64
		if err := tx.Model(&domain.Category{}).Where("(name = ? OR slug = ?) AND id <> ?", name, slug, id).Count(&clash).Error; err != nil {
			respondError(c, err)
			return
		}
		if clash > 0 {
			fail(c, utils.CodeConflict, "Category already exists")
			return
		}
		if err := tx.Model(&category).Updates(map[string]any{"name": name, "slug": slug}).Error; err != nil {
			respondError(c, err)
			return
		}
		category.Name, category.Slug = name, slug
		cache.invalidate(c)
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Category updated successfully",
			"category": category,
		})
	}
}

// ListCategoriesHandler returns every category
func ListCategoriesHandler(db *gorm.DB, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const cacheKey = "categories"
		var cached categoryListResponse
		if cache.get(c, cacheKey, &cached) {
			cached.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, cached)
			return
		}
		var categories []domain.Category
		if err := db.WithContext(c.Request.Context()).Order("name ASC").Find(&categories).Error; err != nil {
			respondError(c, err)
			return
		}
		resp := categoryListResponse{Success: true, Message: "All categories list", Categories: categories}
		cache.set(c, cacheKey, resp)
		c.JSON(http.StatusOK, resp)
	}
}

// GetCategoryHandler returns one category by slug
func GetCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category domain.Category
		if err := db.WithContext(c.Request.Context()).Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Get single category successfully",
			"category": category,
		})
	}
}

// DeleteCategoryHandler removes a category that no product references (admin)
func DeleteCategoryHandler(db *gorm.DB, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var category domain.Category
			if err := tx.First(&category, id).Error; err != nil {
				return err
			}
			var products int64
			if err := tx.Model(&domain.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
				return err
			}
			if products > 0 {
				return errCategoryInUse
			}
			return tx.Delete(&category).Error
		})
		if errors.Is(err, errCategoryInUse) {
			fail(c, utils.CodeConflict, "Category still has products")
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		cache.invalidate(c)
		logrus.WithFields(logrus.Fields{"category_id": id}).Info("category deleted")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
	}
}

var errCategoryInUse = errors.New("category has products")
