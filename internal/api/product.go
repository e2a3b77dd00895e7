package api

import (
	"context"        // Request-scoped DB calls
	"errors"         // Error inspection
	"io"             // Reading uploads
	"mime/multipart" // Uploaded files
	"net/http"       // HTTP status codes
	"strconv"        // Form parsing
	"strings"        // String manipulation

	"ecommerce_backend/internal/domain"  // Importing domain models
	"ecommerce_backend/internal/storage" // Photo storage
	"ecommerce_backend/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact prices
	"github.com/sirupsen/logrus"    // Structured logging
	"gorm.io/gorm"                  // GORM ORM library
)

const (
	latestProductsLimit = 12 // Products returned by get-products
	productPageSize     = 6  // Products per page of product-list
	relatedLimit        = 3  // Products returned by related-product
)

// productForm is the parsed multipart body of product create and update
type productForm struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  uint
	Quantity    int
	Shipping    bool
	Photo       *storage.Photo // Nil when no photo was uploaded
}

// FilterRequest is the body of POST /product/product-filters
type FilterRequest struct {
	Checked []uint            `json:"checked"` // Category IDs, empty means any
	Radio   []decimal.Decimal `json:"radio"`   // Inclusive [min, max], empty means any
}

// productListResponse is the cached body of the product listings
type productListResponse struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page,omitempty"`
	TotalPages int64            `json:"total_pages,omitempty"`
	Products   []domain.Product `json:"products"`
	Cached     bool             `json:"cached"`
}

// productCountResponse is the cached body of GET /product/product-count
type productCountResponse struct {
	Success bool  `json:"success"`
	Total   int64 `json:"total"`
	Cached  bool  `json:"cached"`
}

// parseProductForm validates the multipart fields; it writes the failure itself
func parseProductForm(c *gin.Context) (*productForm, bool) {
	form := &productForm{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}
	// Required fields, reported in a fixed order
	for _, field := range []string{"name", "description", "price", "category", "quantity"} {
		if strings.TrimSpace(c.PostForm(field)) == "" {
			fail(c, utils.CodeValidation, field+" is required")
			return nil, false
		}
	}
	price, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("price")))
	if err != nil || price.IsNegative() {
		fail(c, utils.CodeValidation, "price must be a non-negative number")
		return nil, false
	}
	if !domain.ValidPrice(price) {
		fail(c, utils.CodeValidation, "price must have at most 2 decimal places and fewer than 11 integer digits")
		return nil, false
	}
	form.Price = price
	categoryID, err := strconv.ParseUint(strings.TrimSpace(c.PostForm("category")), 10, 64)
	if err != nil || categoryID == 0 {
		fail(c, utils.CodeValidation, "category must be a category id")
		return nil, false
	}
	form.CategoryID = uint(categoryID)
	quantity, err := strconv.Atoi(strings.TrimSpace(c.PostForm("quantity")))
	if err != nil || quantity < 0 {
		fail(c, utils.CodeValidation, "quantity must be a non-negative integer")
		return nil, false
	}
	form.Quantity = quantity
	if raw := strings.TrimSpace(c.PostForm("shipping")); raw != "" {
		shipping, err := strconv.ParseBool(raw)
		if err != nil {
			fail(c, utils.CodeValidation, "shipping must be true or false")
			return nil, false
		}
		form.Shipping = shipping
	}
	// Optional photo, capped at MaxPhotoSize
	file, err := c.FormFile("photo")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		fail(c, utils.CodeValidation, "photo could not be read")
		return nil, false
	}
	if file != nil {
		photo, ok := readPhoto(c, file)
		if !ok {
			return nil, false
		}
		form.Photo = photo
	}
	return form, true
}

// readPhoto loads an uploaded photo, rejecting files over the size cap
func readPhoto(c *gin.Context, file *multipart.FileHeader) (*storage.Photo, bool) {
	if file.Size > domain.MaxPhotoSize {
		fail(c, utils.CodeTooLarge, "photo must be at most 1MB")
		return nil, false
	}
	f, err := file.Open()
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, domain.MaxPhotoSize+1))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if len(data) > domain.MaxPhotoSize {
		fail(c, utils.CodeTooLarge, "photo must be at most 1MB")
		return nil, false
	}
	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data) // Sniff when the client did not say
	}
	return &storage.Photo{Data: data, ContentType: contentType}, true
}

// ensureCategory answers 400 when the referenced category does not exist
func ensureCategory(c *gin.Context, db *gorm.DB, id uint) bool {
	var count int64
	if err := db.WithContext(c.Request.Context()).Model(&domain.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		respondError(c, err)
		return false
	}
	if count == 0 {
		fail(c, utils.CodeValidation, "category does not exist")
		return false
	}
	return true
}

// CreateProductHandler adds a product from a multipart form (admin)
func CreateProductHandler(db *gorm.DB, photos storage.PhotoStore, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := parseProductForm(c)
		if !ok {
			return
		}
		if !ensureCategory(c, db, form.CategoryID) {
			return
		}
		product := domain.Product{
			Name:        form.Name,
			Slug:        utils.Slugify(form.Name),
			Description: form.Description,
			Price:       form.Price,
			Quantity:    form.Quantity,
			Shipping:    form.Shipping,
			CategoryID:  form.CategoryID,
			HasPhoto:    form.Photo != nil,
		}
		ctx := c.Request.Context()
		if err := db.WithContext(ctx).Create(&product).Error; err != nil {
			respondError(c, err)
			return
		}
		if form.Photo != nil {
			if err := photos.Put(ctx, product.ID, *form.Photo); err != nil {
				discardProduct(ctx, db, product.ID, err)
				respondError(c, err)
				return
			}
		}
		cache.invalidate(c)
		logrus.WithFields(logrus.Fields{"product_id": product.ID, "slug": product.Slug}).Info("product created")
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Product created successfully",
			"products": product,
		})
	}
}

// discardProduct removes a product whose photo could not be stored. If the delete
// fails too, the product is kept without its photo claim.
func discardProduct(ctx context.Context, db *gorm.DB, id uint, cause error) {
	log := logrus.WithFields(logrus.Fields{"product_id": id, "photo_error": cause})
	err := db.WithContext(ctx).Delete(&domain.Product{}, id).Error
	if err == nil {
		log.Warn("product discarded after photo upload failed")
		return
	}
	log = log.WithField("error", err)
	if uerr := db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Update("has_photo", false).Error; uerr != nil {
		log.WithField("update_error", uerr).Error("product left claiming a missing photo")
		return
	}
	log.Error("product kept without photo after failed discard")
}

// UpdateProductHandler replaces a product's fields and optionally its photo (admin)
func UpdateProductHandler(db *gorm.DB, photos storage.PhotoStore, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "pid")
		if !ok {
			return
		}
		form, ok := parseProductForm(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		var product domain.Product
		if err := db.WithContext(ctx).First(&product, id).Error; err != nil {
			respondError(c, err)
			return
		}
		if !ensureCategory(c, db, form.CategoryID) {
			return
		}
		if form.Photo != nil {
			if err := photos.Put(ctx, product.ID, *form.Photo); err != nil {
				respondError(c, err)
				return
			}
		}
		updates := map[string]any{
			"name":        form.Name,
			"slug":        utils.Slugify(form.Name),
			"description": form.Description,
			"price":       form.Price,
			"quantity":    form.Quantity,
			"shipping":    form.Shipping,
			"category_id": form.CategoryID,
			"has_photo":   product.HasPhoto || form.Photo != nil,
		}
		if err := db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
		if err := db.WithContext(ctx).First(&product, id).Error; err != nil {
			respondError(c, err)
			return
		}
		cache.invalidate(c)
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Product updated successfully",
			"products": product,
		})
	}
}

// ListProductsHandler returns the newest products, without photos
func ListProductsHandler(db *gorm.DB, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const cacheKey = "products:latest"
		var cached productListResponse
		if cache.get(c, cacheKey, &cached) {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		var products []domain.Product
		err := db.WithContext(c.Request.Context()).Preload("Category").
			Order("created_at DESC").Order("id DESC").
			Limit(latestProductsLimit).Find(&products).Error
		if err != nil {
			respondError(c, err)
			return
		}
		resp := productListResponse{
			Success:    true,
			Message:    "All products",
			TotalCount: int64(len(products)),
			Products:   products,
		}
		cache.set(c, cacheKey, resp)
		c.JSON(http.StatusOK, resp)
	}
}

// GetProductHandler returns one product by slug
func GetProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product domain.Product
		err := db.WithContext(c.Request.Context()).Preload("Category").
			Where("slug = ?", c.Param("slug")).First(&product).Error
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Single product fetched",
			"product": product,
		})
	}
}

// ProductPhotoHandler streams a product's photo with its stored content type
func ProductPhotoHandler(photos storage.PhotoStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "pid")
		if !ok {
			return
		}
		photo, err := photos.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err) // Missing photo maps to 404
			return
		}
		c.Data(http.StatusOK, photo.ContentType, photo.Data)
	}
}

// DeleteProductHandler removes a product and its photo (admin)
func DeleteProductHandler(db *gorm.DB, photos storage.PhotoStore, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "pid")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		res := db.WithContext(ctx).Delete(&domain.Product{}, id)
		if res.Error != nil {
			respondError(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			fail(c, utils.CodeNotFound, "Product not found")
			return
		}
		if err := photos.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrPhotoNotFound) {
			// The product is gone; a stray photo is only wasted space
			logrus.WithFields(logrus.Fields{"product_id": id, "error": err}).Warn("failed to delete product photo")
		}
		cache.invalidate(c)
		logrus.WithFields(logrus.Fields{"product_id": id}).Info("product deleted")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
	}
}

// FilterProductsHandler returns products matching a category set and an inclusive price range
func FilterProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FilterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
		if len(req.Radio) != 0 && len(req.Radio) != 2 {
			fail(c, utils.CodeValidation, "radio must be [min, max]")
			return
		}
		query := db.WithContext(c.Request.Context()).Model(&domain.Product{}).Preload("Category")
		if len(req.Checked) > 0 {
			query = query.Where("category_id IN ?", req.Checked) // Any of the checked categories
		}
		if len(req.Radio) == 2 {
			lo, hi := req.Radio[0], req.Radio[1]
			if lo.GreaterThan(hi) {
				lo, hi = hi, lo
			}
			query = query.Where("price >= ? AND price <= ?", lo, hi) // Both bounds inclusive
		}
		var products []domain.Product
		if err := query.Order("created_at DESC").Order("id DESC").Find(&products).Error; err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
	}
}

// ProductCountHandler returns the number of products
func ProductCountHandler(db *gorm.DB, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const cacheKey = "products:count"
		var cached productCountResponse
		if cache.get(c, cacheKey, &cached) {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		var total int64
		if err := db.WithContext(c.Request.Context()).Model(&domain.Product{}).Count(&total).Error; err != nil {
			respondError(c, err)
			return
		}
		resp := productCountResponse{Success: true, Total: total}
		cache.set(c, cacheKey, resp)
		c.JSON(http.StatusOK, resp)
	}
}

// ProductPageHandler returns one page of products, newest first
func ProductPageHandler(db *gorm.DB, cache listingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c.Param("page"), productPageSize) // Values below 1 become page 1
		cacheKey := "products:page=" + strconv.Itoa(page.Number)
		var cached productListResponse
		if cache.get(c, cacheKey, &cached) {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		tx := db.WithContext(c.Request.Context())
		var total int64
		if err := tx.Model(&domain.Product{}).Count(&total).Error; err != nil {
			respondError(c, err)
			return
		}
		var products []domain.Product
		err := tx.Preload("Category").Order("created_at DESC").Order("id DESC").
			Offset(page.Offset()).Limit(page.Size).Find(&products).Error
		if err != nil {
			respondError(c, err)
			return
		}
		resp := productListResponse{
			Success:    true,
			TotalCount: total,
			Page:       page.Number,
			TotalPages: utils.TotalPages(total, page.Size),
			Products:   products,
		}
		cache.set(c, cacheKey, resp)
		c.JSON(http.StatusOK, resp)
	}
}

// likeEscaper makes LIKE wildcards in user input literal, using ! as the escape character
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// searchCondition is the case-insensitive match on name or description for a dialect.
// Postgres gets ILIKE. Elsewhere both sides are lower-cased; SQLite's LOWER only
// folds ASCII, so non-ASCII letters match case-sensitively there.
func searchCondition(dialect string) string {
	if dialect == "postgres" {
		return "name ILIKE ? ESCAPE '!' OR description ILIKE ? ESCAPE '!'"
	}
	return "LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'"
}

// SearchProductsHandler matches the keyword against name or description, ignoring case
func SearchProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		keyword := strings.TrimSpace(c.Param("keyword"))
		if keyword == "" {
			fail(c, utils.CodeValidation, "keyword is required")
			return
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
		var products []domain.Product
		err := db.WithContext(c.Request.Context()).Preload("Category").
			Where(searchCondition(db.Dialector.Name()), pattern, pattern).
			Order("created_at DESC").Order("id DESC").Find(&products).Error
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
	}
}

// RelatedProductsHandler returns other products from the same category
func RelatedProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, ok := parseID(c, "pid")
		if !ok {
			return
		}
		cid, ok := parseID(c, "cid")
		if !ok {
			return
		}
		var products []domain.Product
		err := db.WithContext(c.Request.Context()).Preload("Category").
			Where("category_id = ? AND id <> ?", cid, pid).
			Order("created_at DESC").Order("id DESC").
			Limit(relatedLimit).Find(&products).Error
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
	}
}

// CategoryProductsHandler returns a category and its products
func CategoryProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx := db.WithContext(c.Request.Context())
		var category domain.Category
		if err := tx.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
			respondError(c, err)
			return
		}
		var products []domain.Product
		err := tx.Preload("Category").Where("category_id = ?", category.ID).
			Order("created_at DESC").Order("id DESC").Find(&products).Error
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"category": category,
			"products": products,
		})
	}
}
