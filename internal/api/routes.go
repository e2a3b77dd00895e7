package api

import (
	"net/http" // HTTP status codes

	"ecommerce_backend/internal/checkout"   // Checkout orchestration
	"ecommerce_backend/internal/metrics"    // Prometheus collectors
	"ecommerce_backend/internal/middleware" // Guards
	"ecommerce_backend/internal/payment"    // Payment gateway
	"ecommerce_backend/internal/storage"    // Photo storage

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the long-lived collaborators the handlers share
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client // Optional, disables listing cache when nil
	Photos    storage.PhotoStore
	Gateway   payment.Gateway
	Checkout  *checkout.Service
	Metrics   *metrics.Metrics // Optional, disables /metrics when nil
	JWTSecret string
}

// RegisterRoutes mounts every endpoint on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	cache := listingCache{rdb: d.Redis, metrics: d.Metrics}
	signIn := middleware.RequireSignIn(d.JWTSecret) // Identity token required
	admin := middleware.RequireAdmin(d.DB)          // Administrator role required

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1")

	// Auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", RegisterHandler(d.DB))
	auth.POST("/login", LoginHandler(d.DB, d.JWTSecret))
	auth.POST("/forgot-password", ForgotPasswordHandler(d.DB))
	auth.GET("/user-auth", signIn, AuthCheckHandler())
	auth.GET("/admin-auth", signIn, admin, AuthCheckHandler())
	auth.PUT("/profile", signIn, UpdateProfileHandler(d.DB))
	auth.GET("/orders", signIn, MyOrdersHandler(d.DB))
	auth.GET("/all-orders", signIn, admin, AllOrdersHandler(d.DB))
	auth.PUT("/order-status/:orderId", signIn, admin, OrderStatusHandler(d.DB))

	// Category routes, reads are public
	category := v1.Group("/category")
	category.POST("/create-category", signIn, admin, CreateCategoryHandler(d.DB, cache))
	category.PUT("/update-category/:id", signIn, admin, UpdateCategoryHandler(d.DB, cache))
	category.GET("/get-category", ListCategoriesHandler(d.DB, cache))
	category.GET("/single-category/:slug", GetCategoryHandler(d.DB))
	category.DELETE("/delete-category/:id", signIn, admin, DeleteCategoryHandler(d.DB, cache))

	// Product routes
	product := v1.Group("/product")
	product.POST("/create-product", signIn, admin, CreateProductHandler(d.DB, d.Photos, cache))
	product.PUT("/update-product/:pid", signIn, admin, UpdateProductHandler(d.DB, d.Photos, cache))
	product.GET("/get-products", ListProductsHandler(d.DB, cache))
	product.GET("/single-product/:slug", GetProductHandler(d.DB))
	product.GET("/product-photo/:pid", ProductPhotoHandler(d.Photos))
	product.DELETE("/delete-product/:pid", signIn, admin, DeleteProductHandler(d.DB, d.Photos, cache))
	product.POST("/product-filters", FilterProductsHandler(d.DB))
	product.GET("/product-count", ProductCountHandler(d.DB, cache))
	product.GET("/product-list/:page", ProductPageHandler(d.DB, cache))
	product.GET("/search/:keyword", SearchProductsHandler(d.DB))
	product.GET("/related-product/:pid/:cid", RelatedProductsHandler(d.DB))
	product.GET("/product-category/:slug", CategoryProductsHandler(d.DB))

	// Payment routes
	product.GET("/braintree/token", ClientTokenHandler(d.Gateway))
	product.POST("/braintree/payment", signIn, PaymentHandler(d.Checkout))
}
