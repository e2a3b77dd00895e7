package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"ecommerce_backend/internal/domain"     // Importing domain models
	"ecommerce_backend/internal/middleware" // Authenticated user ID
	"ecommerce_backend/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// OrderStatusRequest is the body of PUT /auth/order-status/:orderId
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"` // One of domain.OrderStatuses
}

// preloadBuyer loads only the buyer's id and name with each order
func preloadBuyer(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

// MyOrdersHandler returns the signed-in user's orders, newest first
func MyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			fail(c, utils.CodeUnauthorized, "Unauthorized")
			return
		}
		var orders []domain.Order
		err := db.WithContext(c.Request.Context()).Preload("Buyer", preloadBuyer).
			Where("buyer_id = ?", userID).
			Order("created_at DESC").Order("id DESC").Find(&orders).Error
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
	}
}

// AllOrdersHandler returns every order for administrators, with optional status filter and pagination
func AllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v
			}
		}
		query := db.WithContext(c.Request.Context()).Model(&domain.Order{})
		if status := c.Query("status"); status != "" {
			if !domain.ValidOrderStatus(status) {
				fail(c, utils.CodeValidation, "status is not a valid order status")
				return
			}
			query = query.Where("status = ?", status) // Filter by status
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			respondError(c, err)
			return
		}
		var orders []domain.Order
		err := query.Preload("Buyer", preloadBuyer).
			Order("created_at DESC").Order("id DESC").
			Offset((page - 1) * pageSize).Limit(pageSize).Find(&orders).Error
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"orders":      orders,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": utils.TotalPages(total, pageSize),
		})
	}
}

// OrderStatusHandler moves an order to a new fulfilment status (admin)
func OrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "orderId")
		if !ok {
			return
		}
		var req OrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
		if !domain.ValidOrderStatus(req.Status) {
			fail(c, utils.CodeValidation, "status is not a valid order status")
			return
		}
		tx := db.WithContext(c.Request.Context())
		var order domain.Order
		if err := tx.First(&order, id).Error; err != nil {
			respondError(c, err)
			return
		}
		if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"order_id": id,
			"from":     order.Status,
			"to":       req.Status,
		}).Info("order status changed")
		order.Status = req.Status
		c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
	}
}
