package api

import (
	"net/http" // HTTP status codes

	"ecommerce_backend/internal/checkout"   // Checkout orchestration
	"ecommerce_backend/internal/domain"     // Importing domain models
	"ecommerce_backend/internal/middleware" // Authenticated user ID
	"ecommerce_backend/internal/payment"    // Payment gateway
	"ecommerce_backend/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// PaymentRequest is the body of POST /product/braintree/payment
type PaymentRequest struct {
	Nonce string            `json:"nonce"` // Payment method nonce from the client SDK
	Cart  []domain.CartItem `json:"cart"`  // Items with the prices the client was shown
}

// ClientTokenHandler issues a gateway client token
func ClientTokenHandler(gw payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := gw.IssueClientToken(c.Request.Context())
		if err != nil {
			respondError(c, err) // Unreachable gateway maps to 502
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "clientToken": token})
	}
}

// PaymentHandler charges the cart and records the order for the signed-in user
func PaymentHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := middleware.UserID(c)
		if !ok {
			fail(c, utils.CodeUnauthorized, "Unauthorized")
			return
		}
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
		order, err := svc.Checkout(c.Request.Context(), buyerID, req.Cart, req.Nonce)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "order_id": order.ID})
	}
}
