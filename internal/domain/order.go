package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses an administrator can move an order through
const (
	OrderStatusNotProcessed = "Not Processed"
	OrderStatusProcessing   = "Processing"
	OrderStatusShipped      = "Shipped"
	OrderStatusDelivered    = "Delivered"
	OrderStatusCancelled    = "Cancelled"
)

// OrderStatuses lists every accepted order status
var OrderStatuses = []string{
	OrderStatusNotProcessed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ValidOrderStatus reports whether s is one of OrderStatuses
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CartItem is one cart entry as submitted by the client. Price is nil when the
// client omitted it.
type CartItem struct {
	ProductID uint             `json:"product_id,omitempty"` // Referenced product, if any
	Name      string           `json:"name,omitempty"`       // Product name shown to the client
	Price     *decimal.Decimal `json:"price"`                // Price shown to the client
}

// LineItem is one cart entry as it was priced at checkout
type LineItem struct {
	ProductID uint            `json:"product_id,omitempty"` // Referenced product, if any
	Name      string          `json:"name,omitempty"`       // Product name at checkout time
	Price     decimal.Decimal `json:"price"`                // Price at checkout time
}

// PaymentResult is the stored outcome of a sale transaction
type PaymentResult struct {
	Success           bool            `json:"success"`                      // Gateway reported the sale as successful
	TransactionID     string          `json:"transaction_id,omitempty"`     // Gateway transaction identifier
	Status            string          `json:"status,omitempty"`             // Gateway transaction status
	Amount            string          `json:"amount,omitempty"`             // Amount as echoed by the gateway
	ProcessorResponse string          `json:"processor_response,omitempty"` // Processor response text
	Raw               json.RawMessage `json:"raw,omitempty"`                // Opaque gateway payload
}

// Order Model
type Order struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                                   // Primary key
	BuyerID   uint            `gorm:"index;not null" json:"buyer_id"`                         // Foreign key to User
	Buyer     *User           `json:"buyer,omitempty"`                                        // Buyer, preloaded on listings
	Items     []LineItem      `gorm:"type:text;serializer:json" json:"products"`              // Cart snapshot
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`               // Sum of Items prices
	Payment   PaymentResult   `gorm:"type:text;serializer:json" json:"payment"`               // Gateway result blob
	Status    string          `gorm:"size:32;not null;default:'Not Processed'" json:"status"` // Fulfilment status
	IntentID  string          `gorm:"size:36;uniqueIndex" json:"intent_id"`                   // Checkout intent that produced the order
	CreatedAt time.Time       `gorm:"index" json:"created_at"`                                // Creation timestamp
	UpdatedAt time.Time       `json:"updated_at"`                                             // Last update timestamp
}
