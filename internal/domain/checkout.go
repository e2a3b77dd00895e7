package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Checkout intent states
const (
	IntentPending   = "pending"   // Recorded before the gateway call
	IntentCompleted = "completed" // Order recorded
	IntentFailed    = "failed"    // Gateway refused or errored, no money moved
	IntentOrphaned  = "orphaned"  // Pending past its deadline, needs manual review
)

// CheckoutIntent records a checkout before money moves so a crash between
// capture and order persistence leaves a trace.
type CheckoutIntent struct {
	ID            string          `gorm:"size:36;primaryKey" json:"id"`
	BuyerID       uint            `gorm:"index;not null" json:"buyer_id"`
	Items         []LineItem      `gorm:"type:text;serializer:json" json:"items"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status        string          `gorm:"size:16;index;not null" json:"status"`
	Reason        string          `gorm:"size:64" json:"reason,omitempty"`
	TransactionID string          `gorm:"size:64" json:"transaction_id,omitempty"`
	OrderID       *uint           `json:"order_id,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
