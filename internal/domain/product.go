package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxPhotoSize is the largest accepted product photo in bytes
const MaxPhotoSize = 1_000_000

// PriceScale is the number of decimal places a stored price keeps (decimal(12,2))
const PriceScale = 2

// MaxPrice is the first value a decimal(12,2) column cannot hold
var MaxPrice = decimal.New(1, 12-PriceScale)

// ValidPrice reports whether p fits the price column without rounding
func ValidPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThan(MaxPrice) && p.Equal(p.Truncate(PriceScale))
}

// Product Model
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                                    // Primary key
	Name        string          `gorm:"size:255;not null" json:"name"`                           // Display name
	Slug        string          `gorm:"size:255;index;not null" json:"slug"`                     // URL-safe identifier derived from Name
	Description string          `gorm:"type:text;not null" json:"description"`                   // Free-text description
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`                // Unit price
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`                      // Units on hand (informational only)
	Shipping    bool            `gorm:"not null;default:false" json:"shipping"`                  // Whether the product ships
	CategoryID  uint            `gorm:"index;not null" json:"category_id"`                       // Foreign key to Category
	Category    *Category       `gorm:"constraint:OnDelete:RESTRICT;" json:"category,omitempty"` // Owning category
	HasPhoto    bool            `gorm:"not null;default:false" json:"has_photo"`                 // Whether a photo is stored
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`                                 // Creation timestamp
	UpdatedAt   time.Time       `json:"updated_at"`                                              // Last update timestamp
}

// ProductPhoto holds the binary photo of a product when photos live in the database
type ProductPhoto struct {
	ProductID   uint   `gorm:"primaryKey"`        // Product the photo belongs to
	Data        []byte `gorm:"not null"`          // Raw image bytes
	ContentType string `gorm:"size:128;not null"` // MIME type reported at upload
}
