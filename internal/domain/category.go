package domain

import "time"

// Category Model
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                      // Primary key
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"` // Unique display name
	Slug      string    `gorm:"size:255;uniqueIndex;not null" json:"slug"` // URL-safe identifier derived from Name
	CreatedAt time.Time `json:"created_at"`                                // Creation timestamp
	UpdatedAt time.Time `json:"updated_at"`                                // Last update timestamp
}
