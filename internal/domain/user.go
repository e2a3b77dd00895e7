package domain

import "time"

// Roles a user can hold
const (
	RoleUser  = "user"  // Ordinary shopper
	RoleAdmin = "admin" // Catalog and order administrator
)

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	Name      string    `gorm:"size:255;not null" json:"name"`              // Display name
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"` // Unique, lower-cased email
	Password  string    `gorm:"not null" json:"-"`                          // Hashed password
	Phone     string    `gorm:"size:64;not null" json:"phone"`              // Contact phone
	Address   string    `gorm:"type:text;not null" json:"address"`          // Shipping address
	Answer    string    `gorm:"not null" json:"-"`                          // Hashed security answer for password recovery
	Role      string    `gorm:"size:16;not null;default:user" json:"role"`  // Role: user or admin
	CreatedAt time.Time `json:"created_at"`                                 // Creation timestamp
	UpdatedAt time.Time `json:"updated_at"`                                 // Last update timestamp
}

// IsAdmin reports whether the user holds the administrator role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicProfile is the user view returned to clients
type PublicProfile struct {
	ID      uint   `json:"id"`      // User ID
	Name    string `json:"name"`    // Display name
	Email   string `json:"email"`   // Email
	Phone   string `json:"phone"`   // Phone
	Address string `json:"address"` // Address
	Role    string `json:"role"`    // Role
}

// Profile builds the public view of the user
func (u User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Address: u.Address, Role: u.Role}
}
