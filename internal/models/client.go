package models

import "time"

// Client is an end customer of an operator. Clients have no login and are
// matched by phone.
type Client struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"uniqueIndex:idx_owner_phone;not null" json:"owner_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20;uniqueIndex:idx_owner_phone" json:"phone"`
	Email string `gorm:"size:100" json:"email"`
	Notes string `gorm:"size:255" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
