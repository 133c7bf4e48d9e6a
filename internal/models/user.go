package models

import "time"

const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// User is an operator account. Shops, workers, services and clients are
// owned by an owner user; staff users act on their owner's data read-only.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// OwnerID is set for staff accounts only.
	OwnerID *uint `gorm:"index" json:"owner_id,omitempty"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'owner'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantID is the owner whose data the user works on.
func (u *User) TenantID() uint {
	if u.OwnerID != nil {
		return *u.OwnerID
	}
	return u.ID
}
