package models

import "time"

type Shop struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"index;not null" json:"owner_id"`

	Name     string `gorm:"size:100;not null" json:"name"`
	Slug     string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone    string `gorm:"size:20" json:"phone"`
	Email    string `gorm:"size:100" json:"email"`
	Address  string `gorm:"size:255" json:"address"`
	Timezone string `gorm:"size:64" json:"timezone"`
	LogoURL  string `gorm:"size:255" json:"logo_url"`

	MinAdvanceMinutes int `gorm:"default:120" json:"min_advance_minutes"`
	MaxAdvanceDays    int `gorm:"default:60" json:"max_advance_days"`
	SlotStepMinutes   int `gorm:"default:15" json:"slot_step_minutes"`

	Schedules []ShopSchedule `gorm:"constraint:OnDelete:CASCADE;" json:"schedules,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShopSchedule is the opening window of a shop for one weekday
// (0 = Sunday). A shop has at most one row per weekday.
type ShopSchedule struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	ShopID uint `gorm:"uniqueIndex:idx_shop_weekday;not null" json:"shop_id"`

	Weekday   int    `gorm:"uniqueIndex:idx_shop_weekday;not null" json:"weekday"`
	OpenTime  string `gorm:"size:5" json:"open_time"`
	CloseTime string `gorm:"size:5" json:"close_time"`
	Closed    bool   `gorm:"default:false" json:"closed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShopBreak closes part of (or, without start/end, all of) one calendar day.
type ShopBreak struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	ShopID uint `gorm:"index:idx_shop_break_date;not null" json:"shop_id"`

	// Date is the shop-local calendar day, "YYYY-MM-DD".
	Date      string `gorm:"size:10;index:idx_shop_break_date;not null" json:"date"`
	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Reason    string `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b ShopBreak) FullDay() bool {
	return b.StartTime == "" && b.EndTime == ""
}
