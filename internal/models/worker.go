package models

import "time"

const (
	WorkerActive     = "ACTIVE"
	WorkerInactive   = "INACTIVE"
	WorkerUnassigned = "UNASSIGNED"
)

type Worker struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OwnerID uint  `gorm:"index;not null" json:"owner_id"`
	ShopID  *uint `gorm:"index" json:"shop_id"`
	Shop    *Shop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"shop,omitempty"`

	Name      string `gorm:"size:100;not null" json:"name"`
	Phone     string `gorm:"size:20" json:"phone"`
	Email     string `gorm:"size:100" json:"email"`
	Status    string `gorm:"size:20;default:'UNASSIGNED'" json:"status"`
	AvatarURL string `gorm:"size:255" json:"avatar_url"`

	Services []Service `gorm:"many2many:worker_services;" json:"services,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Worker) CanPerform(serviceID uint) bool {
	for _, s := range w.Services {
		if s.ID == serviceID {
			return true
		}
	}
	return false
}

// WorkerArrival records when a worker actually arrived on a shop-local day.
type WorkerArrival struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	WorkerID uint `gorm:"uniqueIndex:idx_worker_arrival_day;not null" json:"worker_id"`
	ShopID   uint `gorm:"index;not null" json:"shop_id"`

	Date        string    `gorm:"size:10;uniqueIndex:idx_worker_arrival_day;not null" json:"date"`
	ArrivedAt   time.Time `json:"arrived_at"`
	Late        bool      `json:"late"`
	MinutesLate int       `json:"minutes_late"`

	CreatedAt time.Time `json:"created_at"`
}
