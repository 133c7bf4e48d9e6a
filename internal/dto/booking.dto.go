package dto

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type BookingListDTO struct {
	ID        uint      `json:"id"`
	Reference string    `json:"reference"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`

	PaymentStatus string `json:"payment_status"`
	PaymentAmount string `json:"payment_amount"`

	WorkerID    uint   `json:"worker_id"`
	WorkerName  string `json:"worker_name"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ServiceName string `json:"service_name"`
}

// BookingList converts times to loc.
func BookingList(bookings []models.Booking, loc *time.Location) []BookingListDTO {
	out := make([]BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingListDTO{
			ID:            b.ID,
			Reference:     b.Reference.String(),
			StartTime:     b.StartTime.In(loc),
			EndTime:       b.EndTime.In(loc),
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
			PaymentAmount: b.PaymentAmount.StringFixed(2),
			WorkerID:      b.WorkerID,
			WorkerName:    b.Worker.Name,
			ClientName:    b.Client.Name,
			ClientPhone:   b.Client.Phone,
			ServiceName:   b.Service.Name,
		})
	}
	return out
}

// PublicBookingDTO is what a client sees through the booking reference.
type PublicBookingDTO struct {
	Reference string `json:"reference"`
	ShopName  string `json:"shop_name"`
	ShopSlug  string `json:"shop_slug"`

	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`

	Status        string `json:"status"`
	ServiceName   string `json:"service_name"`
	WorkerName    string `json:"worker_name"`
	ClientName    string `json:"client_name"`
	PaymentStatus string `json:"payment_status"`
	PaymentAmount string `json:"payment_amount"`
	PaymentOption string `json:"payment_option"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
}

func PublicBooking(b *models.Booking, loc *time.Location) PublicBookingDTO {
	start := b.StartTime.In(loc)
	return PublicBookingDTO{
		Reference:     b.Reference.String(),
		ShopName:      b.Shop.Name,
		ShopSlug:      b.Shop.Slug,
		Date:          start.Format("2006-01-02"),
		Start:         start.Format("15:04"),
		End:           b.EndTime.In(loc).Format("15:04"),
		Status:        b.Status,
		ServiceName:   b.Service.Name,
		WorkerName:    b.Worker.Name,
		ClientName:    b.Client.Name,
		PaymentStatus: b.PaymentStatus,
		PaymentAmount: b.PaymentAmount.StringFixed(2),
		PaymentOption: b.PaymentOption,
		CheckoutURL:   b.CheckoutURL,
	}
}
