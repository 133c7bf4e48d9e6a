package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// Repository is the persistence boundary of the booking engine.
// Lookups that miss return the matching NotFound business error.
type Repository interface {
	// -------- Shop --------
	GetShop(ctx context.Context, shopID uint) (*models.Shop, error)
	GetShopBySlug(ctx context.Context, slug string) (*models.Shop, error)

	// -------- Schedule --------
	ListSchedules(ctx context.Context, shopID uint) ([]models.ShopSchedule, error)
	ListBreaks(ctx context.Context, shopID uint, fromDate, toDate string) ([]models.ShopBreak, error)

	// -------- Worker / Service --------
	GetWorker(ctx context.Context, workerID uint) (*models.Worker, error)
	GetService(ctx context.Context, ownerID, serviceID uint) (*models.Service, error)

	// -------- Client --------
	GetOrCreateClient(ctx context.Context, ownerID uint, name, phone, email string) (*models.Client, error)

	// -------- Booking index --------
	// ListOccupied returns the ranges held by non-cancelled bookings of the
	// worker that overlap [from, to), ordered by start.
	ListOccupied(ctx context.Context, workerID uint, from, to time.Time) ([]schedule.Interval, error)

	// -------- Booking write --------
	// Transaction runs fn inside one DB transaction; the Repository given to
	// fn is bound to it.
	Transaction(ctx context.Context, fn func(tx Repository) error) error
	// LockWorker takes a row lock on the worker for the rest of the
	// transaction, serializing concurrent writers of the same worker.
	LockWorker(ctx context.Context, workerID uint) error
	CreateBooking(ctx context.Context, b *models.Booking) error

	// -------- Booking state --------
	GetBooking(ctx context.Context, ownerID, bookingID uint) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, ref string) (*models.Booking, error)
	// LockBooking takes a row lock on the booking for the rest of the
	// transaction.
	LockBooking(ctx context.Context, bookingID uint) error
	// UpdateBooking writes the lifecycle and payment columns of b, provided
	// the stored status is still fromStatus. Otherwise it returns
	// ErrBookingChanged and writes nothing.
	UpdateBooking(ctx context.Context, b *models.Booking, fromStatus string) error
	SetCheckoutURL(ctx context.Context, bookingID uint, url string) error

	// -------- Listing --------
	ListBookings(ctx context.Context, f ListFilter) ([]models.Booking, error)
}

// ListFilter selects bookings whose start falls in [From, To).
type ListFilter struct {
	OwnerID  uint
	ShopID   *uint
	WorkerID *uint
	ClientID *uint
	Status   *Status
	From     time.Time
	To       time.Time
}
