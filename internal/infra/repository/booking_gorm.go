package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// BookingGormRepository stores times in UTC; callers convert to the shop
// location for display.
type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func miss(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// --------------------------------------------------
// Shop
// --------------------------------------------------

func (r *BookingGormRepository) GetShop(ctx context.Context, shopID uint) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, shopID).Error; err != nil {
		return nil, miss(err, domain.ErrShopNotFound)
	}
	return &shop, nil
}

func (r *BookingGormRepository) GetShopBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&shop).Error; err != nil {
		return nil, miss(err, domain.ErrShopNotFound)
	}
	return &shop, nil
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *BookingGormRepository) ListSchedules(ctx context.Context, shopID uint) ([]models.ShopSchedule, error) {
	var rows []models.ShopSchedule
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("weekday ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingGormRepository) ListBreaks(
	ctx context.Context,
	shopID uint,
	fromDate string,
	toDate string,
) ([]models.ShopBreak, error) {

	var rows []models.ShopBreak
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND date >= ? AND date <= ?", shopID, fromDate, toDate).
		Order("date ASC, start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --------------------------------------------------
// Worker / Service
// --------------------------------------------------

func (r *BookingGormRepository) GetWorker(ctx context.Context, workerID uint) (*models.Worker, error) {
	var w models.Worker
	if err := r.db.WithContext(ctx).
		Preload("Services").
		First(&w, workerID).Error; err != nil {
		return nil, miss(err, domain.ErrWorkerNotFound)
	}
	return &w, nil
}

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	ownerID uint,
	serviceID uint,
) (*models.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", serviceID, ownerID).
		First(&s).Error; err != nil {
		return nil, miss(err, domain.ErrServiceNotFound)
	}
	return &s, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *BookingGormRepository) GetOrCreateClient(
	ctx context.Context,
	ownerID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	client := models.Client{
		OwnerID: ownerID,
		Name:    name,
		Phone:   phone,
		Email:   email,
	}

	// A concurrent booking may insert the same phone first.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "phone"}},
			DoNothing: true,
		}).
		Create(&client).Error; err != nil {
		return nil, err
	}

	if client.ID != 0 {
		return &client, nil
	}

	var existing models.Client
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND phone = ?", ownerID, phone).
		First(&existing).Error; err != nil {
		return nil, err
	}

	if existing.Email == "" && email != "" {
		existing.Email = email
		if err := r.db.WithContext(ctx).
			Model(&existing).
			Update("email", email).Error; err != nil {
			return nil, err
		}
	}

	return &existing, nil
}

// --------------------------------------------------
// Booking index
// --------------------------------------------------

func (r *BookingGormRepository) ListOccupied(
	ctx context.Context,
	workerID uint,
	from time.Time,
	to time.Time,
) ([]schedule.Interval, error) {

	var rows []models.Booking
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("start_time", "end_time").
		Where(
			"worker_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			workerID,
			string(domain.StatusCancelled),
			to.UTC(),
			from.UTC(),
		).
		Order("start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]schedule.Interval, 0, len(rows))
	for _, b := range rows {
		out = append(out, schedule.Interval{Start: b.StartTime, End: b.EndTime})
	}
	return out, nil
}

// --------------------------------------------------
// Booking write
// --------------------------------------------------

func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

func (r *BookingGormRepository) LockWorker(ctx context.Context, workerID uint) error {
	var w models.Worker
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&w, workerID).Error
	return miss(err, domain.ErrWorkerNotFound)
}

func (r *BookingGormRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(b).Error
}

// --------------------------------------------------
// Booking state
// --------------------------------------------------

func (r *BookingGormRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Shop").
		Preload("Worker").
		Preload("Service").
		Preload("Client")
}

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	ownerID uint,
	bookingID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.preloaded(ctx).
		Joins("JOIN shops ON shops.id = bookings.shop_id").
		Where("bookings.id = ? AND shops.owner_id = ?", bookingID, ownerID).
		First(&b).Error; err != nil {
		return nil, miss(err, domain.ErrBookingNotFound)
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingByReference(
	ctx context.Context,
	ref string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.preloaded(ctx).
		Where("reference = ?", ref).
		First(&b).Error; err != nil {
		return nil, miss(err, domain.ErrBookingNotFound)
	}
	return &b, nil
}

func (r *BookingGormRepository) LockBooking(ctx context.Context, bookingID uint) error {
	var b models.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&b, bookingID).Error
	return miss(err, domain.ErrBookingNotFound)
}

func (r *BookingGormRepository) UpdateBooking(ctx context.Context, b *models.Booking, fromStatus string) error {
	if b.ID == 0 {
		return fmt.Errorf("update booking: missing id")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", b.ID, fromStatus).
		Updates(map[string]any{
			"status":         b.Status,
			"payment_status": b.PaymentStatus,
			"payment_amount": b.PaymentAmount,
			"payment_option": b.PaymentOption,
			"checkout_url":   b.CheckoutURL,
			"cancelled_at":   b.CancelledAt,
			"completed_at":   b.CompletedAt,
			"paid_at":        b.PaidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrBookingChanged
	}
	return nil
}

func (r *BookingGormRepository) SetCheckoutURL(ctx context.Context, bookingID uint, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("checkout_url", url).Error
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx).
		Preload("Shop").
		Preload("Worker").
		Preload("Service").
		Preload("Client").
		Joins("JOIN shops ON shops.id = bookings.shop_id").
		Where("shops.owner_id = ?", f.OwnerID).
		Where("bookings.start_time >= ? AND bookings.start_time < ?", f.From.UTC(), f.To.UTC())

	if f.ShopID != nil {
		q = q.Where("bookings.shop_id = ?", *f.ShopID)
	}
	if f.WorkerID != nil {
		q = q.Where("bookings.worker_id = ?", *f.WorkerID)
	}
	if f.ClientID != nil {
		q = q.Where("bookings.client_id = ?", *f.ClientID)
	}
	if f.Status != nil {
		q = q.Where("bookings.status = ?", string(*f.Status))
	}

	var out []models.Booking
	if err := q.Order("bookings.start_time ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
