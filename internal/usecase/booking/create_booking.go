package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/infra/payment"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

const (
	ChannelAdmin  = "admin"
	ChannelPublic = "public"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	ShopID    uint
	WorkerID  uint
	ServiceID uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	// Date and Time are shop-local, "YYYY-MM-DD" and "HH:MM".
	Date  string
	Time  string
	Notes string

	PaymentOption domain.PaymentOption

	// Channel and UserID identify who is booking; UserID is nil for the
	// public flow.
	Channel string
	UserID  *uint
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	effects  effects
	payments payment.Gateway
	currency string
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      clock
}

func NewCreateBooking(
	repo domain.Repository,
	c cache.AvailabilityCache,
	auditor Auditor,
	notifier Notifier,
	payments payment.Gateway,
	currency string,
	m *metrics.Metrics,
	log *zap.Logger,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		effects:  effects{cache: c, audit: auditor, notify: notifier},
		payments: payments,
		currency: currency,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {

	// --------------------------------------------------
	// Input
	// --------------------------------------------------
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.ClientPhone = strings.TrimSpace(in.ClientPhone)
	if in.ClientName == "" || in.ClientPhone == "" {
		return nil, domain.ErrInvalidClient
	}

	if in.PaymentOption == "" {
		in.PaymentOption = domain.PaymentCash
	}
	if !in.PaymentOption.Valid() {
		return nil, domain.ErrInvalidPayment.WithMessage("unknown payment option")
	}

	// --------------------------------------------------
	// Shop, worker, service
	// --------------------------------------------------
	shop, err := uc.repo.GetShop(ctx, in.ShopID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(shop.Timezone)

	worker, service, err := bookable(ctx, uc.repo, shop, in.WorkerID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	dur := time.Duration(service.DurationMin) * time.Minute
	if dur <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	// --------------------------------------------------
	// Requested window
	// --------------------------------------------------
	start, err := timezone.ParseDateTime(in.Date, in.Time, loc)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	end := start.Add(dur)

	now := uc.now()
	if start.Before(now.Add(minAdvance(shop))) {
		return nil, domain.ErrTooSoon
	}
	if start.After(now.AddDate(0, 0, maxAdvanceDays(shop))) {
		return nil, domain.ErrTooFar
	}

	// --------------------------------------------------
	// Write, serialized per worker
	// --------------------------------------------------
	b := &models.Booking{
		Reference:     uuid.New(),
		ShopID:        shop.ID,
		WorkerID:      worker.ID,
		ServiceID:     service.ID,
		StartTime:     start,
		EndTime:       end,
		Status:        string(domain.InitialStatus()),
		PaymentStatus: string(domain.PaymentUnpaid),
		PaymentAmount: service.Price,
		PaymentOption: string(in.PaymentOption),
		Notes:         in.Notes,
	}

	var client *models.Client
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockWorker(ctx, worker.ID); err != nil {
			return err
		}

		open, err := openIntervals(ctx, tx, shop, start, loc)
		if err != nil {
			return err
		}
		if !domain.Fits(open, start, dur) {
			return domain.ErrShopClosed
		}

		taken, err := tx.ListOccupied(ctx, worker.ID, start, end)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return domain.ErrSlotConflict
		}

		client, err = tx.GetOrCreateClient(ctx, shop.OwnerID, in.ClientName, in.ClientPhone, in.ClientEmail)
		if err != nil {
			return err
		}
		b.ClientID = client.ID

		return tx.CreateBooking(ctx, b)
	})
	if err != nil {
		if httperr.IsExclusionConflict(err) {
			err = domain.ErrSlotConflict
		}
		if httperr.IsBusiness(err, domain.ErrSlotConflict.Code) {
			uc.metrics.BookingConflict()
			uc.effects.audit.Dispatch(auditConflict(shop.OwnerID, in, worker.ID, start, end))
		}
		return nil, err
	}

	b.Shop = *shop
	b.Worker = *worker
	b.Service = *service
	b.Client = *client

	// --------------------------------------------------
	// After commit
	// --------------------------------------------------
	uc.effects.invalidate(ctx, b, shop)
	uc.effects.record(shop.OwnerID, in.UserID, "booking_created", b, map[string]any{
		"channel":   in.Channel,
		"worker_id": worker.ID,
		"start":     b.StartTime,
	})
	uc.metrics.BookingCreated(in.Channel)

	if in.PaymentOption == domain.PaymentOnline {
		uc.checkout(ctx, b)
	}

	uc.effects.send(notify.EventBookingConfirmed, b, shop)

	return b, nil
}

// checkout opens an online payment for b. The booking stands even when the
// provider is unreachable; the client can still pay at the shop.
func (uc *CreateBooking) checkout(ctx context.Context, b *models.Booking) {
	co, err := uc.payments.CreateCheckout(ctx, payment.CheckoutRequest{
		Reference: b.Reference.String(),
		Title:     b.Service.Name + " - " + b.Shop.Name,
		Amount:    b.PaymentAmount,
		Currency:  uc.currency,
	})
	if err != nil {
		uc.log.Warn("checkout not created",
			zap.String("reference", b.Reference.String()),
			zap.Error(err),
		)
		return
	}

	b.CheckoutURL = co.URL
	if err := uc.repo.SetCheckoutURL(ctx, b.ID, co.URL); err != nil {
		uc.log.Error("checkout url not saved",
			zap.String("reference", b.Reference.String()),
			zap.Error(err),
		)
	}
}
