package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
)

type UpdateStatusInput struct {
	OwnerID   uint
	UserID    uint
	BookingID uint
	Status    domain.Status
}

// UpdateStatus moves a booking along the lifecycle on behalf of an operator.
type UpdateStatus struct {
	repo    domain.Repository
	effects effects
	now     clock
}

func NewUpdateStatus(
	repo domain.Repository,
	c cache.AvailabilityCache,
	auditor Auditor,
	notifier Notifier,
) *UpdateStatus {
	return &UpdateStatus{
		repo:    repo,
		effects: effects{cache: c, audit: auditor, notify: notifier},
		now:     time.Now,
	}
}

func (uc *UpdateStatus) Execute(ctx context.Context, in UpdateStatusInput) (*models.Booking, error) {
	var from string
	b, _, err := mutateBooking(ctx, uc.repo, byID(in.OwnerID, in.BookingID), func(b *models.Booking) (bool, error) {
		from = b.Status
		return true, domain.Transition(b, in.Status, uc.now())
	})
	if err != nil {
		return nil, err
	}

	uc.effects.record(in.OwnerID, &in.UserID, "booking_status_changed", b, map[string]any{
		"from": from,
		"to":   b.Status,
	})

	if in.Status == domain.StatusCancelled {
		uc.effects.invalidate(ctx, b, &b.Shop)
		uc.effects.send(notify.EventBookingCancelled, b, &b.Shop)
	}

	return b, nil
}
