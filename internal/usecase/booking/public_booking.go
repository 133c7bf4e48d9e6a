package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
)

// GetByReference is the client's read-only view of a booking.
type GetByReference struct {
	repo domain.Repository
}

func NewGetByReference(repo domain.Repository) *GetByReference {
	return &GetByReference{repo: repo}
}

func (uc *GetByReference) Execute(ctx context.Context, ref string) (*models.Booking, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}
	return uc.repo.GetBookingByReference(ctx, id.String())
}

// CancelByReference lets a client cancel their own booking up to the shop's
// minimum advance before it starts.
type CancelByReference struct {
	repo    domain.Repository
	effects effects
	now     clock
}

func NewCancelByReference(
	repo domain.Repository,
	c cache.AvailabilityCache,
	auditor Auditor,
	notifier Notifier,
) *CancelByReference {
	return &CancelByReference{
		repo:    repo,
		effects: effects{cache: c, audit: auditor, notify: notifier},
		now:     time.Now,
	}
}

func (uc *CancelByReference) Execute(ctx context.Context, ref string) (*models.Booking, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}

	now := uc.now()
	b, _, err := mutateBooking(ctx, uc.repo, byReference(id.String()), func(b *models.Booking) (bool, error) {
		if b.StartTime.Before(now.Add(minAdvance(&b.Shop))) {
			return false, domain.ErrCancelTooLate
		}
		return true, domain.Cancel(b, now)
	})
	if err != nil {
		return nil, err
	}

	uc.effects.invalidate(ctx, b, &b.Shop)
	uc.effects.record(b.Shop.OwnerID, nil, "booking_cancelled_by_client", b, nil)
	uc.effects.send(notify.EventBookingCancelled, b, &b.Shop)

	return b, nil
}
