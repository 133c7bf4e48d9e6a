package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// Notifier accepts notification events without blocking.
type Notifier interface {
	Notify(ev notify.Event)
}

// Auditor accepts audit events without blocking.
type Auditor interface {
	Dispatch(ev audit.Event)
}

type clock func() time.Time

// effects are the post-commit side effects shared by the write use cases.
// None of them can fail the operation that triggered them.
type effects struct {
	cache  cache.AvailabilityCache
	audit  Auditor
	notify Notifier
}

func (e effects) invalidate(ctx context.Context, b *models.Booking, shop *models.Shop) {
	loc := timezone.Location(shop.Timezone)
	e.cache.Invalidate(ctx, b.WorkerID, b.StartTime.In(loc).Format(timezone.DateLayout))
}

func (e effects) record(ownerID uint, userID *uint, action string, b *models.Booking, meta any) {
	e.audit.Dispatch(audit.Event{
		OwnerID:  ownerID,
		UserID:   userID,
		Action:   action,
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: meta,
	})
}

func (e effects) send(eventType string, b *models.Booking, shop *models.Shop) {
	loc := timezone.Location(shop.Timezone)
	e.notify.Notify(notify.Event{
		Type:        eventType,
		Reference:   b.Reference.String(),
		ClientName:  b.Client.Name,
		ClientEmail: b.Client.Email,
		ClientPhone: b.Client.Phone,
		ShopName:    shop.Name,
		ServiceName: b.Service.Name,
		WorkerName:  b.Worker.Name,
		Start:       b.StartTime.In(loc),
		End:         b.EndTime.In(loc),
		CheckoutURL: b.CheckoutURL,
	})
}

func auditConflict(ownerID uint, in CreateBookingInput, workerID uint, start, end time.Time) audit.Event {
	return audit.Event{
		OwnerID: ownerID,
		UserID:  in.UserID,
		Action:  "booking_conflict",
		Entity:  "booking",
		Metadata: map[string]any{
			"channel":   in.Channel,
			"worker_id": workerID,
			"start":     start,
			"end":       end,
		},
	}
}
