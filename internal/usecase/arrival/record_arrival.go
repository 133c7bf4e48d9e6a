package arrival

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/arrival"
	bookingdomain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

type Auditor interface {
	Dispatch(ev audit.Event)
}

type RecordInput struct {
	OwnerID  uint
	UserID   uint
	WorkerID uint
}

// RecordArrival stamps a worker's arrival once per shop-local day and flags
// it late against that day's opening time.
type RecordArrival struct {
	arrivals domain.Repository
	shops    bookingdomain.Repository
	audit    Auditor
	grace    time.Duration
	now      func() time.Time
}

func NewRecordArrival(
	arrivals domain.Repository,
	shops bookingdomain.Repository,
	auditor Auditor,
	graceMinutes int,
) *RecordArrival {
	return &RecordArrival{
		arrivals: arrivals,
		shops:    shops,
		audit:    auditor,
		grace:    time.Duration(graceMinutes) * time.Minute,
		now:      time.Now,
	}
}

func (uc *RecordArrival) Execute(ctx context.Context, in RecordInput) (*models.WorkerArrival, error) {
	worker, err := uc.shops.GetWorker(ctx, in.WorkerID)
	if err != nil {
		return nil, err
	}
	if worker.OwnerID != in.OwnerID {
		return nil, bookingdomain.ErrWorkerNotFound
	}
	if worker.ShopID == nil {
		return nil, domain.ErrNotAssigned
	}

	shop, err := uc.shops.GetShop(ctx, *worker.ShopID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(shop.Timezone)

	now := uc.now().In(loc)
	date := now.Format(timezone.DateLayout)

	schedules, err := uc.shops.ListSchedules(ctx, shop.ID)
	if err != nil {
		return nil, err
	}
	breaks, err := uc.shops.ListBreaks(ctx, shop.ID, date, date)
	if err != nil {
		return nil, err
	}
	open, err := schedule.Resolve(schedules, breaks, now, loc)
	if err != nil {
		return nil, err
	}

	var opening time.Time
	if len(open) > 0 {
		opening = open[0].Start
	}
	late, minutes := domain.Lateness(now, opening, uc.grace)

	a := &models.WorkerArrival{
		WorkerID:    worker.ID,
		ShopID:      shop.ID,
		Date:        date,
		ArrivedAt:   now,
		Late:        late,
		MinutesLate: minutes,
	}
	if err := uc.arrivals.Create(ctx, a); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		OwnerID:  in.OwnerID,
		UserID:   &in.UserID,
		Action:   "worker_arrival",
		Entity:   "worker",
		EntityID: &worker.ID,
		Metadata: map[string]any{"late": late, "minutes_late": minutes},
	})

	return a, nil
}

type ListArrivals struct {
	arrivals domain.Repository
}

func NewListArrivals(arrivals domain.Repository) *ListArrivals {
	return &ListArrivals{arrivals: arrivals}
}

func (uc *ListArrivals) Execute(ctx context.Context, f domain.ListFilter) ([]models.WorkerArrival, error) {
	if _, err := time.Parse(timezone.DateLayout, f.FromDate); err != nil {
		return nil, bookingdomain.ErrInvalidDate
	}
	if _, err := time.Parse(timezone.DateLayout, f.ToDate); err != nil {
		return nil, bookingdomain.ErrInvalidDate
	}
	return uc.arrivals.List(ctx, f)
}
