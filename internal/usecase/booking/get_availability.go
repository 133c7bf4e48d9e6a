package booking

import (
	"context"
	"fmt"
	"time"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

type AvailabilityInput struct {
	ShopID    uint
	WorkerID  uint
	ServiceID uint
	Date      string
}

type AvailabilityOutput struct {
	Date     string            `json:"date"`
	Timezone string            `json:"timezone"`
	Slots    []domain.TimeSlot `json:"slots"`
}

type GetAvailability struct {
	repo  domain.Repository
	cache cache.AvailabilityCache
	now   clock
}

func NewGetAvailability(repo domain.Repository, c cache.AvailabilityCache) *GetAvailability {
	return &GetAvailability{repo: repo, cache: c, now: time.Now}
}

func (uc *GetAvailability) Execute(ctx context.Context, in AvailabilityInput) (*AvailabilityOutput, error) {
	shop, err := uc.repo.GetShop(ctx, in.ShopID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(shop.Timezone)

	day, err := timezone.ParseDate(in.Date, loc)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}

	worker, service, err := bookable(ctx, uc.repo, shop, in.WorkerID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	dur := time.Duration(service.DurationMin) * time.Minute
	if dur <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	out := &AvailabilityOutput{
		Date:     day.Format(timezone.DateLayout),
		Timezone: loc.String(),
		Slots:    []domain.TimeSlot{},
	}

	dayStart, dayEnd := timezone.DayBounds(day, loc)
	now := uc.now()
	latest := now.AddDate(0, 0, maxAdvanceDays(shop))
	if !dayEnd.After(now) || dayStart.After(latest) {
		return out, nil
	}

	earliest := now.Add(minAdvance(shop))

	// Days entirely past the minimum advance share one cache entry.
	var notBefore time.Time
	if earliest.After(dayStart) {
		notBefore = ceilMinute(earliest)
	}
	step := slotStep(shop)

	variant := fmt.Sprintf("svc:%d:dur:%d:step:%d:nb:%d",
		service.ID, service.DurationMin, int(step.Minutes()), unixOrZero(notBefore))
	key := cache.Key{ShopID: shop.ID, WorkerID: worker.ID, Date: out.Date, Variant: variant}

	slots, version, ok := uc.cache.Get(ctx, key)
	if ok {
		out.Slots = slots
		return out, nil
	}

	open, err := openIntervals(ctx, uc.repo, shop, day, loc)
	if err != nil {
		return nil, err
	}

	occupied, err := uc.repo.ListOccupied(ctx, worker.ID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	seq, err := domain.Availability(domain.AvailabilityInput{
		Open:      open,
		Occupied:  occupied,
		Duration:  dur,
		Step:      step,
		NotBefore: notBefore,
	})
	if err != nil {
		return nil, err
	}

	out.Slots = domain.Slots(seq, dur, loc)
	uc.cache.Set(ctx, key, version, out.Slots)

	return out, nil
}

// --------------------------------------------------
// shared lookups
// --------------------------------------------------

// bookable loads the worker and service and checks that the worker takes
// bookings at shop and performs the service.
func bookable(
	ctx context.Context,
	repo domain.Repository,
	shop *models.Shop,
	workerID uint,
	serviceID uint,
) (*models.Worker, *models.Service, error) {

	worker, err := repo.GetWorker(ctx, workerID)
	if err != nil {
		return nil, nil, err
	}
	if worker.OwnerID != shop.OwnerID {
		return nil, nil, domain.ErrWorkerNotFound
	}
	if worker.ShopID == nil || *worker.ShopID != shop.ID || worker.Status != models.WorkerActive {
		return nil, nil, domain.ErrWorkerUnavailable
	}

	service, err := repo.GetService(ctx, shop.OwnerID, serviceID)
	if err != nil {
		return nil, nil, err
	}
	if !service.Active || !worker.CanPerform(service.ID) {
		return nil, nil, domain.ErrServiceNotOffered
	}

	return worker, service, nil
}

func openIntervals(
	ctx context.Context,
	repo domain.Repository,
	shop *models.Shop,
	day time.Time,
	loc *time.Location,
) ([]schedule.Interval, error) {

	schedules, err := repo.ListSchedules(ctx, shop.ID)
	if err != nil {
		return nil, err
	}

	key := day.In(loc).Format(timezone.DateLayout)
	breaks, err := repo.ListBreaks(ctx, shop.ID, key, key)
	if err != nil {
		return nil, err
	}

	return schedule.Resolve(schedules, breaks, day, loc)
}

func minAdvance(shop *models.Shop) time.Duration {
	if shop.MinAdvanceMinutes < 0 {
		return 0
	}
	return time.Duration(shop.MinAdvanceMinutes) * time.Minute
}

func maxAdvanceDays(shop *models.Shop) int {
	if shop.MaxAdvanceDays <= 0 {
		return 60
	}
	return shop.MaxAdvanceDays
}

func slotStep(shop *models.Shop) time.Duration {
	if shop.SlotStepMinutes <= 0 {
		return domain.DefaultStep
	}
	return time.Duration(shop.SlotStepMinutes) * time.Minute
}

// ceilMinute rounds up to the next whole minute so no offered start is
// earlier than the minimum advance allows.
func ceilMinute(t time.Time) time.Time {
	m := t.Truncate(time.Minute)
	if m.Before(t) {
		m = m.Add(time.Minute)
	}
	return m
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
