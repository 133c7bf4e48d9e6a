package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

type ListInput struct {
	OwnerID  uint
	ShopID   uint
	WorkerID *uint
	Status   *domain.Status
}

type ListBookingsByDate struct {
	repo domain.Repository
}

func NewListBookingsByDate(repo domain.Repository) *ListBookingsByDate {
	return &ListBookingsByDate{repo: repo}
}

func (uc *ListBookingsByDate) Execute(ctx context.Context, in ListInput, date string) ([]dto.BookingListDTO, error) {
	return list(ctx, uc.repo, in, func(loc *time.Location) (time.Time, time.Time, error) {
		day, err := timezone.ParseDate(date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, domain.ErrInvalidDate
		}
		start, end := timezone.DayBounds(day, loc)
		return start, end, nil
	})
}

type ListBookingsByMonth struct {
	repo domain.Repository
}

func NewListBookingsByMonth(repo domain.Repository) *ListBookingsByMonth {
	return &ListBookingsByMonth{repo: repo}
}

func (uc *ListBookingsByMonth) Execute(ctx context.Context, in ListInput, year, month int) ([]dto.BookingListDTO, error) {
	return list(ctx, uc.repo, in, func(loc *time.Location) (time.Time, time.Time, error) {
		if year < 2000 || year > 2100 || month < 1 || month > 12 {
			return time.Time{}, time.Time{}, domain.ErrInvalidDate
		}
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	})
}

func list(
	ctx context.Context,
	repo domain.Repository,
	in ListInput,
	window func(*time.Location) (time.Time, time.Time, error),
) ([]dto.BookingListDTO, error) {

	shop, err := repo.GetShop(ctx, in.ShopID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID != in.OwnerID {
		return nil, domain.ErrShopNotFound
	}
	loc := timezone.Location(shop.Timezone)

	from, to, err := window(loc)
	if err != nil {
		return nil, err
	}

	bookings, err := repo.ListBookings(ctx, domain.ListFilter{
		OwnerID:  in.OwnerID,
		ShopID:   &shop.ID,
		WorkerID: in.WorkerID,
		Status:   in.Status,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, err
	}

	return dto.BookingList(bookings, loc), nil
}
