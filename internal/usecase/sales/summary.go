package sales

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

const maxRangeDays = 366

var ErrInvalidRange = httperr.New(httperr.KindValidation, "invalid_range", "Invalid date range.")

type SummaryInput struct {
	OwnerID uint
	ShopID  *uint
	// From and To are inclusive calendar days, "YYYY-MM-DD".
	From string
	To   string
}

type Line struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Bookings int             `json:"bookings"`
	Paid     int             `json:"paid"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type Day struct {
	Date     string          `json:"date"`
	Bookings int             `json:"bookings"`
	Paid     int             `json:"paid"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// Summary aggregates bookings started in the range. Revenue only counts
// PAID bookings; Bookings counts every booking that was not cancelled.
type Summary struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Timezone string `json:"timezone"`

	Bookings int             `json:"bookings"`
	Paid     int             `json:"paid"`
	Revenue  decimal.Decimal `json:"revenue"`
	Average  decimal.Decimal `json:"average_ticket"`

	ByStatus map[string]int `json:"by_status"`
	Workers  []Line         `json:"workers"`
	Services []Line         `json:"services"`
	Daily    []Day          `json:"daily"`
}

type GetSummary struct {
	repo domain.Repository
}

func NewGetSummary(repo domain.Repository) *GetSummary {
	return &GetSummary{repo: repo}
}

func (uc *GetSummary) Execute(ctx context.Context, in SummaryInput) (*Summary, error) {
	loc := timezone.Location(timezone.DefaultTimezone)
	if in.ShopID != nil {
		shop, err := uc.repo.GetShop(ctx, *in.ShopID)
		if err != nil {
			return nil, err
		}
		if shop.OwnerID != in.OwnerID {
			return nil, domain.ErrShopNotFound
		}
		loc = timezone.Location(shop.Timezone)
	}

	from, err := timezone.ParseDate(in.From, loc)
	if err != nil {
		return nil, ErrInvalidRange.WithMessage("invalid from date")
	}
	to, err := timezone.ParseDate(in.To, loc)
	if err != nil {
		return nil, ErrInvalidRange.WithMessage("invalid to date")
	}
	if to.Before(from) || to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, ErrInvalidRange
	}

	bookings, err := uc.repo.ListBookings(ctx, domain.ListFilter{
		OwnerID: in.OwnerID,
		ShopID:  in.ShopID,
		From:    from,
		To:      to.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, err
	}

	s := Aggregate(bookings, loc)
	s.From = from.Format(timezone.DateLayout)
	s.To = to.Format(timezone.DateLayout)
	s.Daily = fillDays(s.Daily, from, to)
	return &s, nil
}

// Aggregate builds the totals for bookings. Each booking is bucketed on
// the calendar day of its start in its own shop's timezone, falling back to
// loc when the shop is not loaded.
func Aggregate(bookings []models.Booking, loc *time.Location) Summary {
	s := Summary{
		Timezone: loc.String(),
		Revenue:  decimal.Zero,
		Average:  decimal.Zero,
		ByStatus: map[string]int{},
		Workers:  []Line{},
		Services: []Line{},
		Daily:    []Day{},
	}

	workers := map[uint]*Line{}
	services := map[uint]*Line{}
	days := map[string]*Day{}

	for _, b := range bookings {
		s.ByStatus[b.Status]++
		if domain.Status(b.Status) == domain.StatusCancelled {
			continue
		}

		bl := loc
		if b.Shop.ID != 0 && b.Shop.Timezone != "" {
			bl = timezone.Location(b.Shop.Timezone)
		}
		key := b.StartTime.In(bl).Format(timezone.DateLayout)

		w := line(workers, b.WorkerID, b.Worker.Name)
		sv := line(services, b.ServiceID, b.Service.Name)
		d, ok := days[key]
		if !ok {
			d = &Day{Date: key, Revenue: decimal.Zero}
			days[key] = d
		}

		s.Bookings++
		w.Bookings++
		sv.Bookings++
		d.Bookings++

		if domain.PaymentStatus(b.PaymentStatus) != domain.PaymentPaid {
			continue
		}
		s.Paid++
		w.Paid++
		sv.Paid++
		d.Paid++
		s.Revenue = s.Revenue.Add(b.PaymentAmount)
		w.Revenue = w.Revenue.Add(b.PaymentAmount)
		sv.Revenue = sv.Revenue.Add(b.PaymentAmount)
		d.Revenue = d.Revenue.Add(b.PaymentAmount)
	}

	if s.Paid > 0 {
		s.Average = s.Revenue.Div(decimal.NewFromInt(int64(s.Paid))).Round(2)
	}

	s.Workers = sortedLines(workers)
	s.Services = sortedLines(services)
	for _, d := range days {
		s.Daily = append(s.Daily, *d)
	}
	sort.Slice(s.Daily, func(i, j int) bool { return s.Daily[i].Date < s.Daily[j].Date })

	return s
}

func line(m map[uint]*Line, id uint, name string) *Line {
	l, ok := m[id]
	if !ok {
		l = &Line{ID: id, Name: name, Revenue: decimal.Zero}
		m[id] = l
	}
	return l
}

// sortedLines orders by revenue, then bookings, then id.
func sortedLines(m map[uint]*Line) []Line {
	out := make([]Line, 0, len(m))
	for _, l := range m {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		if out[i].Bookings != out[j].Bookings {
			return out[i].Bookings > out[j].Bookings
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// fillDays returns one entry per calendar day of [from, to], keeping the
// totals already computed.
func fillDays(daily []Day, from, to time.Time) []Day {
	have := make(map[string]Day, len(daily))
	for _, d := range daily {
		have[d.Date] = d
	}

	out := []Day{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(timezone.DateLayout)
		if v, ok := have[key]; ok {
			out = append(out, v)
			continue
		}
		out = append(out, Day{Date: key, Revenue: decimal.Zero})
	}
	return out
}
