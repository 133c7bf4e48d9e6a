package schedule

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

var ErrInvalidSchedule = httperr.New(httperr.KindValidation, "invalid_schedule", "")

// Resolve returns the open intervals of a shop on the calendar day of date,
// in loc. The weekly row for that weekday is taken as the base window and
// every break dated that day is subtracted from it. A missing or closed
// weekday yields no intervals.
func Resolve(
	schedules []models.ShopSchedule,
	breaks []models.ShopBreak,
	date time.Time,
	loc *time.Location,
) ([]Interval, error) {

	day := timezone.StartOfDay(date, loc)
	dayKey := day.Format(timezone.DateLayout)

	row, ok := weekdayRow(schedules, int(day.Weekday()))
	if !ok || row.Closed {
		return []Interval{}, nil
	}

	open, err := clockRange(day, row.OpenTime, row.CloseTime, loc)
	if err != nil {
		return nil, ErrInvalidSchedule.WithMessage(
			fmt.Sprintf("weekday %d: %v", row.Weekday, err),
		)
	}

	var cuts []Interval
	for _, b := range breaks {
		if b.Date != dayKey {
			continue
		}
		if b.FullDay() {
			return []Interval{}, nil
		}
		iv, err := clockRange(day, b.StartTime, b.EndTime, loc)
		if err != nil {
			return nil, ErrInvalidSchedule.WithMessage(
				fmt.Sprintf("break %d: %v", b.ID, err),
			)
		}
		cuts = append(cuts, iv)
	}

	return Subtract([]Interval{open}, cuts), nil
}

// ValidateWeek checks a full weekly schedule before it is stored: weekdays
// in range and unique, clocks parseable, close after open.
func ValidateWeek(rows []models.ShopSchedule) error {
	seen := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r.Weekday < 0 || r.Weekday > 6 {
			return ErrInvalidSchedule.WithMessage(fmt.Sprintf("weekday %d out of range", r.Weekday))
		}
		if seen[r.Weekday] {
			return ErrInvalidSchedule.WithMessage(fmt.Sprintf("weekday %d repeated", r.Weekday))
		}
		seen[r.Weekday] = true

		if r.Closed {
			continue
		}
		if _, err := clockRange(time.Time{}, r.OpenTime, r.CloseTime, time.UTC); err != nil {
			return ErrInvalidSchedule.WithMessage(fmt.Sprintf("weekday %d: %v", r.Weekday, err))
		}
	}
	return nil
}

// ValidateBreak checks the clock fields of a break.
func ValidateBreak(b models.ShopBreak) error {
	if _, err := time.Parse(timezone.DateLayout, b.Date); err != nil {
		return ErrInvalidSchedule.WithMessage("invalid break date")
	}
	if b.FullDay() {
		return nil
	}
	if _, err := clockRange(time.Time{}, b.StartTime, b.EndTime, time.UTC); err != nil {
		return ErrInvalidSchedule.WithMessage(err.Error())
	}
	return nil
}

func weekdayRow(rows []models.ShopSchedule, weekday int) (models.ShopSchedule, bool) {
	for _, r := range rows {
		if r.Weekday == weekday {
			return r, true
		}
	}
	return models.ShopSchedule{}, false
}

func clockRange(day time.Time, from, to string, loc *time.Location) (Interval, error) {
	start, err := timezone.At(day, from, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid start %q", from)
	}
	end, err := timezone.At(day, to, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid end %q", to)
	}
	if !end.After(start) {
		return Interval{}, fmt.Errorf("end %s must be after start %s", to, from)
	}
	return Interval{Start: start, End: end}, nil
}
