package booking

import (
	"iter"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// DefaultStep is the slot granularity used when a shop does not set one.
const DefaultStep = 15 * time.Minute

type AvailabilityInput struct {
	// Open is the output of the schedule resolver for the day.
	Open []schedule.Interval
	// Occupied is the booking index for the worker over the same day.
	Occupied []schedule.Interval

	Duration time.Duration
	Step     time.Duration

	// NotBefore drops candidates starting earlier (now + minimum advance).
	NotBefore time.Time
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Availability returns the bookable start times for a service of the given
// duration. Candidates are laid on a grid anchored at the start of each open
// interval and emitted when the whole window fits inside a free interval.
//
// The sequence is lazy and can be ranged over any number of times; each
// pass walks the same inputs from the beginning.
func Availability(in AvailabilityInput) (iter.Seq[time.Time], error) {
	if in.Duration <= 0 {
		return nil, ErrInvalidDuration
	}

	step := in.Step
	if step <= 0 {
		step = DefaultStep
	}

	open := schedule.Normalize(in.Open)
	free := schedule.Subtract(open, in.Occupied)
	dur := in.Duration
	notBefore := in.NotBefore

	return func(yield func(time.Time) bool) {
		f := 0
		for _, o := range open {
			for c := o.Start; !c.Add(dur).After(o.End); c = c.Add(step) {
				if c.Before(notBefore) {
					continue
				}
				for f < len(free) && !free[f].End.After(c) {
					f++
				}
				if f == len(free) {
					return
				}
				win := schedule.Interval{Start: c, End: c.Add(dur)}
				if free[f].Contains(win) && !yield(c) {
					return
				}
			}
		}
	}, nil
}

// Slots formats the start times of seq as clock ranges in loc.
func Slots(seq iter.Seq[time.Time], dur time.Duration, loc *time.Location) []TimeSlot {
	out := []TimeSlot{}
	for start := range seq {
		out = append(out, TimeSlot{
			Start: start.In(loc).Format(timezone.ClockLayout),
			End:   start.Add(dur).In(loc).Format(timezone.ClockLayout),
		})
	}
	return out
}

// Fits reports whether the window [start, start+dur) lies inside one of the
// open intervals.
func Fits(open []schedule.Interval, start time.Time, dur time.Duration) bool {
	win := schedule.Interval{Start: start, End: start.Add(dur)}
	for _, o := range open {
		if o.Contains(win) {
			return true
		}
	}
	return false
}
