package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

type Event struct {
	Type      string
	Reference string

	ClientName  string
	ClientEmail string
	ClientPhone string

	ShopName    string
	ServiceName string
	WorkerName  string

	// Start and End are already in the shop location.
	Start time.Time
	End   time.Time

	CheckoutURL string
}

type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// Outcome receives "sent", "failed" or "dropped" per event.
type Outcome func(event, outcome string)

// Dispatcher hands events to a Sender on a background worker. A full queue
// drops the event; the caller is never blocked and never sees an error.
type Dispatcher struct {
	sender  Sender
	log     *zap.Logger
	outcome Outcome
	timeout time.Duration

	queue     chan Event
	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(sender Sender, log *zap.Logger, outcome Outcome) *Dispatcher {
	if outcome == nil {
		outcome = func(string, string) {}
	}

	d := &Dispatcher{
		sender:  sender,
		log:     log,
		outcome: outcome,
		timeout: 15 * time.Second,
		queue:   make(chan Event, 100),
		done:    make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sender.Send(ctx, ev)
		cancel()

		if err != nil {
			d.log.Error("notification failed",
				zap.String("event", ev.Type),
				zap.String("reference", ev.Reference),
				zap.Error(err),
			)
			d.outcome(ev.Type, "failed")
			continue
		}
		d.outcome(ev.Type, "sent")
	}
}

func (d *Dispatcher) Notify(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("notification queue full, dropping event",
			zap.String("event", ev.Type),
			zap.String("reference", ev.Reference),
		)
		d.outcome(ev.Type, "dropped")
	}
}

func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() { close(d.queue) })
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
