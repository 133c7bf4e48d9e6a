package booking

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Transition moves b to the next status and stamps the matching timestamp.
func Transition(b *models.Booking, to Status, now time.Time) error {
	from := Status(b.Status)
	if !to.Valid() || !CanTransition(from, to) {
		return ErrInvalidTransition.WithMessage(fmt.Sprintf("%s -> %s", from, to))
	}

	b.Status = string(to)
	switch to {
	case StatusCancelled:
		b.CancelledAt = &now
	case StatusCompleted:
		b.CompletedAt = &now
	}
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	return Transition(b, StatusCancelled, now)
}

func Complete(b *models.Booking, now time.Time) error {
	return Transition(b, StatusCompleted, now)
}

// MarkPaid records a payment on the booking.
func MarkPaid(b *models.Booking, now time.Time) error {
	if Status(b.Status) == StatusCancelled {
		return ErrInvalidPayment.WithMessage("booking is cancelled")
	}
	RecordPayment(b, now)
	return nil
}

// RecordPayment stores money already taken by the provider. The status is
// left as is, so a cancelled booking stays cancelled and is refunded by hand.
func RecordPayment(b *models.Booking, now time.Time) {
	b.PaymentStatus = string(PaymentPaid)
	b.PaidAt = &now
}

// SetPayment applies an admin payment update.
func SetPayment(b *models.Booking, status PaymentStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidPayment.WithMessage("unknown payment status")
	}
	switch status {
	case PaymentPaid:
		return MarkPaid(b, now)
	case PaymentRefunded:
		if PaymentStatus(b.PaymentStatus) != PaymentPaid {
			return ErrInvalidPayment.WithMessage("only paid bookings can be refunded")
		}
	}
	b.PaymentStatus = string(status)
	if status == PaymentUnpaid {
		b.PaidAt = nil
	}
	return nil
}
