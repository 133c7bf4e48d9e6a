package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type UpdatePaymentInput struct {
	OwnerID   uint
	UserID    uint
	BookingID uint

	Status domain.PaymentStatus
	// Amount and Option are left unchanged when nil.
	Amount *decimal.Decimal
	Option *domain.PaymentOption
}

type UpdatePayment struct {
	repo  domain.Repository
	audit Auditor
	now   clock
}

func NewUpdatePayment(repo domain.Repository, auditor Auditor) *UpdatePayment {
	return &UpdatePayment{repo: repo, audit: auditor, now: time.Now}
}

func (uc *UpdatePayment) Execute(ctx context.Context, in UpdatePaymentInput) (*models.Booking, error) {
	if in.Amount != nil && in.Amount.IsNegative() {
		return nil, domain.ErrInvalidPayment.WithMessage("amount must not be negative")
	}
	if in.Option != nil && !in.Option.Valid() {
		return nil, domain.ErrInvalidPayment.WithMessage("unknown payment option")
	}

	b, _, err := mutateBooking(ctx, uc.repo, byID(in.OwnerID, in.BookingID), func(b *models.Booking) (bool, error) {
		if in.Amount != nil {
			b.PaymentAmount = *in.Amount
		}
		if in.Option != nil {
			b.PaymentOption = string(*in.Option)
		}
		return true, domain.SetPayment(b, in.Status, uc.now())
	})
	if err != nil {
		return nil, err
	}

	effects{audit: uc.audit}.record(in.OwnerID, &in.UserID, "booking_payment_updated", b, map[string]any{
		"payment_status": b.PaymentStatus,
		"amount":         b.PaymentAmount.StringFixed(2),
		"option":         b.PaymentOption,
	})

	return b, nil
}
