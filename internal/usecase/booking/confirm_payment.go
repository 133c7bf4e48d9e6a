package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/infra/payment"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// ConfirmPayment handles a provider notification. The notification only
// carries the payment id; status and booking reference are fetched back
// from the provider so a forged call cannot mark anything paid.
type ConfirmPayment struct {
	repo     domain.Repository
	payments payment.Gateway
	audit    Auditor
	log      *zap.Logger
	now      clock
}

func NewConfirmPayment(
	repo domain.Repository,
	payments payment.Gateway,
	auditor Auditor,
	log *zap.Logger,
) *ConfirmPayment {
	return &ConfirmPayment{repo: repo, payments: payments, audit: auditor, log: log, now: time.Now}
}

// Execute returns the updated booking, or nil when the payment is not
// approved yet or was already recorded.
func (uc *ConfirmPayment) Execute(ctx context.Context, paymentID string) (*models.Booking, error) {
	p, err := uc.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !p.Approved() {
		uc.log.Info("payment not approved yet",
			zap.String("payment_id", paymentID),
			zap.String("status", p.Status),
		)
		return nil, nil
	}

	var cancelled bool
	b, changed, err := mutateBooking(ctx, uc.repo, byReference(p.Reference), func(b *models.Booking) (bool, error) {
		if domain.PaymentStatus(b.PaymentStatus) == domain.PaymentPaid {
			return false, nil
		}
		cancelled = domain.Status(b.Status) == domain.StatusCancelled
		domain.RecordPayment(b, uc.now())
		b.PaymentAmount = p.Amount
		b.PaymentOption = string(domain.PaymentOnline)
		return true, nil
	})
	if err != nil || !changed {
		return nil, err
	}

	meta := map[string]any{
		"payment_id": p.ID,
		"amount":     p.Amount.StringFixed(2),
	}
	action := "booking_paid_online"
	if cancelled {
		action = "booking_paid_after_cancel"
		uc.log.Warn("payment received for a cancelled booking",
			zap.String("reference", p.Reference),
			zap.String("payment_id", p.ID),
		)
	}
	effects{audit: uc.audit}.record(b.Shop.OwnerID, nil, action, b, meta)

	return b, nil
}
