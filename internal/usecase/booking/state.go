package booking

import (
	"context"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type loader func(ctx context.Context, repo domain.Repository) (*models.Booking, error)

// mutateBooking applies change to the committed state of a booking. The row
// is locked and reloaded inside one transaction, so change never sees a
// copy read before a concurrent cancel or payment. change reports whether
// anything needs writing.
func mutateBooking(
	ctx context.Context,
	repo domain.Repository,
	load loader,
	change func(b *models.Booking) (bool, error),
) (*models.Booking, bool, error) {

	var (
		out     *models.Booking
		changed bool
	)
	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		b, err := load(ctx, tx)
		if err != nil {
			return err
		}
		if err := tx.LockBooking(ctx, b.ID); err != nil {
			return err
		}
		if b, err = load(ctx, tx); err != nil {
			return err
		}

		from := b.Status
		if changed, err = change(b); err != nil || !changed {
			out = b
			return err
		}
		if err := tx.UpdateBooking(ctx, b, from); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, changed, nil
}

func byID(ownerID, bookingID uint) loader {
	return func(ctx context.Context, repo domain.Repository) (*models.Booking, error) {
		return repo.GetBooking(ctx, ownerID, bookingID)
	}
}

func byReference(ref string) loader {
	return func(ctx context.Context, repo domain.Repository) (*models.Booking, error) {
		return repo.GetBookingByReference(ctx, ref)
	}
}
