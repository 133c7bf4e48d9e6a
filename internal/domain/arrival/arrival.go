package arrival

import (
	"context"
	"math"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

var (
	ErrAlreadyRecorded = httperr.New(httperr.KindConflict, "arrival_already_recorded", "Arrival already recorded for this day.")
	ErrNotAssigned     = httperr.New(httperr.KindValidation, "worker_not_assigned", "The worker is not assigned to a shop.")
)

// Lateness compares an arrival with the opening time of the day. Arrivals
// within grace are on time; past it, the minutes are counted from opening.
// A zero opening (closed day) is never late.
func Lateness(arrivedAt, opening time.Time, grace time.Duration) (bool, int) {
	if opening.IsZero() || !arrivedAt.After(opening.Add(grace)) {
		return false, 0
	}
	late := arrivedAt.Sub(opening)
	return true, int(math.Ceil(late.Minutes()))
}

type Repository interface {
	// Create fails with ErrAlreadyRecorded when the worker already has an
	// arrival on that date.
	Create(ctx context.Context, a *models.WorkerArrival) error
	List(ctx context.Context, f ListFilter) ([]models.WorkerArrival, error)
}

type ListFilter struct {
	OwnerID  uint
	WorkerID *uint
	ShopID   *uint
	// FromDate and ToDate are inclusive shop-local days.
	FromDate string
	ToDate   string
}
