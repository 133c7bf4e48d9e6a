package booking

import "github.com/BruksfildServices01/salon-booking/internal/httperr"

var (
	ErrShopClosed      = httperr.New(httperr.KindClosed, "shop_closed", "The shop is not open for the requested time.")
	ErrSlotConflict    = httperr.New(httperr.KindConflict, "slot_conflict", "The requested time is already booked.")
	ErrInvalidDuration = httperr.New(httperr.KindValidation, "invalid_duration", "Service duration must be positive.")
	ErrTooSoon         = httperr.New(httperr.KindValidation, "too_soon", "The requested time is too close to now.")
	ErrTooFar          = httperr.New(httperr.KindValidation, "too_far", "The requested time is too far ahead.")

	ErrShopNotFound    = httperr.New(httperr.KindNotFound, "shop_not_found", "Shop not found.")
	ErrWorkerNotFound  = httperr.New(httperr.KindNotFound, "worker_not_found", "Worker not found.")
	ErrServiceNotFound = httperr.New(httperr.KindNotFound, "service_not_found", "Service not found.")
	ErrClientNotFound  = httperr.New(httperr.KindNotFound, "client_not_found", "Client not found.")
	ErrBookingNotFound = httperr.New(httperr.KindNotFound, "booking_not_found", "Booking not found.")

	ErrWorkerUnavailable = httperr.New(httperr.KindValidation, "worker_unavailable", "The worker does not take bookings at this shop.")
	ErrServiceNotOffered = httperr.New(httperr.KindValidation, "service_not_offered", "The worker does not perform this service.")

	ErrInvalidDate   = httperr.New(httperr.KindValidation, "invalid_date_or_time", "Invalid date or time.")
	ErrInvalidClient = httperr.New(httperr.KindValidation, "invalid_client", "Client name and phone are required.")
	ErrCancelTooLate = httperr.New(httperr.KindValidation, "cancel_too_late", "The booking can no longer be cancelled online.")

	ErrInvalidTransition = httperr.New(httperr.KindConflict, "invalid_transition", "The booking cannot move to that status.")
	ErrBookingChanged    = httperr.New(httperr.KindConflict, "booking_changed", "The booking was changed by another request. Reload and try again.")
	ErrInvalidPayment    = httperr.New(httperr.KindValidation, "invalid_payment", "Invalid payment data.")
)
