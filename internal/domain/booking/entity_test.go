package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusPending, Status("ARCHIVED"), false},
	}

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			b := &models.Booking{Status: string(tt.from)}
			err := Transition(b, tt.to, now)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, string(tt.to), b.Status)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, string(tt.from), b.Status)
		})
	}
}

func TestTransitionStampsTimes(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	b := &models.Booking{Status: string(StatusPending)}
	require.NoError(t, Cancel(b, now))
	require.NotNil(t, b.CancelledAt)
	assert.Equal(t, now, *b.CancelledAt)

	b = &models.Booking{Status: string(StatusConfirmed)}
	require.NoError(t, Complete(b, now))
	require.NotNil(t, b.CompletedAt)
}

func TestReserves(t *testing.T) {
	assert.True(t, StatusPending.Reserves())
	assert.True(t, StatusConfirmed.Reserves())
	assert.True(t, StatusCompleted.Reserves())
	assert.False(t, StatusCancelled.Reserves())
}

func TestSetPayment(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	b := &models.Booking{Status: string(StatusCompleted), PaymentStatus: string(PaymentUnpaid)}
	require.NoError(t, SetPayment(b, PaymentPaid, now))
	assert.Equal(t, string(PaymentPaid), b.PaymentStatus)
	require.NotNil(t, b.PaidAt)

	require.NoError(t, SetPayment(b, PaymentRefunded, now))
	assert.Equal(t, string(PaymentRefunded), b.PaymentStatus)

	assert.ErrorIs(t, SetPayment(b, PaymentRefunded, now), ErrInvalidPayment)
	assert.ErrorIs(t, SetPayment(b, PaymentStatus("LATER"), now), ErrInvalidPayment)

	cancelled := &models.Booking{Status: string(StatusCancelled)}
	assert.ErrorIs(t, MarkPaid(cancelled, now), ErrInvalidPayment)
}
