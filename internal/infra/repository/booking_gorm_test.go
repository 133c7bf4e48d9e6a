package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/testutil"
)

func insertBooking(t *testing.T, repo *BookingGormRepository, f testutil.Fixture, clientID uint, start time.Time, status domain.Status) *models.Booking {
	t.Helper()
	b := &models.Booking{
		Reference: uuid.New(),
		ShopID:    f.Shop.ID,
		WorkerID:  f.Worker.ID,
		ServiceID: f.Service.ID,
		ClientID:  clientID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    string(status),
	}
	require.NoError(t, repo.CreateBooking(context.Background(), b))
	return b
}

func TestListOccupied(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)
	ctx := context.Background()

	client, err := repo.GetOrCreateClient(ctx, f.Owner.ID, "Bia", "11999990000", "")
	require.NoError(t, err)

	day := testutil.Day(2026, 10, 14)
	insertBooking(t, repo, f, client.ID, day.Add(10*time.Hour), domain.StatusPending)
	insertBooking(t, repo, f, client.ID, day.Add(11*time.Hour), domain.StatusCancelled)
	insertBooking(t, repo, f, client.ID, day.Add(12*time.Hour), domain.StatusCompleted)
	insertBooking(t, repo, f, client.ID, day.Add(24*time.Hour+10*time.Hour), domain.StatusConfirmed)

	got, err := repo.ListOccupied(ctx, f.Worker.ID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Start.Equal(day.Add(10*time.Hour)))
	assert.True(t, got[0].End.Equal(day.Add(10*time.Hour+30*time.Minute)))
	assert.True(t, got[1].Start.Equal(day.Add(12*time.Hour)))

	// Touching ranges do not count.
	got, err = repo.ListOccupied(ctx, f.Worker.ID, day.Add(10*time.Hour+30*time.Minute), day.Add(11*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.ListOccupied(ctx, f.Worker.ID, day.Add(10*time.Hour+15*time.Minute), day.Add(10*time.Hour+45*time.Minute))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetOrCreateClientMatchesPhone(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)
	ctx := context.Background()

	first, err := repo.GetOrCreateClient(ctx, f.Owner.ID, "Bia", "11999990000", "")
	require.NoError(t, err)

	second, err := repo.GetOrCreateClient(ctx, f.Owner.ID, "Beatriz", "11999990000", "bia@mail.test")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Bia", second.Name)
	assert.Equal(t, "bia@mail.test", second.Email)

	var count int64
	require.NoError(t, gdb.Model(&models.Client{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLookupsReturnNotFound(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)
	ctx := context.Background()

	_, err := repo.GetShop(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrShopNotFound)

	_, err = repo.GetShopBySlug(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrShopNotFound)

	_, err = repo.GetWorker(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrWorkerNotFound)

	_, err = repo.GetService(ctx, f.Owner.ID+1, f.Service.ID)
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)

	_, err = repo.GetBookingByReference(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	assert.ErrorIs(t, repo.LockWorker(ctx, 999), domain.ErrWorkerNotFound)
}

func TestGetWorkerLoadsServices(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)

	w, err := repo.GetWorker(context.Background(), f.Worker.ID)
	require.NoError(t, err)
	assert.True(t, w.CanPerform(f.Service.ID))
	assert.False(t, w.CanPerform(f.Service.ID+1))
}

func TestGetBookingIsScopedToOwner(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)
	ctx := context.Background()

	client, err := repo.GetOrCreateClient(ctx, f.Owner.ID, "Bia", "11999990000", "")
	require.NoError(t, err)
	b := insertBooking(t, repo, f, client.ID, testutil.Day(2026, 10, 14).Add(9*time.Hour), domain.StatusPending)

	got, err := repo.GetBooking(ctx, f.Owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bia", got.Client.Name)
	assert.Equal(t, "Corte", got.Service.Name)
	assert.Equal(t, f.Shop.Slug, got.Shop.Slug)

	_, err = repo.GetBooking(ctx, f.Owner.ID+1, b.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	byRef, err := repo.GetBookingByReference(ctx, b.Reference.String())
	require.NoError(t, err)
	assert.Equal(t, b.ID, byRef.ID)
}

func TestUpdateBookingKeepsAssociations(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)
	ctx := context.Background()

	client, err := repo.GetOrCreateClient(ctx, f.Owner.ID, "Bia", "11999990000", "")
	require.NoError(t, err)
	b := insertBooking(t, repo, f, client.ID, testutil.Day(2026, 10, 14).Add(9*time.Hour), domain.StatusPending)

	loaded, err := repo.GetBooking(ctx, f.Owner.ID, b.ID)
	require.NoError(t, err)
	loaded.Client.Name = "changed through association"
	require.NoError(t, domain.Cancel(loaded, time.Now()))
	require.NoError(t, repo.UpdateBooking(ctx, loaded, string(domain.StatusPending)))

	again, err := repo.GetBooking(ctx, f.Owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), again.Status)
	assert.NotNil(t, again.CancelledAt)
	assert.Equal(t, "Bia", again.Client.Name)
}

func TestUpdateBookingRejectsStaleCopy(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)
	ctx := context.Background()

	client, err := repo.GetOrCreateClient(ctx, f.Owner.ID, "Bia", "11999990000", "")
	require.NoError(t, err)
	start := testutil.Day(2026, 10, 14).Add(10 * time.Hour)
	first := insertBooking(t, repo, f, client.ID, start, domain.StatusPending)

	stale, err := repo.GetBooking(ctx, f.Owner.ID, first.ID)
	require.NoError(t, err)

	fresh, err := repo.GetBooking(ctx, f.Owner.ID, first.ID)
	require.NoError(t, err)
	require.NoError(t, domain.Cancel(fresh, time.Now()))
	require.NoError(t, repo.UpdateBooking(ctx, fresh, string(domain.StatusPending)))

	insertBooking(t, repo, f, client.ID, start, domain.StatusPending)

	require.NoError(t, domain.MarkPaid(stale, time.Now()))
	err = repo.UpdateBooking(ctx, stale, stale.Status)
	assert.ErrorIs(t, err, domain.ErrBookingChanged)

	live, err := repo.ListOccupied(ctx, f.Worker.ID, start, start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, live, 1)

	again, err := repo.GetBooking(ctx, f.Owner.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), again.Status)
	assert.Equal(t, string(domain.PaymentUnpaid), again.PaymentStatus)
}

func TestLockBookingAndCheckoutURL(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)
	ctx := context.Background()

	client, err := repo.GetOrCreateClient(ctx, f.Owner.ID, "Bia", "11999990000", "")
	require.NoError(t, err)
	b := insertBooking(t, repo, f, client.ID, testutil.Day(2026, 10, 14).Add(9*time.Hour), domain.StatusPending)

	err = repo.Transaction(ctx, func(tx domain.Repository) error {
		assert.ErrorIs(t, tx.LockBooking(ctx, 999), domain.ErrBookingNotFound)
		return tx.LockBooking(ctx, b.ID)
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetCheckoutURL(ctx, b.ID, "https://pay.test/pref-9"))
	got, err := repo.GetBooking(ctx, f.Owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/pref-9", got.CheckoutURL)
	assert.Equal(t, string(domain.StatusPending), got.Status)
}

func TestListBookingsFilters(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)
	ctx := context.Background()

	client, err := repo.GetOrCreateClient(ctx, f.Owner.ID, "Bia", "11999990000", "")
	require.NoError(t, err)

	day := testutil.Day(2026, 10, 14)
	insertBooking(t, repo, f, client.ID, day.Add(14*time.Hour), domain.StatusPending)
	insertBooking(t, repo, f, client.ID, day.Add(9*time.Hour), domain.StatusCancelled)
	insertBooking(t, repo, f, client.ID, day.Add(48*time.Hour), domain.StatusPending)

	all, err := repo.ListBookings(ctx, domain.ListFilter{
		OwnerID: f.Owner.ID,
		From:    day,
		To:      day.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].StartTime.Before(all[1].StartTime))
	assert.Equal(t, "Bia", all[0].Client.Name)

	pending := domain.StatusPending
	only, err := repo.ListBookings(ctx, domain.ListFilter{
		OwnerID:  f.Owner.ID,
		WorkerID: &f.Worker.ID,
		Status:   &pending,
		From:     day,
		To:       day.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, string(domain.StatusPending), only[0].Status)

	none, err := repo.ListBookings(ctx, domain.ListFilter{
		OwnerID: f.Owner.ID + 1,
		From:    day,
		To:      day.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTransactionRollsBack(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		require.NoError(t, tx.LockWorker(ctx, f.Worker.ID))
		_, err := tx.GetOrCreateClient(ctx, f.Owner.ID, "Bia", "11999990000", "")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, gdb.Model(&models.Client{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListBreaksByDateRange(t *testing.T) {
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewBookingGormRepository(gdb)

	require.NoError(t, gdb.Create(&[]models.ShopBreak{
		{ShopID: f.Shop.ID, Date: "2026-10-13", Reason: "holiday"},
		{ShopID: f.Shop.ID, Date: "2026-10-14", StartTime: "13:00", EndTime: "14:00"},
		{ShopID: f.Shop.ID, Date: "2026-10-15", StartTime: "12:00", EndTime: "12:30"},
	}).Error)

	got, err := repo.ListBreaks(context.Background(), f.Shop.ID, "2026-10-14", "2026-10-14")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "13:00", got[0].StartTime)

	scheds, err := repo.ListSchedules(context.Background(), f.Shop.ID)
	require.NoError(t, err)
	assert.Len(t, scheds, 7)
}
