package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/infra/payment"
	"github.com/BruksfildServices01/salon-booking/internal/infra/repository"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/testutil"
)

// ======================================================
// FAKES
// ======================================================

type auditSpy struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *auditSpy) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *auditSpy) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

type notifySpy struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *notifySpy) Notify(ev notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

type fakeGateway struct {
	checkout payment.Checkout
	err      error
	payments map[string]payment.Payment
}

func (g *fakeGateway) CreateCheckout(context.Context, payment.CheckoutRequest) (payment.Checkout, error) {
	return g.checkout, g.err
}

func (g *fakeGateway) GetPayment(_ context.Context, id string) (payment.Payment, error) {
	return g.payments[id], nil
}

// ======================================================
// ENV
// ======================================================

// Tuesday morning; the fixture day below is the next day.
var now = time.Date(2026, 10, 13, 8, 0, 0, 0, time.UTC)

const wednesday = "2026-10-14"

type env struct {
	db      *gorm.DB
	f       testutil.Fixture
	repo    *repository.BookingGormRepository
	cache   cache.AvailabilityCache
	audit   *auditSpy
	notify  *notifySpy
	gateway *fakeGateway
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := testutil.NewDB(t)
	return &env{
		db:      gdb,
		f:       testutil.Seed(t, gdb),
		repo:    repository.NewBookingGormRepository(gdb),
		cache:   cache.Noop{},
		audit:   &auditSpy{},
		notify:  &notifySpy{},
		gateway: &fakeGateway{payments: map[string]payment.Payment{}},
	}
}

func (e *env) withRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	e.cache = cache.NewRedisAvailabilityCache(client, time.Minute, zap.NewNop())
}

func (e *env) availability() *GetAvailability {
	uc := NewGetAvailability(e.repo, e.cache)
	uc.now = func() time.Time { return now }
	return uc
}

func (e *env) writer() *CreateBooking {
	uc := NewCreateBooking(e.repo, e.cache, e.audit, e.notify, e.gateway, "BRL", nil, zap.NewNop())
	uc.now = func() time.Time { return now }
	return uc
}

func (e *env) input(date, clock string) CreateBookingInput {
	return CreateBookingInput{
		ShopID:      e.f.Shop.ID,
		WorkerID:    e.f.Worker.ID,
		ServiceID:   e.f.Service.ID,
		ClientName:  "Bia",
		ClientPhone: "11999990000",
		ClientEmail: "bia@mail.test",
		Date:        date,
		Time:        clock,
		Channel:     ChannelPublic,
	}
}

func (e *env) slots(t *testing.T, date string) []string {
	t.Helper()
	out, err := e.availability().Execute(context.Background(), AvailabilityInput{
		ShopID:    e.f.Shop.ID,
		WorkerID:  e.f.Worker.ID,
		ServiceID: e.f.Service.ID,
		Date:      date,
	})
	require.NoError(t, err)

	starts := make([]string, 0, len(out.Slots))
	for _, s := range out.Slots {
		starts = append(starts, s.Start)
	}
	return starts
}

func quarterHours(from, to string) []string {
	a, _ := time.Parse("15:04", from)
	b, _ := time.Parse("15:04", to)
	var out []string
	for c := a; !c.After(b); c = c.Add(15 * time.Minute) {
		out = append(out, c.Format("15:04"))
	}
	return out
}

// ======================================================
// AVAILABILITY
// ======================================================

func TestAvailabilityReferenceDay(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.db.Create(&models.ShopBreak{
		ShopID: e.f.Shop.ID, Date: wednesday, StartTime: "13:00", EndTime: "14:00",
	}).Error)

	_, err := e.writer().Execute(ctx, e.input(wednesday, "10:00"))
	require.NoError(t, err)

	var want []string
	want = append(want, quarterHours("09:00", "09:30")...)
	want = append(want, quarterHours("10:30", "12:30")...)
	want = append(want, quarterHours("14:00", "17:30")...)

	assert.Equal(t, want, e.slots(t, wednesday))
}

func TestAvailabilityClosedAndOutOfRangeDays(t *testing.T) {
	e := newEnv(t)

	assert.Empty(t, e.slots(t, "2026-10-18"), "sunday is closed")
	assert.Empty(t, e.slots(t, "2026-10-12"), "yesterday")
	assert.Empty(t, e.slots(t, "2028-01-05"), "beyond the booking horizon")

	require.NoError(t, e.db.Create(&models.ShopBreak{ShopID: e.f.Shop.ID, Date: wednesday, Reason: "holiday"}).Error)
	assert.Empty(t, e.slots(t, wednesday))
}

func TestAvailabilityHonorsMinimumAdvance(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.db.Model(&e.f.Shop).Update("min_advance_minutes", 120).Error)

	// now is 08:00 on the 13th, so the first start is 10:00.
	got := e.slots(t, "2026-10-13")
	require.NotEmpty(t, got)
	assert.Equal(t, "10:00", got[0])
}

func TestAvailabilityRoundsMinimumAdvanceUp(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.db.Model(&e.f.Shop).Update("min_advance_minutes", 120).Error)
	late := now.Add(30 * time.Second)

	uc := e.availability()
	uc.now = func() time.Time { return late }
	out, err := uc.Execute(context.Background(), AvailabilityInput{
		ShopID: e.f.Shop.ID, WorkerID: e.f.Worker.ID, ServiceID: e.f.Service.ID, Date: "2026-10-13",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Slots)
	assert.Equal(t, "10:15", out.Slots[0].Start)

	w := e.writer()
	w.now = func() time.Time { return late }
	_, err = w.Execute(context.Background(), e.input("2026-10-13", out.Slots[0].Start))
	assert.NoError(t, err)
}

func TestAvailabilityRejectsInvalidRequests(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.availability()

	_, err := uc.Execute(ctx, AvailabilityInput{ShopID: e.f.Shop.ID, WorkerID: e.f.Worker.ID, ServiceID: e.f.Service.ID, Date: "14/10/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = uc.Execute(ctx, AvailabilityInput{ShopID: 999, WorkerID: e.f.Worker.ID, ServiceID: e.f.Service.ID, Date: wednesday})
	assert.ErrorIs(t, err, domain.ErrShopNotFound)

	other := models.Service{OwnerID: e.f.Owner.ID, Name: "Barba", DurationMin: 20, Active: true}
	require.NoError(t, e.db.Create(&other).Error)
	_, err = uc.Execute(ctx, AvailabilityInput{ShopID: e.f.Shop.ID, WorkerID: e.f.Worker.ID, ServiceID: other.ID, Date: wednesday})
	assert.ErrorIs(t, err, domain.ErrServiceNotOffered)

	require.NoError(t, e.db.Model(&e.f.Worker).Update("status", models.WorkerInactive).Error)
	_, err = uc.Execute(ctx, AvailabilityInput{ShopID: e.f.Shop.ID, WorkerID: e.f.Worker.ID, ServiceID: e.f.Service.ID, Date: wednesday})
	assert.ErrorIs(t, err, domain.ErrWorkerUnavailable)
}

func TestAvailabilityCacheIsInvalidatedByWrites(t *testing.T) {
	e := newEnv(t)
	e.withRedis(t)
	ctx := context.Background()

	before := e.slots(t, wednesday)
	assert.Contains(t, before, "11:00")

	b, err := e.writer().Execute(ctx, e.input(wednesday, "11:00"))
	require.NoError(t, err)

	after := e.slots(t, wednesday)
	assert.NotContains(t, after, "11:00")
	assert.NotContains(t, after, "10:45")

	upd := NewUpdateStatus(e.repo, e.cache, e.audit, e.notify)
	_, err = upd.Execute(ctx, UpdateStatusInput{
		OwnerID: e.f.Owner.ID, UserID: e.f.Owner.ID, BookingID: b.ID, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)

	assert.Equal(t, before, e.slots(t, wednesday))
}

// ======================================================
// WRITER
// ======================================================

func TestCreateBooking(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.writer().Execute(ctx, e.input(wednesday, "09:00"))
	require.NoError(t, err)

	assert.NotZero(t, b.ID)
	assert.NotEqual(t, uuid.Nil, b.Reference)
	assert.Equal(t, string(domain.StatusPending), b.Status)
	assert.Equal(t, string(domain.PaymentUnpaid), b.PaymentStatus)
	assert.True(t, b.PaymentAmount.Equal(decimal.RequireFromString("50")))
	assert.True(t, b.EndTime.Sub(b.StartTime) == 30*time.Minute)
	assert.Equal(t, "Bia", b.Client.Name)

	stored, err := e.repo.GetBookingByReference(ctx, b.Reference.String())
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)))

	assert.Equal(t, []string{"booking_created"}, e.audit.actions())
	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notify.EventBookingConfirmed, e.notify.events[0].Type)
	assert.Equal(t, b.Reference.String(), e.notify.events[0].Reference)
	assert.Equal(t, "Corte", e.notify.events[0].ServiceName)
}

func TestCreateBookingRejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.db.Create(&models.ShopBreak{
		ShopID: e.f.Shop.ID, Date: wednesday, StartTime: "13:00", EndTime: "14:00",
	}).Error)
	_, err := e.writer().Execute(ctx, e.input(wednesday, "10:00"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input func() CreateBookingInput
		want  error
	}{
		{"overlapping start", func() CreateBookingInput { return e.input(wednesday, "09:45") }, domain.ErrSlotConflict},
		{"same start", func() CreateBookingInput { return e.input(wednesday, "10:00") }, domain.ErrSlotConflict},
		{"runs into break", func() CreateBookingInput { return e.input(wednesday, "12:45") }, domain.ErrShopClosed},
		{"inside break", func() CreateBookingInput { return e.input(wednesday, "13:00") }, domain.ErrShopClosed},
		{"past closing", func() CreateBookingInput { return e.input(wednesday, "17:45") }, domain.ErrShopClosed},
		{"closed day", func() CreateBookingInput { return e.input("2026-10-18", "10:00") }, domain.ErrShopClosed},
		{"in the past", func() CreateBookingInput { return e.input("2026-10-12", "10:00") }, domain.ErrTooSoon},
		{"beyond horizon", func() CreateBookingInput { return e.input("2028-10-12", "10:00") }, domain.ErrTooFar},
		{"bad clock", func() CreateBookingInput { return e.input(wednesday, "25:00") }, domain.ErrInvalidDate},
		{"no phone", func() CreateBookingInput {
			in := e.input(wednesday, "15:00")
			in.ClientPhone = " "
			return in
		}, domain.ErrInvalidClient},
		{"unknown payment option", func() CreateBookingInput {
			in := e.input(wednesday, "15:00")
			in.PaymentOption = "BARTER"
			return in
		}, domain.ErrInvalidPayment},
		{"unknown worker", func() CreateBookingInput {
			in := e.input(wednesday, "15:00")
			in.WorkerID = 999
			return in
		}, domain.ErrWorkerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.writer().Execute(ctx, tt.input())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Touching the end of the existing booking is fine.
	_, err = e.writer().Execute(ctx, e.input(wednesday, "10:30"))
	assert.NoError(t, err)

	assert.Contains(t, e.audit.actions(), "booking_conflict")
}

func TestCreateBookingConcurrentWritersOneWins(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	const writers = 8
	// Every window contains 10:14-10:16, so the requests pairwise overlap.
	clocks := []string{"10:00", "10:05", "09:50", "10:10", "09:55", "10:00", "10:14", "09:46"}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			in := e.input(wednesday, clocks[i])
			_, err := e.writer().Execute(ctx, in)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrSlotConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, ok)
	assert.Equal(t, writers-1, conflicts)

	occupied, err := e.repo.ListOccupied(ctx, e.f.Worker.ID,
		time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Len(t, occupied, 1)
}

func TestCreateBookingDifferentWorkersDoNotConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	shopID := e.f.Shop.ID
	second := models.Worker{
		OwnerID:  e.f.Owner.ID,
		ShopID:   &shopID,
		Name:     "Caio",
		Status:   models.WorkerActive,
		Services: []models.Service{e.f.Service},
	}
	require.NoError(t, e.db.Create(&second).Error)

	_, err := e.writer().Execute(ctx, e.input(wednesday, "10:00"))
	require.NoError(t, err)

	in := e.input(wednesday, "10:00")
	in.WorkerID = second.ID
	_, err = e.writer().Execute(ctx, in)
	assert.NoError(t, err)
}

func TestCreateBookingOnlinePaymentStoresCheckout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.gateway.checkout = payment.Checkout{ID: "pref-1", URL: "https://pay.test/pref-1"}

	in := e.input(wednesday, "09:00")
	in.PaymentOption = domain.PaymentOnline
	b, err := e.writer().Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/pref-1", b.CheckoutURL)

	stored, err := e.repo.GetBookingByReference(ctx, b.Reference.String())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/pref-1", stored.CheckoutURL)
	assert.Equal(t, "https://pay.test/pref-1", e.notify.events[0].CheckoutURL)
}

func TestCreateBookingSurvivesCheckoutFailure(t *testing.T) {
	e := newEnv(t)
	e.gateway.err = payment.ErrDisabled

	in := e.input(wednesday, "09:00")
	in.PaymentOption = domain.PaymentOnline
	b, err := e.writer().Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, b.CheckoutURL)
	assert.NotZero(t, b.ID)
}

// ======================================================
// STATE CHANGES
// ======================================================

func TestUpdateStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.writer().Execute(ctx, e.input(wednesday, "09:00"))
	require.NoError(t, err)

	uc := NewUpdateStatus(e.repo, e.cache, e.audit, e.notify)
	in := UpdateStatusInput{OwnerID: e.f.Owner.ID, UserID: e.f.Owner.ID, BookingID: b.ID}

	in.Status = domain.StatusConfirmed
	got, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)

	in.Status = domain.StatusPending
	_, err = uc.Execute(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	in.Status = domain.StatusCompleted
	got, err = uc.Execute(ctx, in)
	require.NoError(t, err)
	assert.NotNil(t, got.CompletedAt)

	in.Status = domain.StatusCancelled
	_, err = uc.Execute(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	other := in
	other.OwnerID = e.f.Owner.ID + 1
	_, err = uc.Execute(ctx, other)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestCancelledBookingFreesTheSlot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.writer().Execute(ctx, e.input(wednesday, "11:00"))
	require.NoError(t, err)

	uc := NewUpdateStatus(e.repo, e.cache, e.audit, e.notify)
	_, err = uc.Execute(ctx, UpdateStatusInput{
		OwnerID: e.f.Owner.ID, UserID: e.f.Owner.ID, BookingID: b.ID, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)

	_, err = e.writer().Execute(ctx, e.input(wednesday, "11:00"))
	assert.NoError(t, err)

	require.Len(t, e.notify.events, 3)
	assert.Equal(t, notify.EventBookingCancelled, e.notify.events[1].Type)
}

func TestUpdatePayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.writer().Execute(ctx, e.input(wednesday, "09:00"))
	require.NoError(t, err)

	uc := NewUpdatePayment(e.repo, e.audit)
	amount := decimal.RequireFromString("45.50")
	card := domain.PaymentCard

	got, err := uc.Execute(ctx, UpdatePaymentInput{
		OwnerID: e.f.Owner.ID, UserID: e.f.Owner.ID, BookingID: b.ID,
		Status: domain.PaymentPaid, Amount: &amount, Option: &card,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentPaid), got.PaymentStatus)
	assert.Equal(t, "45.50", got.PaymentAmount.StringFixed(2))
	assert.Equal(t, string(domain.PaymentCard), got.PaymentOption)
	assert.NotNil(t, got.PaidAt)

	negative := decimal.RequireFromString("-1")
	_, err = uc.Execute(ctx, UpdatePaymentInput{
		OwnerID: e.f.Owner.ID, BookingID: b.ID, Status: domain.PaymentPaid, Amount: &negative,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestCancelByReference(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.writer().Execute(ctx, e.input(wednesday, "09:00"))
	require.NoError(t, err)

	get := NewGetByReference(e.repo)
	_, err = get.Execute(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	found, err := get.Execute(ctx, b.Reference.String())
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)

	cancel := NewCancelByReference(e.repo, e.cache, e.audit, e.notify)

	// Half an hour before the start with a two hour minimum advance.
	require.NoError(t, e.db.Model(&e.f.Shop).Update("min_advance_minutes", 120).Error)
	cancel.now = func() time.Time { return time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC) }
	_, err = cancel.Execute(ctx, b.Reference.String())
	assert.ErrorIs(t, err, domain.ErrCancelTooLate)

	cancel.now = func() time.Time { return now }
	got, err := cancel.Execute(ctx, b.Reference.String())
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)

	_, err = cancel.Execute(ctx, b.Reference.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestConfirmPayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.writer().Execute(ctx, e.input(wednesday, "09:00"))
	require.NoError(t, err)

	e.gateway.payments["100"] = payment.Payment{ID: "100", Status: "pending", Reference: b.Reference.String()}
	e.gateway.payments["101"] = payment.Payment{
		ID: "101", Status: "approved", Reference: b.Reference.String(), Amount: decimal.RequireFromString("50"),
	}

	uc := NewConfirmPayment(e.repo, e.gateway, e.audit, zap.NewNop())

	got, err := uc.Execute(ctx, "100")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = uc.Execute(ctx, "101")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, string(domain.PaymentPaid), got.PaymentStatus)
	assert.Equal(t, string(domain.PaymentOnline), got.PaymentOption)

	again, err := uc.Execute(ctx, "101")
	require.NoError(t, err)
	assert.Nil(t, again, "already recorded")
}

func TestConfirmPaymentAfterCancelAndRebook(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.writer().Execute(ctx, e.input(wednesday, "10:00"))
	require.NoError(t, err)

	cancel := NewCancelByReference(e.repo, e.cache, e.audit, e.notify)
	cancel.now = func() time.Time { return now }
	_, err = cancel.Execute(ctx, first.Reference.String())
	require.NoError(t, err)

	second, err := e.writer().Execute(ctx, e.input(wednesday, "10:00"))
	require.NoError(t, err)

	// The client paid the first booking before cancelling it.
	e.gateway.payments["200"] = payment.Payment{
		ID: "200", Status: "approved", Reference: first.Reference.String(), Amount: decimal.RequireFromString("50"),
	}
	got, err := NewConfirmPayment(e.repo, e.gateway, e.audit, zap.NewNop()).Execute(ctx, "200")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)
	assert.Equal(t, string(domain.PaymentPaid), got.PaymentStatus)
	assert.Contains(t, e.audit.actions(), "booking_paid_after_cancel")

	occupied, err := e.repo.ListOccupied(ctx, e.f.Worker.ID,
		time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 14, 10, 30, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Len(t, occupied, 1)

	kept, err := e.repo.GetBooking(ctx, e.f.Owner.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), kept.Status)
	assert.Equal(t, string(domain.PaymentUnpaid), kept.PaymentStatus)
}

func TestUpdatePaymentKeepsConcurrentCancel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.writer().Execute(ctx, e.input(wednesday, "10:00"))
	require.NoError(t, err)

	upd := NewUpdateStatus(e.repo, e.cache, e.audit, e.notify)
	_, err = upd.Execute(ctx, UpdateStatusInput{
		OwnerID: e.f.Owner.ID, UserID: e.f.Owner.ID, BookingID: b.ID, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)

	// b still says PENDING; the payment use case must not trust it.
	_, err = NewUpdatePayment(e.repo, e.audit).Execute(ctx, UpdatePaymentInput{
		OwnerID: e.f.Owner.ID, UserID: e.f.Owner.ID, BookingID: b.ID, Status: domain.PaymentPaid,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	stored, err := e.repo.GetBooking(ctx, e.f.Owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), stored.Status)
	assert.Equal(t, string(domain.PaymentUnpaid), stored.PaymentStatus)
}

// ======================================================
// LISTING
// ======================================================

func TestListBookings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, c := range []string{"15:00", "09:00"} {
		_, err := e.writer().Execute(ctx, e.input(wednesday, c))
		require.NoError(t, err)
	}
	_, err := e.writer().Execute(ctx, e.input("2026-11-03", "09:00"))
	require.NoError(t, err)

	in := ListInput{OwnerID: e.f.Owner.ID, ShopID: e.f.Shop.ID}

	day, err := NewListBookingsByDate(e.repo).Execute(ctx, in, wednesday)
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, 9, day[0].StartTime.Hour())
	assert.Equal(t, "Corte", day[0].ServiceName)

	month, err := NewListBookingsByMonth(e.repo).Execute(ctx, in, 2026, 10)
	require.NoError(t, err)
	assert.Len(t, month, 2)

	_, err = NewListBookingsByMonth(e.repo).Execute(ctx, in, 2026, 13)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	foreign := in
	foreign.OwnerID++
	_, err = NewListBookingsByDate(e.repo).Execute(ctx, foreign, wednesday)
	assert.ErrorIs(t, err, domain.ErrShopNotFound)
}
