package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// 2026-10-14 is a Wednesday.
var wednesday = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

func week() []models.ShopSchedule {
	return []models.ShopSchedule{
		{Weekday: int(time.Monday), OpenTime: "09:00", CloseTime: "18:00"},
		{Weekday: int(time.Wednesday), OpenTime: "09:00", CloseTime: "18:00"},
		{Weekday: int(time.Saturday), OpenTime: "10:00", CloseTime: "14:00", Closed: true},
	}
}

func TestResolveWithoutBreaksEqualsWeekday(t *testing.T) {
	got, err := Resolve(week(), nil, wednesday, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []Interval{iv(9, 0, 18, 0)}, got)
}

func TestResolveBreakOnOtherDayIsIgnored(t *testing.T) {
	breaks := []models.ShopBreak{{Date: "2026-10-15", StartTime: "13:00", EndTime: "14:00"}}

	got, err := Resolve(week(), breaks, wednesday, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []Interval{iv(9, 0, 18, 0)}, got)
}

func TestResolveInnerBreakSplitsInTwo(t *testing.T) {
	brk := models.ShopBreak{Date: "2026-10-14", StartTime: "13:00", EndTime: "14:00"}

	got, err := Resolve(week(), []models.ShopBreak{brk}, wednesday, time.UTC)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// union of the two pieces plus the break is the original window
	assert.Equal(t, iv(9, 0, 13, 0), got[0])
	assert.Equal(t, iv(14, 0, 18, 0), got[1])
	assert.Equal(t,
		[]Interval{iv(9, 0, 18, 0)},
		Normalize(append(got, iv(13, 0, 14, 0))),
	)
}

func TestResolvePartialBreak(t *testing.T) {
	brk := models.ShopBreak{Date: "2026-10-14", StartTime: "08:00", EndTime: "10:00"}

	got, err := Resolve(week(), []models.ShopBreak{brk}, wednesday, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []Interval{iv(10, 0, 18, 0)}, got)
}

func TestResolveClosedDays(t *testing.T) {
	tuesday := wednesday.AddDate(0, 0, -1)
	got, err := Resolve(week(), nil, tuesday, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, got, "no schedule row means closed")

	saturday := wednesday.AddDate(0, 0, 3)
	got, err = Resolve(week(), nil, saturday, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, got, "closed flag")

	holiday := models.ShopBreak{Date: "2026-10-14", Reason: "holiday"}
	got, err = Resolve(week(), []models.ShopBreak{holiday}, wednesday, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, got, "full-day break")
}

func TestResolveUsesShopTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 02:00 UTC on the 15th is still the 14th in Sao Paulo.
	instant := time.Date(2026, 10, 15, 2, 0, 0, 0, time.UTC)

	got, err := Resolve(week(), nil, instant, loc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2026, 10, 14, 9, 0, 0, 0, loc), got[0].Start)
	assert.Equal(t, time.Date(2026, 10, 14, 18, 0, 0, 0, loc), got[0].End)
}

func TestResolveInvalidRows(t *testing.T) {
	bad := []models.ShopSchedule{{Weekday: int(time.Wednesday), OpenTime: "18:00", CloseTime: "09:00"}}
	_, err := Resolve(bad, nil, wednesday, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestValidateWeek(t *testing.T) {
	assert.NoError(t, ValidateWeek(week()))

	dup := append(week(), models.ShopSchedule{Weekday: int(time.Monday), OpenTime: "10:00", CloseTime: "11:00"})
	assert.ErrorIs(t, ValidateWeek(dup), ErrInvalidSchedule)

	out := []models.ShopSchedule{{Weekday: 7, OpenTime: "10:00", CloseTime: "11:00"}}
	assert.ErrorIs(t, ValidateWeek(out), ErrInvalidSchedule)
}

func TestValidateBreak(t *testing.T) {
	assert.NoError(t, ValidateBreak(models.ShopBreak{Date: "2026-12-25"}))
	assert.NoError(t, ValidateBreak(models.ShopBreak{Date: "2026-12-24", StartTime: "12:00", EndTime: "18:00"}))
	assert.Error(t, ValidateBreak(models.ShopBreak{Date: "24/12/2026"}))
	assert.Error(t, ValidateBreak(models.ShopBreak{Date: "2026-12-24", StartTime: "12:00"}))
}
