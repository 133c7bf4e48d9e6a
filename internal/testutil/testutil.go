// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/salon-booking/internal/db"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// NewDB opens a migrated in-memory SQLite database. The pool is held to a
// single connection so the memory database is shared and transactions
// serialize the way row locks do on Postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

type Fixture struct {
	Owner   models.User
	Shop    models.Shop
	Worker  models.Worker
	Service models.Service
}

// Weekdays opens Monday to Saturday 09:00-18:00; Sunday is closed.
func Weekdays(shopID uint) []models.ShopSchedule {
	rows := []models.ShopSchedule{{ShopID: shopID, Weekday: 0, Closed: true}}
	for wd := 1; wd <= 6; wd++ {
		rows = append(rows, models.ShopSchedule{
			ShopID:    shopID,
			Weekday:   wd,
			OpenTime:  "09:00",
			CloseTime: "18:00",
		})
	}
	return rows
}

// Seed creates one owner with a UTC shop open on weekdays, one active worker
// and a 30 minute service the worker performs. The shop takes bookings with
// no minimum advance.
func Seed(t *testing.T, gdb *gorm.DB) Fixture {
	t.Helper()

	f := Fixture{
		Owner: models.User{
			Name:         "Owner",
			Email:        "owner@salon.test",
			PasswordHash: "x",
			Role:         models.RoleOwner,
		},
	}
	require.NoError(t, gdb.Create(&f.Owner).Error)

	f.Shop = models.Shop{
		OwnerID:           f.Owner.ID,
		Name:              "Studio Centro",
		Slug:              "studio-centro",
		Timezone:          "UTC",
		MinAdvanceMinutes: 0,
		MaxAdvanceDays:    365,
		SlotStepMinutes:   15,
	}
	require.NoError(t, gdb.Create(&f.Shop).Error)
	// GORM skips zero values that carry a column default on insert.
	require.NoError(t, gdb.Model(&f.Shop).Update("min_advance_minutes", 0).Error)
	f.Shop.MinAdvanceMinutes = 0

	require.NoError(t, gdb.Create(Weekdays(f.Shop.ID)).Error)

	f.Service = models.Service{
		OwnerID:     f.Owner.ID,
		Name:        "Corte",
		DurationMin: 30,
		Price:       decimal.RequireFromString("50.00"),
		Active:      true,
		Category:    "hair",
	}
	require.NoError(t, gdb.Create(&f.Service).Error)

	shopID := f.Shop.ID
	f.Worker = models.Worker{
		OwnerID:  f.Owner.ID,
		ShopID:   &shopID,
		Name:     "Ana",
		Status:   models.WorkerActive,
		Services: []models.Service{f.Service},
	}
	require.NoError(t, gdb.Create(&f.Worker).Error)

	return f
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
