package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/arrival"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type ArrivalGormRepository struct {
	db *gorm.DB
}

func NewArrivalGormRepository(db *gorm.DB) *ArrivalGormRepository {
	return &ArrivalGormRepository{db: db}
}

// Create stores the worker's arrival for the day. The unique index on
// (worker_id, date) decides between concurrent requests.
func (r *ArrivalGormRepository) Create(ctx context.Context, a *models.WorkerArrival) error {
	a.ArrivedAt = a.ArrivedAt.UTC()

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "worker_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(a)
	if res.Error != nil {
		if httperr.IsUniqueViolation(res.Error) {
			return domain.ErrAlreadyRecorded
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyRecorded
	}
	return nil
}

func (r *ArrivalGormRepository) List(ctx context.Context, f domain.ListFilter) ([]models.WorkerArrival, error) {
	q := r.db.WithContext(ctx).
		Model(&models.WorkerArrival{}).
		Joins("JOIN workers ON workers.id = worker_arrivals.worker_id").
		Where("workers.owner_id = ?", f.OwnerID).
		Where("worker_arrivals.date >= ? AND worker_arrivals.date <= ?", f.FromDate, f.ToDate)

	if f.WorkerID != nil {
		q = q.Where("worker_arrivals.worker_id = ?", *f.WorkerID)
	}
	if f.ShopID != nil {
		q = q.Where("worker_arrivals.shop_id = ?", *f.ShopID)
	}

	var out []models.WorkerArrival
	if err := q.Order("worker_arrivals.date ASC, worker_arrivals.arrived_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

var _ domain.Repository = (*ArrivalGormRepository)(nil)
