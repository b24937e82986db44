package repository

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/models"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return apperr.E(apperr.KindPersistenceFailed, "repository.Orders.Create", err)
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, apperr.E(apperr.KindPersistenceFailed, "repository.Orders.List", err)
	}
	return orders, nil
}

// Cancel marks an order cancelled. A missing or already cancelled order is
// reported as not found.
func (r *OrderRepository) Cancel(ctx context.Context, id string) error {
	const op = "repository.Orders.Cancel"

	oid, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return apperr.Errorf(apperr.KindNotFound, op, "order not found or already cancelled")
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND is_cancelled = ?", oid, false).
		Update("is_cancelled", true)
	if res.Error != nil {
		return apperr.E(apperr.KindPersistenceFailed, op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Errorf(apperr.KindNotFound, op, "order not found or already cancelled")
	}
	return nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, apperr.E(apperr.KindPersistenceFailed, "repository.Orders.Count", err)
	}
	return n, nil
}
