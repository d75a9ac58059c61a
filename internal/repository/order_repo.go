package repository

import (
	"fmt"

	"gorm.io/gorm"

	"smpanel/internal/models"
)

// OrderRepository gives the bot the small slice of order access it needs.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CountByProducts counts orders referencing any of the products.
func (r *OrderRepository) CountByProducts(productIDs []uint) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.Model(&models.Order{}).Where("product_id IN ?", productIDs).Count(&n).Error
	return n, err
}

// DetachProducts clears product_id on orders referencing the products and
// returns the number of affected orders.
func (r *OrderRepository) DetachProducts(productIDs []uint) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.db.Model(&models.Order{}).
		Where("product_id IN ?", productIDs).
		Update("product_id", nil)
	if res.Error != nil {
		return 0, fmt.Errorf("detach orders: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Count returns the number of orders.
func (r *OrderRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Order{}).Count(&n).Error
	return n, err
}
