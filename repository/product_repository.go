package repository

import (
	"context"
	"errors"

	"checkout-service/models"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository defines the interface for product reads and the stock
// decrement performed after a verified payment.
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (*models.Product, error)
	DecrementStock(ctx context.Context, productID string, quantity int) error
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// DecrementStock performs a single conditional update guarded by the current
// stock level. The guard, not any in-process lock, is what keeps stock from
// going negative under concurrent orders.
func (r *GormProductRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ? AND is_available = ?", productID, quantity, true).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
