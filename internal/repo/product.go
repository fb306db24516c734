package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ovechkin-dev/marketplace/internal/models"
)

const productViewSelect = "products.*, categories.name AS category_name, users.username AS creator_name"

func (r *GormRepo) productView(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select(productViewSelect).
		Joins("JOIN categories ON categories.id = products.category_id").
		Joins("JOIN users ON users.id = products.user_id")
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	var view models.ProductView
	if err := r.productView(ctx).Where("products.id = ?", id).Take(&view).Error; err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, offset, limit int) (int64, []models.ProductView, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.ProductView, 0, limit)
	if err := r.productView(ctx).
		Order("products.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) GetProductsByCategory(ctx context.Context, categoryID uint) ([]models.ProductView, error) {
	items := make([]models.ProductView, 0)
	if err := r.productView(ctx).
		Where("products.category_id = ?", categoryID).
		Order("products.created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetProductRow fetches the bare product row, used for ownership checks and
// updates where the joined view is not needed.
func (r *GormRepo) GetProductRow(ctx context.Context, id uint) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Save(prod).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
