package repository

import (
	"fmt"

	"gorm.io/gorm"

	"smpanel/internal/models"
)

// ProductRepository handles product database operations.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) withCategoryName() *gorm.DB {
	return r.db.Model(&models.Product{}).
		Select("products.*, COALESCE(categories.name, ?) AS category_name", models.UncategorizedName).
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
}

func (r *ProductRepository) nameTaken(name string, exceptID uint) (bool, error) {
	var n int64
	q := r.db.Model(&models.Product{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check product name: %w", err)
	}
	return n > 0, nil
}

// NameTaken reports whether a product called name exists.
func (r *ProductRepository) NameTaken(name string) (bool, error) {
	return r.nameTaken(name, 0)
}

func (r *ProductRepository) categoryExists(id uint) (bool, error) {
	return NewCategoryRepository(r.db).Exists(id)
}

// Create inserts a product. Fails with ErrDuplicateName or ErrUnknownCategory.
func (r *ProductRepository) Create(product *models.Product) error {
	taken, err := r.nameTaken(product.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateName
	}
	if product.CategoryID != nil {
		ok, err := r.categoryExists(*product.CategoryID)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return ErrUnknownCategory
		}
	}
	if product.UsersLimit == 0 {
		product.UsersLimit = 1
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", translate(err))
	}
	return nil
}

// FindAll returns all products ordered by name with category names filled in.
func (r *ProductRepository) FindAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.withCategoryName().Order("products.name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// FindByID returns a product by ID with its category name.
func (r *ProductRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.withCategoryName().Where("products.id = ?", id).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByCategory returns products of one category ordered by name.
func (r *ProductRepository) FindByCategory(categoryID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.withCategoryName().
		Where("products.category_id = ?", categoryID).
		Order("products.name").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list products of category %d: %w", categoryID, err)
	}
	return products, nil
}

// FindUncategorized returns products without a category.
func (r *ProductRepository) FindUncategorized() ([]models.Product, error) {
	var products []models.Product
	err := r.withCategoryName().
		Where("products.category_id IS NULL").
		Order("products.name").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list uncategorized products: %w", err)
	}
	return products, nil
}

// Update updates product fields. Renames and category moves are validated
// the same way as Create.
func (r *ProductRepository) Update(id uint, updates map[string]interface{}) error {
	if name, ok := updates["name"].(string); ok {
		taken, err := r.nameTaken(name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}
	}
	if cid, ok := updates["category_id"].(uint); ok {
		exists, err := r.categoryExists(cid)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !exists {
			return ErrUnknownCategory
		}
	}
	res := r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update product %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany deletes products and detaches their orders.
// It returns how many products were deleted and how many orders lost their product.
func (r *ProductRepository) DeleteMany(ids []uint) (deleted, orphaned int64, err error) {
	if len(ids) == 0 {
		return 0, 0, nil
	}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		orders := NewOrderRepository(tx)
		n, err := orders.DetachProducts(ids)
		if err != nil {
			return err
		}
		orphaned = n
		res := tx.Where("id IN ?", ids).Delete(&models.Product{})
		if res.Error != nil {
			return fmt.Errorf("delete products: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return deleted, orphaned, nil
}

// Count returns the number of products.
func (r *ProductRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Product{}).Count(&n).Error
	return n, err
}
