package repository

import (
	"fmt"

	"gorm.io/gorm"

	"smpanel/internal/models"
)

// CategoryRepository handles categories and their panel associations.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts the category, then one association row per panel id in order.
// The inserts are not wrapped in a transaction.
func (r *CategoryRepository) Create(name, description string, panelIDs []uint, ports []int) (*models.Category, error) {
	taken, err := r.NameTaken(name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	cat := &models.Category{Name: name, Description: description}
	cat.SetPorts(ports)
	if err := r.db.Create(cat).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", translate(err))
	}

	seen := make(map[uint]bool, len(panelIDs))
	for i, pid := range panelIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		link := models.CategoryPanel{CategoryID: cat.ID, PanelID: pid, Position: i}
		if err := r.db.Create(&link).Error; err != nil {
			return nil, fmt.Errorf("link category %d to panel %d: %w", cat.ID, pid, err)
		}
		cat.PanelIDs = append(cat.PanelIDs, pid)
	}
	return cat, nil
}

// NameTaken reports whether a category called name exists.
func (r *CategoryRepository) NameTaken(name string) (bool, error) {
	var n int64
	if err := r.db.Model(&models.Category{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return n > 0, nil
}

// FindAll returns categories ordered by name with their panel ids.
func (r *CategoryRepository) FindAll() ([]models.Category, error) {
	var cats []models.Category
	if err := r.db.Order("name").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		return cats, nil
	}

	var links []models.CategoryPanel
	if err := r.db.Order("category_id, position").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list category panels: %w", err)
	}
	byCat := make(map[uint][]uint)
	for _, l := range links {
		byCat[l.CategoryID] = append(byCat[l.CategoryID], l.PanelID)
	}
	for i := range cats {
		cats[i].PanelIDs = byCat[cats[i].ID]
	}
	return cats, nil
}

// FindByID returns one category with its panel ids.
func (r *CategoryRepository) FindByID(id uint) (*models.Category, error) {
	var cat models.Category
	if err := r.db.Where("id = ?", id).First(&cat).Error; err != nil {
		return nil, translate(err)
	}
	ids, err := r.panelIDs(id)
	if err != nil {
		return nil, err
	}
	cat.PanelIDs = ids
	return &cat, nil
}

// Exists reports whether a category with id exists.
func (r *CategoryRepository) Exists(id uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *CategoryRepository) panelIDs(categoryID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.CategoryPanel{}).
		Where("category_id = ?", categoryID).
		Order("position").
		Pluck("panel_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("category %d panels: %w", categoryID, err)
	}
	return ids, nil
}

// PanelsOf returns the panels linked to a category in insertion order.
func (r *CategoryRepository) PanelsOf(categoryID uint) ([]models.Panel, error) {
	var panels []models.Panel
	err := r.db.Model(&models.Panel{}).
		Joins("JOIN category_panels ON category_panels.panel_id = panels.id").
		Where("category_panels.category_id = ?", categoryID).
		Order("category_panels.position").
		Find(&panels).Error
	if err != nil {
		return nil, fmt.Errorf("category %d panels: %w", categoryID, err)
	}
	return panels, nil
}

// DeleteMany removes categories, uncategorises their products and drops
// their associations and extra-volume rows. Returns the number of deleted categories.
func (r *CategoryRepository) DeleteMany(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("category_id IN ?", ids).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("uncategorise products: %w", err)
		}
		if err := tx.Where("category_id IN ?", ids).Delete(&models.CategoryPanel{}).Error; err != nil {
			return fmt.Errorf("delete category panels: %w", err)
		}
		if err := tx.Where("category_id IN ?", ids).Delete(&models.ExtraVolumeSetting{}).Error; err != nil {
			return fmt.Errorf("delete extra volume settings: %w", err)
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Category{})
		if res.Error != nil {
			return fmt.Errorf("delete categories: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// Count returns the number of categories.
func (r *CategoryRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Category{}).Count(&n).Error
	return n, err
}
