package repository

import (
	"fmt"

	"gorm.io/gorm"

	"smpanel/internal/models"
)

// PanelRepository handles panel database operations.
type PanelRepository struct {
	db *gorm.DB
}

func NewPanelRepository(db *gorm.DB) *PanelRepository {
	return &PanelRepository{db: db}
}

// Create inserts a panel. A taken name yields ErrDuplicateName.
func (r *PanelRepository) Create(panel *models.Panel) error {
	n, err := r.CountByName(panel.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateName
	}
	if panel.Status == "" {
		panel.Status = models.PanelStatusActive
	}
	if panel.Type == "" {
		panel.Type = models.PanelTypeXUI
	}
	if err := r.db.Create(panel).Error; err != nil {
		return fmt.Errorf("create panel: %w", translate(err))
	}
	return nil
}

// FindByID returns a panel by ID.
func (r *PanelRepository) FindByID(id uint) (*models.Panel, error) {
	var panel models.Panel
	if err := r.db.Where("id = ?", id).First(&panel).Error; err != nil {
		return nil, translate(err)
	}
	return &panel, nil
}

// FindAll returns every panel ordered by id.
func (r *PanelRepository) FindAll() ([]models.Panel, error) {
	var panels []models.Panel
	if err := r.db.Order("id").Find(&panels).Error; err != nil {
		return nil, fmt.Errorf("list panels: %w", err)
	}
	return panels, nil
}

// FindByIDs returns panels in the order of ids; missing ids are skipped.
func (r *PanelRepository) FindByIDs(ids []uint) ([]models.Panel, error) {
	if len(ids) == 0 {
		return []models.Panel{}, nil
	}
	var found []models.Panel
	if err := r.db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("list panels: %w", err)
	}
	byID := make(map[uint]models.Panel, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	panels := make([]models.Panel, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			panels = append(panels, p)
		}
	}
	return panels, nil
}

// FindByName returns a panel by name.
func (r *PanelRepository) FindByName(name string) (*models.Panel, error) {
	var panel models.Panel
	if err := r.db.Where("name = ?", name).First(&panel).Error; err != nil {
		return nil, translate(err)
	}
	return &panel, nil
}

// CountByName returns how many panels use name.
func (r *PanelRepository) CountByName(name string) (int64, error) {
	var n int64
	err := r.db.Model(&models.Panel{}).Where("name = ?", name).Count(&n).Error
	return n, err
}

// Update updates panel fields.
func (r *PanelRepository) Update(id uint, updates map[string]interface{}) error {
	res := r.db.Model(&models.Panel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update panel %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus sets the status column.
func (r *PanelRepository) UpdateStatus(id uint, status string) error {
	return r.Update(id, map[string]interface{}{"status": status})
}

// Delete removes a panel and its category associations.
func (r *PanelRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("panel_id = ?", id).Delete(&models.CategoryPanel{}).Error; err != nil {
			return fmt.Errorf("detach panel %d: %w", id, err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Panel{})
		if res.Error != nil {
			return fmt.Errorf("delete panel %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Count returns the number of panels.
func (r *PanelRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Panel{}).Count(&n).Error
	return n, err
}

// CountByStatus returns the number of panels with the given status.
func (r *PanelRepository) CountByStatus(status string) (int64, error) {
	var n int64
	err := r.db.Model(&models.Panel{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
