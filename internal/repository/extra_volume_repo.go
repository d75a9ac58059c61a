package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"smpanel/internal/models"
)

// ExtraVolumeField names one settable column of extra_volume_settings.
type ExtraVolumeField string

const (
	FieldPricePerGB ExtraVolumeField = "price_per_gb"
	FieldMinVolume  ExtraVolumeField = "min_volume"
	FieldMaxVolume  ExtraVolumeField = "max_volume"
	FieldIsEnabled  ExtraVolumeField = "is_enabled"
)

// ExtraVolumeRepository handles per-category extra volume settings.
type ExtraVolumeRepository struct {
	db *gorm.DB
}

func NewExtraVolumeRepository(db *gorm.DB) *ExtraVolumeRepository {
	return &ExtraVolumeRepository{db: db}
}

// FindByCategory returns the stored row or ErrNotFound.
func (r *ExtraVolumeRepository) FindByCategory(categoryID uint) (*models.ExtraVolumeSetting, error) {
	var s models.ExtraVolumeSetting
	if err := r.db.Where("category_id = ?", categoryID).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// FindOrDefault returns the stored row, or the defaults when none exists yet.
func (r *ExtraVolumeRepository) FindOrDefault(categoryID uint) (*models.ExtraVolumeSetting, error) {
	s, err := r.FindByCategory(categoryID)
	if errors.Is(err, ErrNotFound) {
		return models.NewExtraVolumeSetting(categoryID), nil
	}
	return s, err
}

// Upsert sets one field, creating the row with defaults first when missing.
func (r *ExtraVolumeRepository) Upsert(categoryID uint, field ExtraVolumeField, value interface{}) (*models.ExtraVolumeSetting, error) {
	switch field {
	case FieldPricePerGB, FieldMinVolume, FieldMaxVolume, FieldIsEnabled:
	default:
		return nil, fmt.Errorf("unknown extra volume field %q", field)
	}

	var out *models.ExtraVolumeSetting
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var s models.ExtraVolumeSetting
		err := tx.Where("category_id = ?", categoryID).First(&s).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s = *models.NewExtraVolumeSetting(categoryID)
			if err := tx.Create(&s).Error; err != nil {
				return fmt.Errorf("create extra volume settings: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("load extra volume settings: %w", err)
		}

		// Update with a map so zero values and false are written.
		if err := tx.Model(&s).Updates(map[string]interface{}{string(field): value}).Error; err != nil {
			return fmt.Errorf("update %s: %w", field, err)
		}
		if err := tx.Where("id = ?", s.ID).First(&s).Error; err != nil {
			return fmt.Errorf("reload extra volume settings: %w", err)
		}
		out = &s
		return nil
	})
	return out, err
}
