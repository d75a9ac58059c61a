package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"smpanel/internal/models"
)

// Migrate ensures the tables used by the bot exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.Panel{},
		&models.Category{},
		&models.CategoryPanel{},
		&models.Product{},
		&models.ExtraVolumeSetting{},
		// Owned by the storefront; migrated so foreign reads work on fresh installs.
		&models.Order{},
	}
}
