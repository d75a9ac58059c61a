package models

// Defaults applied when an extra-volume row is created implicitly.
const (
	DefaultPricePerGB = 10000
	DefaultMinVolume  = 1
	DefaultMaxVolume  = 100
)

// ExtraVolumeSetting maps to the `extra_volume_settings` table, one row per category.
// MinVolume and MaxVolume are in GB; zero means no limit.
type ExtraVolumeSetting struct {
	ID         uint `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CategoryID uint `gorm:"column:category_id;uniqueIndex" json:"category_id"`
	PricePerGB int  `gorm:"column:price_per_gb;default:10000" json:"price_per_gb"`
	MinVolume  int  `gorm:"column:min_volume;default:1" json:"min_volume"`
	MaxVolume  int  `gorm:"column:max_volume;default:100" json:"max_volume"`
	IsEnabled  bool `gorm:"column:is_enabled;default:true" json:"is_enabled"`
}

func (ExtraVolumeSetting) TableName() string {
	return "extra_volume_settings"
}

// NewExtraVolumeSetting returns a setting with default values.
func NewExtraVolumeSetting(categoryID uint) *ExtraVolumeSetting {
	return &ExtraVolumeSetting{
		CategoryID: categoryID,
		PricePerGB: DefaultPricePerGB,
		MinVolume:  DefaultMinVolume,
		MaxVolume:  DefaultMaxVolume,
		IsEnabled:  true,
	}
}
