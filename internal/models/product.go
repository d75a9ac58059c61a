package models

import "time"

// Product statuses.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// UncategorizedName is shown for products without a category.
const UncategorizedName = "بدون دسته‌بندی"

// Product maps to the `products` table.
// DataLimit is in GB and Duration in days; zero means unlimited for both.
type Product struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"column:name;size:191;uniqueIndex" json:"name"`
	DataLimit  int       `gorm:"column:data_limit;default:0" json:"data_limit"`
	Duration   int       `gorm:"column:duration;default:0" json:"duration"`
	Price      float64   `gorm:"column:price;type:decimal(12,2);default:0" json:"price"`
	CategoryID *uint     `gorm:"column:category_id;index" json:"category_id"`
	UsersLimit int       `gorm:"column:users_limit;default:1" json:"users_limit"`
	Status     string    `gorm:"column:status;size:20;default:active" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// CategoryName is populated by listing queries that join categories.
	CategoryName string `gorm:"->;column:category_name;-:migration" json:"category_name"`
}

func (Product) TableName() string {
	return "products"
}
