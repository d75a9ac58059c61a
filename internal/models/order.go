package models

import "time"

// Order maps to the `orders` table. The bot only reads it, and clears
// ProductID when a referenced product is deleted.
type Order struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductID *uint     `gorm:"column:product_id;index" json:"product_id"`
	UserID    int64     `gorm:"column:user_id;index" json:"user_id"`
	Amount    float64   `gorm:"column:amount;type:decimal(12,2);default:0" json:"amount"`
	Status    string    `gorm:"column:status;size:30" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}
