package models

import (
	"encoding/json"
	"time"
)

// Category maps to the `categories` table.
type Category struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:name;size:191;uniqueIndex" json:"name"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	InboundPorts string    `gorm:"column:inbound_ports;type:text" json:"inbound_ports"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// PanelIDs is filled by the repository from category_panels.
	PanelIDs []uint `gorm:"-" json:"panel_ids"`
}

func (Category) TableName() string {
	return "categories"
}

// Ports decodes InboundPorts. Malformed JSON yields an empty slice.
func (c *Category) Ports() []int {
	ports := []int{}
	if c.InboundPorts == "" {
		return ports
	}
	if err := json.Unmarshal([]byte(c.InboundPorts), &ports); err != nil {
		return []int{}
	}
	return ports
}

// SetPorts encodes ports into InboundPorts.
func (c *Category) SetPorts(ports []int) {
	if ports == nil {
		ports = []int{}
	}
	buf, _ := json.Marshal(ports)
	c.InboundPorts = string(buf)
}

// CategoryPanel maps to the `category_panels` association table.
type CategoryPanel struct {
	CategoryID uint `gorm:"column:category_id;primaryKey" json:"category_id"`
	PanelID    uint `gorm:"column:panel_id;primaryKey" json:"panel_id"`
	Position   int  `gorm:"column:position;default:0" json:"position"`
}

func (CategoryPanel) TableName() string {
	return "category_panels"
}
