package models

import "time"

// Panel types understood by the panel package.
const (
	PanelTypeXUI     = "3x-ui"
	PanelTypeMarzban = "marzban"
)

// Panel statuses. Unknown is used when a probe got an answer it could not classify.
const (
	PanelStatusActive   = "active"
	PanelStatusInactive = "inactive"
	PanelStatusUnknown  = "unknown"
)

// Panel maps to the `panels` table.
type Panel struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;size:191;uniqueIndex" json:"name"`
	URL       string    `gorm:"column:url;size:500" json:"url"`
	Username  string    `gorm:"column:username;size:200" json:"username"`
	Password  string    `gorm:"column:password;size:200" json:"password"`
	Type      string    `gorm:"column:panel_type;size:50;default:3x-ui" json:"panel_type"`
	Status    string    `gorm:"column:status;size:20;default:active" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Panel) TableName() string {
	return "panels"
}

// IsActive reports whether the panel is marked active.
func (p *Panel) IsActive() bool {
	return p.Status == PanelStatusActive
}
