package models

import "time"

// ActionDependency is a directed "must finish before" edge between two
// actions of the same complaint.
type ActionDependency struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ActionID          uint      `gorm:"not null;index" json:"action_id"`
	DependsOnActionID uint      `gorm:"not null" json:"depends_on_action_id"`
	DependencyType    string    `gorm:"size:20;default:sequential" json:"dependency_type"`
	CreatedAt         time.Time `json:"created_at"`
}

func (ActionDependency) TableName() string { return "action_dependencies" }
