package models

import "time"

// ActionHistory is an append-only audit entry for one field change on an
// action. OldValue/NewValue are stringified; nil means the value was absent.
type ActionHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActionID     uint      `gorm:"not null;index" json:"action_id"`
	FieldChanged string    `gorm:"size:100;not null" json:"field_changed"`
	OldValue     *string   `gorm:"type:text" json:"old_value"`
	NewValue     *string   `gorm:"type:text" json:"new_value"`
	ChangedBy    string    `gorm:"size:255;not null" json:"changed_by"`
	ChangedAt    time.Time `gorm:"autoCreateTime;index" json:"changed_at"`
	ChangeReason *string   `gorm:"type:text" json:"change_reason"`
}

func (ActionHistory) TableName() string { return "action_history" }
