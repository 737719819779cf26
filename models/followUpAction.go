package models

import "time"

// FollowUpAction is one remediation task tied to a complaint. ActionNumber
// values form a dense 1..N sequence unique within the complaint; at most 10
// actions may exist per complaint.
type FollowUpAction struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	ComplaintID uint `gorm:"not null;index:idx_complaint_action_number,priority:1" json:"complaint_id"`

	// Uniqueness of (complaint_id, action_number) is maintained by the
	// renumbering logic rather than a unique constraint; the reorder shift
	// updates rows through states a per-statement unique check would reject.
	ActionNumber int `gorm:"not null;index:idx_complaint_action_number,priority:2" json:"action_number"`

	ActionText        string     `gorm:"type:text;not null" json:"action_text"`
	ResponsiblePerson string     `gorm:"size:255;not null;index" json:"responsible_person"`
	DueDate           *time.Time `gorm:"type:date;index" json:"due_date"`

	Status               string `gorm:"size:20;default:open;index" json:"status"`
	Priority             string `gorm:"size:10;default:medium" json:"priority"`
	CompletionPercentage int    `gorm:"default:0" json:"completion_percentage"`
	Notes                string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	History      []ActionHistory    `gorm:"foreignKey:ActionID;constraint:OnDelete:CASCADE" json:"-"`
	Dependencies []ActionDependency `gorm:"foreignKey:ActionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (FollowUpAction) TableName() string { return "follow_up_actions" }
