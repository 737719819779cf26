package models

import "time"

// ResponsiblePerson is an assignable actor. Deactivation is the only delete:
// an inactive person cannot receive new assignments but historical ones stay.
type ResponsiblePerson struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Email      string    `gorm:"size:255" json:"email,omitempty"`
	Department string    `gorm:"size:100" json:"department,omitempty"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ResponsiblePerson) TableName() string { return "responsible_persons" }
