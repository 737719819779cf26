package models

import "time"

type Part struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PartNumber  string    `gorm:"size:100;uniqueIndex;not null" json:"part_number"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Part) TableName() string { return "parts" }
