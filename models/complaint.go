package models

import (
	"time"

	"gorm.io/datatypes"
)

// Complaint is a reported part/order issue logged against a company and a part.
type Complaint struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"not null;index" json:"company_id"`
	PartID    uint `gorm:"not null;index" json:"part_id"`

	// IssueType is the top-level taxonomy value (wrong_quantity, wrong_part,
	// damaged, other). IssueCategory and IssueSubtypes carry the finer-grained
	// intake taxonomy.
	IssueType     string         `gorm:"size:50;not null;index" json:"issue_type"`
	IssueCategory string         `gorm:"size:20" json:"issue_category,omitempty"`
	IssueSubtypes datatypes.JSON `json:"issue_subtypes,omitempty"`

	Details          string `gorm:"type:text;not null" json:"details"`
	QuantityOrdered  *int   `json:"quantity_ordered"`
	QuantityReceived *int   `json:"quantity_received"`
	WorkOrderNumber  string `gorm:"size:100;not null" json:"work_order_number"`
	Occurrence       string `gorm:"size:100" json:"occurrence,omitempty"`
	PartReceived     string `gorm:"size:100" json:"part_received,omitempty"`
	HumanFactor      bool   `gorm:"default:false" json:"human_factor"`
	NCRNumber        string `gorm:"size:100" json:"ncr_number,omitempty"`

	// DateReceived is the business date the problem was reported, distinct
	// from the row creation timestamp. Analytics windows key off this field.
	DateReceived time.Time `gorm:"type:date;not null;index" json:"date_received"`

	Status         string `gorm:"size:20;default:open;index" json:"status"`
	IsDeleted      bool   `gorm:"default:false;index" json:"is_deleted"`
	HasAttachments bool   `gorm:"default:false" json:"has_attachments"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastEdit   *time.Time `json:"last_edit"`
	ResolvedAt *time.Time `json:"resolved_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Part    *Part    `gorm:"foreignKey:PartID" json:"part,omitempty"`

	Actions     []FollowUpAction      `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
	Attachments []ComplaintAttachment `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

func (Complaint) TableName() string { return "complaints" }
