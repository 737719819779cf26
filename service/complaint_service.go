package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	model "github.com/rlavoie/complaintdesk/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/elastic/go-elasticsearch/v8"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ComplaintService handles complaint intake, updates and file attachments.
type ComplaintService struct {
	s3Client *s3.S3
	esClient *elasticsearch.Client
	db       *gorm.DB
}

// NewComplaintService initializes the service with an S3 client and Elasticsearch client
func NewComplaintService(db *gorm.DB) (*ComplaintService, error) {
	region := os.Getenv("SUPABASE_REGION")
	endpoint := os.Getenv("SUPABASE_S3_ENDPOINT")
	accessKey := os.Getenv("SUPABASE_ACCESS_KEY")
	secretKey := os.Getenv("SUPABASE_SECRET_KEY")

	if region == "" || endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("missing required S3 configuration environment variables")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(region),
		Endpoint:         aws.String(endpoint),
		DisableSSL:       aws.Bool(false),
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	// Elasticsearch is optional; search endpoints degrade when it is absent.
	esURL := os.Getenv("ELASTICSEARCH_URL")
	var esClient *elasticsearch.Client
	if esURL != "" {
		esConfig := elasticsearch.Config{
			Addresses: []string{esURL},
		}
		var err error
		esClient, err = elasticsearch.NewClient(esConfig)
		if err != nil {
			log.Printf("Warning: Failed to create Elasticsearch client: %v", err)
		}
	}

	return &ComplaintService{s3Client: s3.New(sess), esClient: esClient, db: db}, nil
}

// ComplaintCreateInput carries the intake payload for a new complaint.
type ComplaintCreateInput struct {
	CompanyID        uint     `json:"company_id"`
	PartID           uint     `json:"part_id"`
	IssueType        string   `json:"issue_type"`
	IssueCategory    string   `json:"issue_category"`
	IssueSubtypes    []string `json:"issue_subtypes"`
	Details          string   `json:"details"`
	QuantityOrdered  *int     `json:"quantity_ordered"`
	QuantityReceived *int     `json:"quantity_received"`
	WorkOrderNumber  string   `json:"work_order_number"`
	Occurrence       string   `json:"occurrence"`
	PartReceived     string   `json:"part_received"`
	HumanFactor      bool     `json:"human_factor"`
	NCRNumber        string   `json:"ncr_number"`
	DateReceived     string   `json:"date_received"`
}

// ComplaintUpdateInput carries a partial complaint update; nil fields are untouched.
type ComplaintUpdateInput struct {
	IssueType        *string  `json:"issue_type"`
	IssueCategory    *string  `json:"issue_category"`
	IssueSubtypes    []string `json:"issue_subtypes"`
	Details          *string  `json:"details"`
	QuantityOrdered  *int     `json:"quantity_ordered"`
	QuantityReceived *int     `json:"quantity_received"`
	WorkOrderNumber  *string  `json:"work_order_number"`
	Occurrence       *string  `json:"occurrence"`
	PartReceived     *string  `json:"part_received"`
	HumanFactor      *bool    `json:"human_factor"`
	NCRNumber        *string  `json:"ncr_number"`
	Status           *string  `json:"status"`
}

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	Status    string
	IssueType string
	CompanyID uint
	Search    string
	Skip      int
	Limit     int
}

// CreateComplaint validates and records a new complaint.
func (s *ComplaintService) CreateComplaint(in ComplaintCreateInput) (*model.Complaint, error) {
	var company model.Company
	if err := s.db.First(&company, in.CompanyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}
	var part model.Part
	if err := s.db.First(&part, in.PartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: part not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch part: %w", err)
	}

	if !model.IsValidIssueType(in.IssueType) {
		return nil, fmt.Errorf("%w: invalid issue type '%s'", ErrValidation, in.IssueType)
	}
	if len(strings.TrimSpace(in.Details)) < 10 {
		return nil, fmt.Errorf("%w: details must be at least 10 characters", ErrValidation)
	}
	switch in.IssueType {
	case model.IssueWrongQuantity:
		if in.QuantityOrdered == nil || in.QuantityReceived == nil {
			return nil, fmt.Errorf("%w: wrong_quantity complaints require quantity_ordered and quantity_received", ErrValidation)
		}
	case model.IssueWrongPart:
		if strings.TrimSpace(in.PartReceived) == "" {
			return nil, fmt.Errorf("%w: wrong_part complaints require part_received", ErrValidation)
		}
	}

	dateReceived := today()
	if in.DateReceived != "" {
		parsed, err := time.Parse(dueDateLayout, in.DateReceived)
		if err != nil {
			return nil, fmt.Errorf("%w: date_received must be formatted as YYYY-MM-DD", ErrValidation)
		}
		dateReceived = parsed
	}

	var subtypes datatypes.JSON
	if len(in.IssueSubtypes) > 0 {
		raw, err := json.Marshal(in.IssueSubtypes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode issue subtypes: %w", err)
		}
		subtypes = datatypes.JSON(raw)
	}

	complaint := model.Complaint{
		CompanyID:        in.CompanyID,
		PartID:           in.PartID,
		IssueType:        in.IssueType,
		IssueCategory:    in.IssueCategory,
		IssueSubtypes:    subtypes,
		Details:          strings.TrimSpace(in.Details),
		QuantityOrdered:  in.QuantityOrdered,
		QuantityReceived: in.QuantityReceived,
		WorkOrderNumber:  in.WorkOrderNumber,
		Occurrence:       in.Occurrence,
		PartReceived:     in.PartReceived,
		HumanFactor:      in.HumanFactor,
		NCRNumber:        in.NCRNumber,
		DateReceived:     dateReceived,
		Status:           model.ComplaintOpen,
	}
	if err := s.db.Create(&complaint).Error; err != nil {
		log.Printf("[CreateComplaint] %v", err)
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	s.indexComplaint(&complaint)
	return &complaint, nil
}

// ListComplaints returns non-deleted complaints, newest first.
func (s *ComplaintService) ListComplaints(filter ComplaintFilter) ([]model.Complaint, error) {
	query := s.db.Model(&model.Complaint{}).
		Where("is_deleted = ?", false).
		Preload("Company").
		Preload("Part")

	if filter.Status != "" {
		status, ok := model.NormalizeComplaintStatus(filter.Status)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status '%s'", ErrValidation, filter.Status)
		}
		query = query.Where("status = ?", status)
	}
	if filter.IssueType != "" {
		query = query.Where("issue_type = ?", filter.IssueType)
	}
	if filter.CompanyID != 0 {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(details) LIKE ? OR LOWER(work_order_number) LIKE ? OR LOWER(ncr_number) LIKE ?", like, like, like)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if filter.Skip > 0 {
		query = query.Offset(filter.Skip)
	}

	var complaints []model.Complaint
	if err := query.Order("created_at DESC").Limit(limit).Find(&complaints).Error; err != nil {
		log.Printf("[ListComplaints] %v", err)
		return nil, fmt.Errorf("failed to retrieve complaints: %w", err)
	}
	return complaints, nil
}

// GetComplaint returns a single non-deleted complaint with its associations.
func (s *ComplaintService) GetComplaint(complaintID uint) (*model.Complaint, error) {
	var complaint model.Complaint
	err := s.db.
		Preload("Company").
		Preload("Part").
		Preload("Attachments").
		Where("id = ? AND is_deleted = ?", complaintID, false).
		First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: complaint not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch complaint: %w", err)
	}
	return &complaint, nil
}

// UpdateComplaint applies a partial update and stamps last_edit. Moving the
// complaint to resolved records resolved_at once; reopening clears it.
func (s *ComplaintService) UpdateComplaint(complaintID uint, in ComplaintUpdateInput) (*model.Complaint, error) {
	complaint, err := s.GetComplaint(complaintID)
	if err != nil {
		return nil, err
	}

	if in.IssueType != nil {
		if !model.IsValidIssueType(*in.IssueType) {
			return nil, fmt.Errorf("%w: invalid issue type '%s'", ErrValidation, *in.IssueType)
		}
		complaint.IssueType = *in.IssueType
	}
	if in.IssueCategory != nil {
		complaint.IssueCategory = *in.IssueCategory
	}
	if in.IssueSubtypes != nil {
		raw, err := json.Marshal(in.IssueSubtypes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode issue subtypes: %w", err)
		}
		complaint.IssueSubtypes = datatypes.JSON(raw)
	}
	if in.Details != nil {
		if len(strings.TrimSpace(*in.Details)) < 10 {
			return nil, fmt.Errorf("%w: details must be at least 10 characters", ErrValidation)
		}
		complaint.Details = strings.TrimSpace(*in.Details)
	}
	if in.QuantityOrdered != nil {
		complaint.QuantityOrdered = in.QuantityOrdered
	}
	if in.QuantityReceived != nil {
		complaint.QuantityReceived = in.QuantityReceived
	}
	if in.WorkOrderNumber != nil {
		complaint.WorkOrderNumber = *in.WorkOrderNumber
	}
	if in.Occurrence != nil {
		complaint.Occurrence = *in.Occurrence
	}
	if in.PartReceived != nil {
		complaint.PartReceived = *in.PartReceived
	}
	if in.HumanFactor != nil {
		complaint.HumanFactor = *in.HumanFactor
	}
	if in.NCRNumber != nil {
		complaint.NCRNumber = *in.NCRNumber
	}
	if in.Status != nil {
		status, ok := model.NormalizeComplaintStatus(*in.Status)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status '%s'", ErrValidation, *in.Status)
		}
		if status == model.ComplaintResolved && complaint.Status != model.ComplaintResolved {
			now := time.Now()
			complaint.ResolvedAt = &now
		}
		if status != model.ComplaintResolved {
			complaint.ResolvedAt = nil
		}
		complaint.Status = status
	}

	now := time.Now()
	complaint.LastEdit = &now
	if err := s.db.Save(complaint).Error; err != nil {
		log.Printf("[UpdateComplaint] complaint %d: %v", complaintID, err)
		return nil, fmt.Errorf("failed to update complaint: %w", err)
	}

	s.indexComplaint(complaint)
	return complaint, nil
}

// DeleteComplaint soft-deletes a complaint. Its actions and history survive
// for audit purposes but the complaint leaves every listing.
func (s *ComplaintService) DeleteComplaint(complaintID uint) error {
	complaint, err := s.GetComplaint(complaintID)
	if err != nil {
		return err
	}
	complaint.IsDeleted = true
	if err := s.db.Save(complaint).Error; err != nil {
		log.Printf("[DeleteComplaint] complaint %d: %v", complaintID, err)
		return fmt.Errorf("failed to delete complaint: %w", err)
	}
	return nil
}
