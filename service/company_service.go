package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	model "github.com/rlavoie/complaintdesk/models"
	"gorm.io/gorm"
)

// CreateCompany registers a customer, rejecting duplicate names.
func (s *ComplaintService) CreateCompany(name string) (*model.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrValidation)
	}

	var existing model.Company
	err := s.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: company with this name already exists", ErrValidation)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate company: %w", err)
	}

	company := model.Company{Name: name}
	if err := s.db.Create(&company).Error; err != nil {
		log.Printf("[CreateCompany] %v", err)
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return &company, nil
}

// ListCompanies returns companies ordered by name, optionally filtered by a
// name substring.
func (s *ComplaintService) ListCompanies(search string) ([]model.Company, error) {
	query := s.db.Model(&model.Company{})
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var companies []model.Company
	if err := query.Order("name").Find(&companies).Error; err != nil {
		log.Printf("[ListCompanies] %v", err)
		return nil, fmt.Errorf("failed to retrieve companies: %w", err)
	}
	return companies, nil
}

// CreatePart registers a part number, rejecting duplicates.
func (s *ComplaintService) CreatePart(partNumber, description string) (*model.Part, error) {
	partNumber = strings.TrimSpace(partNumber)
	if partNumber == "" {
		return nil, fmt.Errorf("%w: part number is required", ErrValidation)
	}

	var existing model.Part
	err := s.db.Where("part_number = ?", partNumber).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: part with this number already exists", ErrValidation)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate part: %w", err)
	}

	part := model.Part{PartNumber: partNumber, Description: strings.TrimSpace(description)}
	if err := s.db.Create(&part).Error; err != nil {
		log.Printf("[CreatePart] %v", err)
		return nil, fmt.Errorf("failed to create part: %w", err)
	}
	return &part, nil
}

// ListParts returns parts ordered by part number, optionally filtered by a
// part number or description substring.
func (s *ComplaintService) ListParts(search string) ([]model.Part, error) {
	query := s.db.Model(&model.Part{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(part_number) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var parts []model.Part
	if err := query.Order("part_number").Find(&parts).Error; err != nil {
		log.Printf("[ListParts] %v", err)
		return nil, fmt.Errorf("failed to retrieve parts: %w", err)
	}
	return parts, nil
}
