package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	model "github.com/rlavoie/complaintdesk/models"
	"gorm.io/gorm"
)

// ResponsiblePersonInput carries create/update fields for an assignee.
type ResponsiblePersonInput struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
}

// ListResponsiblePersons returns assignees ordered by name, optionally
// filtered to active ones and by a name/email substring.
func (s *ActionService) ListResponsiblePersons(activeOnly bool, search string) ([]model.ResponsiblePerson, error) {
	query := s.db.Model(&model.ResponsiblePerson{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var persons []model.ResponsiblePerson
	if err := query.Order("name").Find(&persons).Error; err != nil {
		log.Printf("[ListResponsiblePersons] %v", err)
		return nil, fmt.Errorf("failed to retrieve responsible persons: %w", err)
	}
	return persons, nil
}

// CreateResponsiblePerson registers a new active assignee with a unique name.
func (s *ActionService) CreateResponsiblePerson(in ResponsiblePersonInput) (*model.ResponsiblePerson, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	name := strings.TrimSpace(*in.Name)

	var existing model.ResponsiblePerson
	err := s.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: responsible person with this name already exists", ErrValidation)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate person: %w", err)
	}

	person := model.ResponsiblePerson{Name: name, IsActive: true}
	if in.Email != nil {
		person.Email = strings.TrimSpace(*in.Email)
	}
	if in.Department != nil {
		person.Department = strings.TrimSpace(*in.Department)
	}
	if err := s.db.Create(&person).Error; err != nil {
		log.Printf("[CreateResponsiblePerson] %v", err)
		return nil, fmt.Errorf("failed to create responsible person: %w", err)
	}
	return &person, nil
}

// UpdateResponsiblePerson applies a partial update, keeping names unique.
func (s *ActionService) UpdateResponsiblePerson(personID uint, in ResponsiblePersonInput) (*model.ResponsiblePerson, error) {
	var person model.ResponsiblePerson
	err := s.db.First(&person, personID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: responsible person not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responsible person: %w", err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		var dup model.ResponsiblePerson
		err := s.db.Where("name = ? AND id <> ?", name, personID).First(&dup).Error
		if err == nil {
			return nil, fmt.Errorf("%w: another person with this name already exists", ErrValidation)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check for duplicate person: %w", err)
		}
		person.Name = name
	}
	if in.Email != nil {
		person.Email = strings.TrimSpace(*in.Email)
	}
	if in.Department != nil {
		person.Department = strings.TrimSpace(*in.Department)
	}
	if in.IsActive != nil {
		person.IsActive = *in.IsActive
	}

	if err := s.db.Save(&person).Error; err != nil {
		log.Printf("[UpdateResponsiblePerson] person %d: %v", personID, err)
		return nil, fmt.Errorf("failed to update responsible person: %w", err)
	}
	return &person, nil
}

// DeactivateResponsiblePerson soft-deletes an assignee. Existing action
// assignments keep the name; only new assignments are blocked.
func (s *ActionService) DeactivateResponsiblePerson(personID uint) error {
	var person model.ResponsiblePerson
	err := s.db.First(&person, personID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: responsible person not found", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch responsible person: %w", err)
	}

	person.IsActive = false
	if err := s.db.Save(&person).Error; err != nil {
		log.Printf("[DeactivateResponsiblePerson] person %d: %v", personID, err)
		return fmt.Errorf("failed to deactivate responsible person: %w", err)
	}
	return nil
}
