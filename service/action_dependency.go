package services

import (
	"errors"
	"fmt"
	"log"

	model "github.com/rlavoie/complaintdesk/models"
	"gorm.io/gorm"
)

// AddDependency inserts a directed "must finish before" edge between two
// actions of the same complaint. Only direct two-action cycles are rejected;
// longer cycles (A→B→C→A) are not detected, matching the shallow guard the
// rest of the workflow assumes.
func (s *ActionService) AddDependency(complaintID, actionID, dependsOnActionID uint, dependencyType string) (*model.ActionDependency, error) {
	if dependencyType == "" {
		dependencyType = model.DependencySequential
	}
	if !model.IsValidDependencyType(dependencyType) {
		return nil, fmt.Errorf("%w: unknown dependency type %q", ErrValidation, dependencyType)
	}

	var dep model.ActionDependency
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findAction(tx, complaintID, actionID); err != nil {
			return err
		}
		if _, err := findAction(tx, complaintID, dependsOnActionID); err != nil {
			return err
		}

		var reverse model.ActionDependency
		err := tx.Where("action_id = ? AND depends_on_action_id = ?", dependsOnActionID, actionID).
			First(&reverse).Error
		if err == nil {
			return fmt.Errorf("%w: circular dependency detected", ErrCircularDependency)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for circular dependency: %w", err)
		}

		dep = model.ActionDependency{
			ActionID:          actionID,
			DependsOnActionID: dependsOnActionID,
			DependencyType:    dependencyType,
		}
		if err := tx.Create(&dep).Error; err != nil {
			return fmt.Errorf("failed to create dependency: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("[AddDependency] action %d -> %d: %v", actionID, dependsOnActionID, err)
		return nil, err
	}
	return &dep, nil
}

// ListDependencies returns the outgoing dependency edges of an action.
func (s *ActionService) ListDependencies(complaintID, actionID uint) ([]model.ActionDependency, error) {
	if _, err := findAction(s.db, complaintID, actionID); err != nil {
		return nil, err
	}

	var deps []model.ActionDependency
	if err := s.db.Where("action_id = ?", actionID).Find(&deps).Error; err != nil {
		log.Printf("[ListDependencies] action %d: %v", actionID, err)
		return nil, fmt.Errorf("failed to retrieve dependencies: %w", err)
	}
	return deps, nil
}

// dependenciesSatisfied reports whether every dependency edge originating at
// actionID points to a closed action. No outgoing edges means startable.
func dependenciesSatisfied(tx *gorm.DB, actionID uint) (bool, error) {
	var deps []model.ActionDependency
	if err := tx.Where("action_id = ?", actionID).Find(&deps).Error; err != nil {
		return false, fmt.Errorf("failed to load dependencies: %w", err)
	}

	for _, dep := range deps {
		var target model.FollowUpAction
		err := tx.Where("id = ?", dep.DependsOnActionID).First(&target).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to load dependency target: %w", err)
		}
		if target.Status != model.ActionClosed {
			return false, nil
		}
	}
	return true, nil
}
