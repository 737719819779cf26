package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// MaxBulkActionIDs caps how many actions one bulk update may address.
const MaxBulkActionIDs = 50

// BulkFailure reports why one item of a bulk update was skipped.
type BulkFailure struct {
	ActionID uint   `json:"action_id"`
	Error    string `json:"error"`
}

// BulkUpdateResult summarizes a bulk update. Failed items do not abort the
// batch; earlier successes in the same batch are committed regardless.
type BulkUpdateResult struct {
	UpdatedCount  int           `json:"updated_count"`
	FailedUpdates []BulkFailure `json:"failed_updates"`
}

// BulkUpdate applies the same partial update to up to MaxBulkActionIDs
// actions of one complaint. Each item is processed independently: a missing
// action or a per-item validation error lands in FailedUpdates and the loop
// continues. The transaction commits once at the end iff at least one action
// was updated.
func (s *ActionService) BulkUpdate(complaintID uint, actionIDs []uint, in ActionUpdateInput, actor string) (*BulkUpdateResult, error) {
	if len(actionIDs) == 0 {
		return nil, fmt.Errorf("%w: no action ids provided", ErrValidation)
	}
	if len(actionIDs) > MaxBulkActionIDs {
		return nil, fmt.Errorf("%w: at most %d actions per bulk update", ErrValidation, MaxBulkActionIDs)
	}

	result := &BulkUpdateResult{FailedUpdates: []BulkFailure{}}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin bulk update: %w", tx.Error)
	}

	for _, actionID := range actionIDs {
		if err := s.bulkUpdateOne(tx, complaintID, actionID, in, actor); err != nil {
			result.FailedUpdates = append(result.FailedUpdates, BulkFailure{
				ActionID: actionID,
				Error:    err.Error(),
			})
			continue
		}
		result.UpdatedCount++
	}

	if result.UpdatedCount > 0 {
		if err := tx.Commit().Error; err != nil {
			return nil, fmt.Errorf("failed to commit bulk update: %w", err)
		}
	} else {
		tx.Rollback()
	}

	log.Printf("[BulkUpdate] complaint %d: %d updated, %d failed",
		complaintID, result.UpdatedCount, len(result.FailedUpdates))
	return result, nil
}

func (s *ActionService) bulkUpdateOne(tx *gorm.DB, complaintID, actionID uint, in ActionUpdateInput, actor string) error {
	action, err := findAction(tx, complaintID, actionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return errors.New("Action not found")
		}
		return err
	}

	changes, err := applyActionChanges(action, in)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	for _, c := range changes {
		if c.field == "responsible_person" {
			if err := requireActivePerson(tx, action.ResponsiblePerson); err != nil {
				return err
			}
		}
	}

	if err := tx.Save(action).Error; err != nil {
		return fmt.Errorf("failed to update action: %w", err)
	}

	for _, c := range changes {
		if err := recordHistory(tx, action.ID, c.field, c.old, c.new, actor, strPtr("Bulk update")); err != nil {
			return err
		}
	}
	return nil
}
