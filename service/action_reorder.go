package services

import (
	"fmt"
	"log"
	"strconv"

	model "github.com/rlavoie/complaintdesk/models"
	"gorm.io/gorm"
)

// ReorderAction moves an action to newPosition within its complaint and
// renumbers the rest so action numbers stay a dense 1..N sequence. Moving to
// the current position is a no-op. Returns the position the action held
// before the move.
func (s *ActionService) ReorderAction(complaintID, actionID uint, newPosition int, actor string) (int, error) {
	var oldPosition int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		action, err := findAction(tx, complaintID, actionID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.FollowUpAction{}).
			Where("complaint_id = ?", complaintID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count actions: %w", err)
		}
		if newPosition < 1 || int64(newPosition) > count {
			return fmt.Errorf("%w: position %d is outside 1..%d", ErrInvalidPosition, newPosition, count)
		}

		oldPosition = action.ActionNumber
		if oldPosition == newPosition {
			return nil
		}

		// Shift the actions between the two positions by one, then drop the
		// moved action into the freed slot.
		if oldPosition < newPosition {
			err = tx.Model(&model.FollowUpAction{}).
				Where("complaint_id = ? AND action_number > ? AND action_number <= ?",
					complaintID, oldPosition, newPosition).
				UpdateColumn("action_number", gorm.Expr("action_number - 1")).Error
		} else {
			err = tx.Model(&model.FollowUpAction{}).
				Where("complaint_id = ? AND action_number >= ? AND action_number < ?",
					complaintID, newPosition, oldPosition).
				UpdateColumn("action_number", gorm.Expr("action_number + 1")).Error
		}
		if err != nil {
			return fmt.Errorf("failed to shift action numbers: %w", err)
		}

		if err := tx.Model(action).UpdateColumn("action_number", newPosition).Error; err != nil {
			return fmt.Errorf("failed to move action: %w", err)
		}

		return recordHistory(tx, action.ID, "action_number",
			strPtr(strconv.Itoa(oldPosition)), strPtr(strconv.Itoa(newPosition)),
			actor, strPtr("Action reordered"))
	})
	if err != nil {
		log.Printf("[ReorderAction] action %d: %v", actionID, err)
		return 0, err
	}
	return oldPosition, nil
}
