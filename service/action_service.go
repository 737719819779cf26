package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	model "github.com/rlavoie/complaintdesk/models"
	"gorm.io/gorm"
)

// MaxActionsPerComplaint caps how many follow-up actions one complaint may carry.
const MaxActionsPerComplaint = 10

const dueDateLayout = "2006-01-02"

// ActionService manages the follow-up action lifecycle: creation under the
// per-complaint cap, diffed updates with an audit trail, status transitions,
// dependencies and reordering.
type ActionService struct {
	db *gorm.DB
}

func NewActionService(db *gorm.DB) *ActionService {
	return &ActionService{db: db}
}

// ActionCreateInput carries the client-supplied fields for a new action.
type ActionCreateInput struct {
	ActionText           string     `json:"action_text"`
	ResponsiblePerson    string     `json:"responsible_person"`
	DueDate              *time.Time `json:"due_date"`
	Status               string     `json:"status"`
	Priority             string     `json:"priority"`
	CompletionPercentage int        `json:"completion_percentage"`
	Notes                string     `json:"notes"`
}

// ActionUpdateInput carries a partial update; nil fields are left untouched.
type ActionUpdateInput struct {
	ActionText           *string    `json:"action_text"`
	ResponsiblePerson    *string    `json:"responsible_person"`
	DueDate              *time.Time `json:"due_date"`
	Status               *string    `json:"status"`
	Priority             *string    `json:"priority"`
	CompletionPercentage *int       `json:"completion_percentage"`
	Notes                *string    `json:"notes"`
}

// ActionFilter narrows ListActions results.
type ActionFilter struct {
	Status            string
	ResponsiblePerson string
	OverdueOnly       bool
}

// CreateAction creates a follow-up action for a complaint, assigning the next
// dense action number and recording a synthetic "created" history entry.
func (s *ActionService) CreateAction(complaintID uint, in ActionCreateInput, actor string) (*model.FollowUpAction, error) {
	if err := validateActionCreate(&in); err != nil {
		return nil, err
	}

	var action model.FollowUpAction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findComplaint(tx, complaintID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.FollowUpAction{}).
			Where("complaint_id = ?", complaintID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count actions: %w", err)
		}
		if count >= MaxActionsPerComplaint {
			return fmt.Errorf("%w: maximum of %d actions per complaint allowed", ErrLimitExceeded, MaxActionsPerComplaint)
		}

		if err := requireActivePerson(tx, in.ResponsiblePerson); err != nil {
			return err
		}

		number, err := nextActionNumber(tx, complaintID)
		if err != nil {
			return err
		}

		action = model.FollowUpAction{
			ComplaintID:          complaintID,
			ActionNumber:         number,
			ActionText:           in.ActionText,
			ResponsiblePerson:    in.ResponsiblePerson,
			DueDate:              in.DueDate,
			Status:               in.Status,
			Priority:             in.Priority,
			CompletionPercentage: in.CompletionPercentage,
			Notes:                in.Notes,
		}
		if err := tx.Create(&action).Error; err != nil {
			return fmt.Errorf("failed to create action: %w", err)
		}

		return recordHistory(tx, action.ID, "created", nil,
			strPtr(fmt.Sprintf("Action #%d created", number)), actor, nil)
	})
	if err != nil {
		log.Printf("[CreateAction] complaint %d: %v", complaintID, err)
		return nil, err
	}

	log.Printf("[CreateAction] action #%d created for complaint %d", action.ActionNumber, complaintID)
	return &action, nil
}

// ListActions returns a complaint's actions ordered by action number.
func (s *ActionService) ListActions(complaintID uint, f ActionFilter) ([]model.FollowUpAction, error) {
	if _, err := findComplaint(s.db, complaintID); err != nil {
		return nil, err
	}

	query := s.db.Where("complaint_id = ?", complaintID)
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.ResponsiblePerson != "" {
		query = query.Where("LOWER(responsible_person) LIKE ?", "%"+strings.ToLower(f.ResponsiblePerson)+"%")
	}
	if f.OverdueOnly {
		query = query.Where("due_date < ? AND status <> ?", today(), model.ActionClosed)
	}

	var actions []model.FollowUpAction
	if err := query.Order("action_number").Find(&actions).Error; err != nil {
		log.Printf("[ListActions] complaint %d: %v", complaintID, err)
		return nil, fmt.Errorf("failed to retrieve actions: %w", err)
	}
	return actions, nil
}

// GetAction returns one action scoped to its complaint.
func (s *ActionService) GetAction(complaintID, actionID uint) (*model.FollowUpAction, error) {
	return findAction(s.db, complaintID, actionID)
}

// UpdateAction applies a partial update. Each enumerated field is compared
// against the stored value; only changed fields are written, and each change
// produces exactly one history row in the same transaction. A no-op update
// returns the action unchanged with no history emitted.
func (s *ActionService) UpdateAction(complaintID, actionID uint, in ActionUpdateInput, actor string) (*model.FollowUpAction, error) {
	var action *model.FollowUpAction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		action, err = findAction(tx, complaintID, actionID)
		if err != nil {
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
			if err := recordHistory(tx, action.ID, c.field, c.old, c.new, actor, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[UpdateAction] action %d: %v", actionID, err)
		return nil, err
	}
	return action, nil
}

// DeleteAction soft-deletes by transitioning the action to cancelled. The row
// and its history remain.
func (s *ActionService) DeleteAction(complaintID, actionID uint, actor string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		action, err := findAction(tx, complaintID, actionID)
		if err != nil {
			return err
		}

		oldStatus := action.Status
		action.Status = model.ActionCancelled
		if err := tx.Save(action).Error; err != nil {
			return fmt.Errorf("failed to cancel action: %w", err)
		}

		return recordHistory(tx, action.ID, "status", strPtr(oldStatus),
			strPtr(model.ActionCancelled), actor, strPtr("Action deleted"))
	})
	if err != nil {
		log.Printf("[DeleteAction] action %d: %v", actionID, err)
	}
	return err
}

// StartAction moves an open action to in_progress once every dependency
// target is closed.
func (s *ActionService) StartAction(complaintID, actionID uint, actor string) (*model.FollowUpAction, error) {
	var action *model.FollowUpAction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		action, err = findAction(tx, complaintID, actionID)
		if err != nil {
			return err
		}

		if action.Status != model.ActionOpen {
			return fmt.Errorf("%w: action can only be started from 'open' status", ErrInvalidTransition)
		}

		startable, err := dependenciesSatisfied(tx, actionID)
		if err != nil {
			return err
		}
		if !startable {
			return fmt.Errorf("%w: cannot start action: dependencies not satisfied", ErrDependencyUnsatisfied)
		}

		oldStatus := action.Status
		action.Status = model.ActionInProgress
		applyStatusTransition(action, model.ActionInProgress)
		if err := tx.Save(action).Error; err != nil {
			return fmt.Errorf("failed to start action: %w", err)
		}

		return recordHistory(tx, action.ID, "status", strPtr(oldStatus),
			strPtr(model.ActionInProgress), actor, strPtr("Action started"))
	})
	if err != nil {
		log.Printf("[StartAction] action %d: %v", actionID, err)
		return nil, err
	}
	return action, nil
}

// History returns the audit trail for an action, newest first.
func (s *ActionService) History(complaintID, actionID uint) ([]model.ActionHistory, error) {
	if _, err := findAction(s.db, complaintID, actionID); err != nil {
		return nil, err
	}

	var history []model.ActionHistory
	if err := s.db.Where("action_id = ?", actionID).
		Order("changed_at DESC").Order("id DESC").
		Find(&history).Error; err != nil {
		log.Printf("[History] action %d: %v", actionID, err)
		return nil, fmt.Errorf("failed to retrieve action history: %w", err)
	}
	return history, nil
}

// --- internals shared by the action files ---

type fieldChange struct {
	field string
	old   *string
	new   *string
}

// applyActionChanges mutates action with the non-nil fields of in and returns
// one change record per field that actually differed. The mutable field set
// is enumerated here on purpose; nothing is picked up by reflection.
func applyActionChanges(action *model.FollowUpAction, in ActionUpdateInput) ([]fieldChange, error) {
	var changes []fieldChange

	if in.ActionText != nil && *in.ActionText != action.ActionText {
		if len(strings.TrimSpace(*in.ActionText)) < 5 {
			return nil, fmt.Errorf("%w: action text must be at least 5 characters", ErrValidation)
		}
		changes = append(changes, fieldChange{"action_text", strPtr(action.ActionText), in.ActionText})
		action.ActionText = *in.ActionText
	}

	if in.ResponsiblePerson != nil && *in.ResponsiblePerson != action.ResponsiblePerson {
		changes = append(changes, fieldChange{"responsible_person", strPtr(action.ResponsiblePerson), in.ResponsiblePerson})
		action.ResponsiblePerson = *in.ResponsiblePerson
	}

	if in.DueDate != nil && !sameDate(action.DueDate, in.DueDate) {
		changes = append(changes, fieldChange{"due_date", dateStr(action.DueDate), dateStr(in.DueDate)})
		action.DueDate = in.DueDate
	}

	if in.Status != nil && *in.Status != action.Status {
		if !model.IsValidActionStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown action status %q", ErrValidation, *in.Status)
		}
		changes = append(changes, fieldChange{"status", strPtr(action.Status), in.Status})
		action.Status = *in.Status
		applyStatusTransition(action, *in.Status)
	}

	if in.Priority != nil && *in.Priority != action.Priority {
		if !model.IsValidActionPriority(*in.Priority) {
			return nil, fmt.Errorf("%w: unknown action priority %q", ErrValidation, *in.Priority)
		}
		changes = append(changes, fieldChange{"priority", strPtr(action.Priority), in.Priority})
		action.Priority = *in.Priority
	}

	if in.CompletionPercentage != nil && *in.CompletionPercentage != action.CompletionPercentage {
		if *in.CompletionPercentage < 0 || *in.CompletionPercentage > 100 {
			return nil, fmt.Errorf("%w: completion percentage must be between 0 and 100", ErrValidation)
		}
		changes = append(changes, fieldChange{"completion_percentage",
			strPtr(strconv.Itoa(action.CompletionPercentage)), strPtr(strconv.Itoa(*in.CompletionPercentage))})
		action.CompletionPercentage = *in.CompletionPercentage
	}

	if in.Notes != nil && *in.Notes != action.Notes {
		changes = append(changes, fieldChange{"notes", strPtr(action.Notes), in.Notes})
		action.Notes = *in.Notes
	}

	return changes, nil
}

// applyStatusTransition stamps lifecycle timestamps when status enters
// in_progress or closed. Both stamps are idempotent; closing also forces
// completion to 100%.
func applyStatusTransition(action *model.FollowUpAction, newStatus string) {
	now := time.Now()
	switch newStatus {
	case model.ActionInProgress:
		if action.StartedAt == nil {
			action.StartedAt = &now
		}
	case model.ActionClosed:
		if action.CompletedAt == nil {
			action.CompletedAt = &now
			action.CompletionPercentage = 100
		}
	}
}

func validateActionCreate(in *ActionCreateInput) error {
	if len(strings.TrimSpace(in.ActionText)) < 5 {
		return fmt.Errorf("%w: action text must be at least 5 characters", ErrValidation)
	}
	if in.Status == "" {
		in.Status = model.ActionOpen
	}
	if !model.IsValidActionStatus(in.Status) {
		return fmt.Errorf("%w: unknown action status %q", ErrValidation, in.Status)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !model.IsValidActionPriority(in.Priority) {
		return fmt.Errorf("%w: unknown action priority %q", ErrValidation, in.Priority)
	}
	if in.CompletionPercentage < 0 || in.CompletionPercentage > 100 {
		return fmt.Errorf("%w: completion percentage must be between 0 and 100", ErrValidation)
	}
	return nil
}

func nextActionNumber(tx *gorm.DB, complaintID uint) (int, error) {
	var max *int
	if err := tx.Model(&model.FollowUpAction{}).
		Where("complaint_id = ?", complaintID).
		Select("MAX(action_number)").
		Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("failed to compute next action number: %w", err)
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

func findComplaint(tx *gorm.DB, complaintID uint) (*model.Complaint, error) {
	var complaint model.Complaint
	err := tx.Where("id = ? AND is_deleted = ?", complaintID, false).First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: complaint not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch complaint: %w", err)
	}
	return &complaint, nil
}

// findAction treats actions of a soft-deleted complaint as missing.
func findAction(tx *gorm.DB, complaintID, actionID uint) (*model.FollowUpAction, error) {
	var action model.FollowUpAction
	err := tx.
		Select("follow_up_actions.*").
		Joins("JOIN complaints ON complaints.id = follow_up_actions.complaint_id").
		Where("follow_up_actions.id = ? AND follow_up_actions.complaint_id = ? AND complaints.is_deleted = ?",
			actionID, complaintID, false).
		First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: action not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch action: %w", err)
	}
	return &action, nil
}

func requireActivePerson(tx *gorm.DB, name string) error {
	var person model.ResponsiblePerson
	err := tx.Where("name = ? AND is_active = ?", name, true).First(&person).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: responsible person '%s' not found or inactive", ErrInvalidReference, name)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch responsible person: %w", err)
	}
	return nil
}

func recordHistory(tx *gorm.DB, actionID uint, field string, oldVal, newVal *string, changedBy string, reason *string) error {
	entry := model.ActionHistory{
		ActionID:     actionID,
		FieldChanged: field,
		OldValue:     oldVal,
		NewValue:     newVal,
		ChangedBy:    changedBy,
		ChangeReason: reason,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record action history: %w", err)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func dateStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return strPtr(t.Format(dueDateLayout))
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Format(dueDateLayout) == b.Format(dueDateLayout)
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
