package services

import (
	"fmt"
	"testing"
	"time"

	model "github.com/rlavoie/complaintdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAction_AssignsDenseNumbers(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	for i := 1; i <= 3; i++ {
		action := seedAction(t, db, svc, complaint.ID, fmt.Sprintf("inspect incoming batch %d", i))
		assert.Equal(t, i, action.ActionNumber)
		assert.Equal(t, model.ActionOpen, action.Status)
		assert.Equal(t, model.PriorityMedium, action.Priority)
	}

	// The synthetic "created" entry lands in the audit trail.
	var history []model.ActionHistory
	require.NoError(t, db.Order("id").Find(&history).Error)
	require.Len(t, history, 3)
	assert.Equal(t, "created", history[0].FieldChanged)
	require.NotNil(t, history[0].NewValue)
	assert.Equal(t, "Action #1 created", *history[0].NewValue)
	assert.Nil(t, history[0].OldValue)
	assert.Equal(t, "Tester", history[0].ChangedBy)
}

func TestCreateAction_EnforcesCap(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	for i := 1; i <= MaxActionsPerComplaint; i++ {
		seedAction(t, db, svc, complaint.ID, fmt.Sprintf("remediation step %d", i))
	}

	_, err := svc.CreateAction(complaint.ID, ActionCreateInput{
		ActionText:        "one action too many",
		ResponsiblePerson: "Alice Tremblay",
	}, "Tester")
	require.ErrorIs(t, err, ErrLimitExceeded)

	var count int64
	require.NoError(t, db.Model(&model.FollowUpAction{}).Where("complaint_id = ?", complaint.ID).Count(&count).Error)
	assert.EqualValues(t, MaxActionsPerComplaint, count)
}

func TestCreateAction_RejectsInactivePerson(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	_, err := svc.CreateAction(complaint.ID, ActionCreateInput{
		ActionText:        "contact the supplier about it",
		ResponsiblePerson: "Bob Gagnon",
	}, "Tester")
	require.ErrorIs(t, err, ErrInvalidReference)

	_, err = svc.CreateAction(complaint.ID, ActionCreateInput{
		ActionText:        "contact the supplier about it",
		ResponsiblePerson: "Nobody",
	}, "Tester")
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestCreateAction_MissingComplaint(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)

	_, err := svc.CreateAction(9999, ActionCreateInput{
		ActionText:        "contact the supplier about it",
		ResponsiblePerson: "Alice Tremblay",
	}, "Tester")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAction_DiffProducesOneHistoryRowPerField(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)
	action := seedAction(t, db, svc, complaint.ID, "verify label placement")

	newText := "verify label placement on all pallets"
	newPriority := model.PriorityHigh
	updated, err := svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{
		ActionText: &newText,
		Priority:   &newPriority,
	}, "Tester")
	require.NoError(t, err)
	assert.Equal(t, newText, updated.ActionText)
	assert.Equal(t, model.PriorityHigh, updated.Priority)

	var history []model.ActionHistory
	require.NoError(t, db.Where("action_id = ? AND field_changed <> ?", action.ID, "created").
		Order("field_changed").Find(&history).Error)
	require.Len(t, history, 2)

	assert.Equal(t, "action_text", history[0].FieldChanged)
	require.NotNil(t, history[0].OldValue)
	assert.Equal(t, "verify label placement", *history[0].OldValue)
	require.NotNil(t, history[0].NewValue)
	assert.Equal(t, newText, *history[0].NewValue)

	assert.Equal(t, "priority", history[1].FieldChanged)
	require.NotNil(t, history[1].OldValue)
	assert.Equal(t, model.PriorityMedium, *history[1].OldValue)
}

func TestUpdateAction_NoChangesIsANoop(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)
	action := seedAction(t, db, svc, complaint.ID, "verify label placement")

	sameText := action.ActionText
	updated, err := svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{
		ActionText: &sameText,
	}, "Tester")
	require.NoError(t, err)
	assert.Equal(t, action.ActionText, updated.ActionText)

	var count int64
	require.NoError(t, db.Model(&model.ActionHistory{}).
		Where("action_id = ? AND field_changed <> ?", action.ID, "created").
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateAction_StatusSideEffects(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)
	action := seedAction(t, db, svc, complaint.ID, "replace damaged stock")

	inProgress := model.ActionInProgress
	updated, err := svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{Status: &inProgress}, "Tester")
	require.NoError(t, err)
	require.NotNil(t, updated.StartedAt)
	firstStart := *updated.StartedAt

	// Leaving and re-entering in_progress must not move started_at.
	blocked := model.ActionBlocked
	_, err = svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{Status: &blocked}, "Tester")
	require.NoError(t, err)
	updated, err = svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{Status: &inProgress}, "Tester")
	require.NoError(t, err)
	require.NotNil(t, updated.StartedAt)
	assert.WithinDuration(t, firstStart, *updated.StartedAt, time.Second)

	closed := model.ActionClosed
	updated, err = svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{Status: &closed}, "Tester")
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, 100, updated.CompletionPercentage)
}

func TestUpdateAction_RejectsInvalidFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)
	action := seedAction(t, db, svc, complaint.ID, "replace damaged stock")

	short := "nope"
	_, err := svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{ActionText: &short}, "Tester")
	require.ErrorIs(t, err, ErrValidation)

	badStatus := "cancelled"
	_, err = svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{Status: &badStatus}, "Tester")
	require.ErrorIs(t, err, ErrValidation)

	tooMuch := 120
	_, err = svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{CompletionPercentage: &tooMuch}, "Tester")
	require.ErrorIs(t, err, ErrValidation)

	inactive := "Bob Gagnon"
	_, err = svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{ResponsiblePerson: &inactive}, "Tester")
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestDeleteAction_SoftCancels(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)
	action := seedAction(t, db, svc, complaint.ID, "replace damaged stock")

	require.NoError(t, svc.DeleteAction(complaint.ID, action.ID, "Tester"))

	var stored model.FollowUpAction
	require.NoError(t, db.First(&stored, action.ID).Error)
	assert.Equal(t, model.ActionCancelled, stored.Status)

	var entry model.ActionHistory
	require.NoError(t, db.Where("action_id = ? AND field_changed = ?", action.ID, "status").First(&entry).Error)
	require.NotNil(t, entry.ChangeReason)
	assert.Equal(t, "Action deleted", *entry.ChangeReason)
	require.NotNil(t, entry.NewValue)
	assert.Equal(t, model.ActionCancelled, *entry.NewValue)
}

func TestStartAction_OnlyFromOpen(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)
	action := seedAction(t, db, svc, complaint.ID, "replace damaged stock")

	pending := model.ActionPending
	_, err := svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{Status: &pending}, "Tester")
	require.NoError(t, err)

	_, err = svc.StartAction(complaint.ID, action.ID, "Tester")
	require.ErrorIs(t, err, ErrInvalidTransition)

	open := model.ActionOpen
	_, err = svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{Status: &open}, "Tester")
	require.NoError(t, err)

	started, err := svc.StartAction(complaint.ID, action.ID, "Tester")
	require.NoError(t, err)
	assert.Equal(t, model.ActionInProgress, started.Status)
	assert.NotNil(t, started.StartedAt)

	var entry model.ActionHistory
	require.NoError(t, db.Where("action_id = ? AND change_reason = ?", action.ID, "Action started").First(&entry).Error)
	assert.Equal(t, "status", entry.FieldChanged)
}

func TestHistory_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)
	action := seedAction(t, db, svc, complaint.ID, "replace damaged stock")

	for _, notes := range []string{"first pass done", "second pass done"} {
		n := notes
		_, err := svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{Notes: &n}, "Tester")
		require.NoError(t, err)
	}

	history, err := svc.History(complaint.ID, action.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.NotNil(t, history[0].NewValue)
	assert.Equal(t, "second pass done", *history[0].NewValue)
	assert.Equal(t, "created", history[2].FieldChanged)
}

func TestListActions_Filters(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	first := seedAction(t, db, svc, complaint.ID, "inspect incoming batch")
	second := seedAction(t, db, svc, complaint.ID, "quarantine suspect stock")

	closed := model.ActionClosed
	_, err := svc.UpdateAction(complaint.ID, second.ID, ActionUpdateInput{Status: &closed}, "Tester")
	require.NoError(t, err)

	yesterday := time.Now().AddDate(0, 0, -1)
	_, err = svc.UpdateAction(complaint.ID, first.ID, ActionUpdateInput{DueDate: &yesterday}, "Tester")
	require.NoError(t, err)

	open, err := svc.ListActions(complaint.ID, ActionFilter{Status: model.ActionOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, first.ID, open[0].ID)

	overdue, err := svc.ListActions(complaint.ID, ActionFilter{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, first.ID, overdue[0].ID)

	byPerson, err := svc.ListActions(complaint.ID, ActionFilter{ResponsiblePerson: "alice"})
	require.NoError(t, err)
	assert.Len(t, byPerson, 2)
}

func TestActionsUnreachableAfterComplaintDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)
	action := seedAction(t, db, svc, complaint.ID, "inspect incoming batch")

	require.NoError(t, db.Model(&model.Complaint{}).
		Where("id = ?", complaint.ID).Update("is_deleted", true).Error)

	_, err := svc.GetAction(complaint.ID, action.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	notes := "follow up with supplier"
	_, err = svc.UpdateAction(complaint.ID, action.ID, ActionUpdateInput{Notes: &notes}, "Tester")
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.DeleteAction(complaint.ID, action.ID, "Tester")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.StartAction(complaint.ID, action.ID, "Tester")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.History(complaint.ID, action.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListDependencies(complaint.ID, action.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
