package services

import (
	"fmt"
	"testing"

	model "github.com/rlavoie/complaintdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpdate_PartialFailureIsolation(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	a := seedAction(t, db, svc, complaint.ID, "inspect incoming batch")
	b := seedAction(t, db, svc, complaint.ID, "quarantine suspect stock")

	priority := model.PriorityCritical
	result, err := svc.BulkUpdate(complaint.ID, []uint{a.ID, 9999, b.ID}, ActionUpdateInput{
		Priority: &priority,
	}, "Tester")
	require.NoError(t, err)

	assert.Equal(t, 2, result.UpdatedCount)
	require.Len(t, result.FailedUpdates, 1)
	assert.Equal(t, uint(9999), result.FailedUpdates[0].ActionID)
	assert.Equal(t, "Action not found", result.FailedUpdates[0].Error)

	// The successful items really committed.
	var stored model.FollowUpAction
	require.NoError(t, db.First(&stored, a.ID).Error)
	assert.Equal(t, model.PriorityCritical, stored.Priority)
	require.NoError(t, db.First(&stored, b.ID).Error)
	assert.Equal(t, model.PriorityCritical, stored.Priority)

	// Each change carries the bulk reason in the audit trail.
	var entries []model.ActionHistory
	require.NoError(t, db.Where("field_changed = ?", "priority").Find(&entries).Error)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NotNil(t, e.ChangeReason)
		assert.Equal(t, "Bulk update", *e.ChangeReason)
	}
}

func TestBulkUpdate_InputBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	_, err := svc.BulkUpdate(complaint.ID, nil, ActionUpdateInput{}, "Tester")
	require.ErrorIs(t, err, ErrValidation)

	ids := make([]uint, MaxBulkActionIDs+1)
	for i := range ids {
		ids[i] = uint(i + 1)
	}
	_, err = svc.BulkUpdate(complaint.ID, ids, ActionUpdateInput{}, "Tester")
	require.ErrorIs(t, err, ErrValidation)
}

func TestBulkUpdate_NoChangesStillCountsLocatedActions(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	a := seedAction(t, db, svc, complaint.ID, "inspect incoming batch")

	samePriority := model.PriorityMedium
	result, err := svc.BulkUpdate(complaint.ID, []uint{a.ID}, ActionUpdateInput{
		Priority: &samePriority,
	}, "Tester")
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)
	assert.Empty(t, result.FailedUpdates)

	var count int64
	require.NoError(t, db.Model(&model.ActionHistory{}).
		Where("action_id = ? AND field_changed <> ?", a.ID, "created").Count(&count).Error)
	assert.Zero(t, count)
}

func TestBulkUpdate_PerItemValidationFailures(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	a := seedAction(t, db, svc, complaint.ID, "inspect incoming batch")
	b := seedAction(t, db, svc, complaint.ID, "quarantine suspect stock")
	closed := model.ActionClosed
	_, err := svc.UpdateAction(complaint.ID, b.ID, ActionUpdateInput{Status: &closed}, "Tester")
	require.NoError(t, err)

	// The shared fields fail validation per item, not for the whole batch.
	short := "bad"
	result, err := svc.BulkUpdate(complaint.ID, []uint{a.ID, b.ID}, ActionUpdateInput{
		ActionText: &short,
	}, "Tester")
	require.NoError(t, err)
	assert.Zero(t, result.UpdatedCount)
	assert.Len(t, result.FailedUpdates, 2)
	for _, f := range result.FailedUpdates {
		assert.Contains(t, f.Error, "at least 5 characters")
	}
}

func TestBulkUpdate_FiftyActionsAcrossComplaints(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)
	other := seedComplaint(t, db)

	var ids []uint
	for i := 0; i < 5; i++ {
		a := seedAction(t, db, svc, complaint.ID, fmt.Sprintf("remediation step %d", i+1))
		ids = append(ids, a.ID)
	}
	foreign := seedAction(t, db, svc, other.ID, "belongs to another complaint")
	ids = append(ids, foreign.ID)

	notes := "swept in the weekly review"
	result, err := svc.BulkUpdate(complaint.ID, ids, ActionUpdateInput{Notes: &notes}, "Tester")
	require.NoError(t, err)
	assert.Equal(t, 5, result.UpdatedCount)
	require.Len(t, result.FailedUpdates, 1)
	assert.Equal(t, foreign.ID, result.FailedUpdates[0].ActionID)
}
