package services

import (
	"fmt"
	"sort"
	"testing"

	model "github.com/rlavoie/complaintdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionNumbers(t *testing.T, svc *ActionService, complaintID uint) map[uint]int {
	t.Helper()
	actions, err := svc.ListActions(complaintID, ActionFilter{})
	require.NoError(t, err)

	numbers := make(map[uint]int, len(actions))
	for _, a := range actions {
		numbers[a.ID] = a.ActionNumber
	}
	return numbers
}

func assertDense(t *testing.T, numbers map[uint]int) {
	t.Helper()
	seen := make([]int, 0, len(numbers))
	for _, n := range numbers {
		seen = append(seen, n)
	}
	sort.Ints(seen)
	for i, n := range seen {
		require.Equal(t, i+1, n, "action numbers must stay a dense 1..N sequence")
	}
}

func TestReorderAction_MoveDown(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	ids := make([]uint, 0, 10)
	for i := 1; i <= 10; i++ {
		a := seedAction(t, db, svc, complaint.ID, fmt.Sprintf("remediation step %d", i))
		ids = append(ids, a.ID)
	}

	// Move the first action to position 5: 2..5 each shift up by one,
	// 6..10 stay put.
	oldPos, err := svc.ReorderAction(complaint.ID, ids[0], 5, "Tester")
	require.NoError(t, err)
	assert.Equal(t, 1, oldPos)

	numbers := actionNumbers(t, svc, complaint.ID)
	assert.Equal(t, 5, numbers[ids[0]])
	for i := 1; i <= 4; i++ {
		assert.Equal(t, i, numbers[ids[i]])
	}
	for i := 5; i <= 9; i++ {
		assert.Equal(t, i+1, numbers[ids[i]])
	}
	assertDense(t, numbers)
}

func TestReorderAction_MoveUp(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	ids := make([]uint, 0, 5)
	for i := 1; i <= 5; i++ {
		a := seedAction(t, db, svc, complaint.ID, fmt.Sprintf("remediation step %d", i))
		ids = append(ids, a.ID)
	}

	oldPos, err := svc.ReorderAction(complaint.ID, ids[3], 2, "Tester")
	require.NoError(t, err)
	assert.Equal(t, 4, oldPos)

	numbers := actionNumbers(t, svc, complaint.ID)
	assert.Equal(t, 2, numbers[ids[3]])
	assert.Equal(t, 1, numbers[ids[0]])
	assert.Equal(t, 3, numbers[ids[1]])
	assert.Equal(t, 4, numbers[ids[2]])
	assert.Equal(t, 5, numbers[ids[4]])
	assertDense(t, numbers)
}

func TestReorderAction_RepeatedMovesStayDense(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	ids := make([]uint, 0, 6)
	for i := 1; i <= 6; i++ {
		a := seedAction(t, db, svc, complaint.ID, fmt.Sprintf("remediation step %d", i))
		ids = append(ids, a.ID)
	}

	moves := []struct {
		id  uint
		pos int
	}{
		{ids[0], 6}, {ids[5], 1}, {ids[2], 4}, {ids[3], 2}, {ids[1], 5},
	}
	for _, m := range moves {
		_, err := svc.ReorderAction(complaint.ID, m.id, m.pos, "Tester")
		require.NoError(t, err)
		assertDense(t, actionNumbers(t, svc, complaint.ID))
	}
}

func TestReorderAction_InvalidPosition(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	a := seedAction(t, db, svc, complaint.ID, "inspect incoming batch")
	seedAction(t, db, svc, complaint.ID, "quarantine suspect stock")

	_, err := svc.ReorderAction(complaint.ID, a.ID, 0, "Tester")
	require.ErrorIs(t, err, ErrInvalidPosition)
	_, err = svc.ReorderAction(complaint.ID, a.ID, 3, "Tester")
	require.ErrorIs(t, err, ErrInvalidPosition)
}

func TestReorderAction_NoopAndHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewActionService(db)
	complaint := seedComplaint(t, db)

	a := seedAction(t, db, svc, complaint.ID, "inspect incoming batch")
	b := seedAction(t, db, svc, complaint.ID, "quarantine suspect stock")

	// Same position is a no-op and leaves no audit entry.
	_, err := svc.ReorderAction(complaint.ID, a.ID, 1, "Tester")
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&model.ActionHistory{}).
		Where("field_changed = ?", "action_number").Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.ReorderAction(complaint.ID, b.ID, 1, "Tester")
	require.NoError(t, err)

	var entry model.ActionHistory
	require.NoError(t, db.Where("action_id = ? AND field_changed = ?", b.ID, "action_number").First(&entry).Error)
	require.NotNil(t, entry.OldValue)
	assert.Equal(t, "2", *entry.OldValue)
	require.NotNil(t, entry.NewValue)
	assert.Equal(t, "1", *entry.NewValue)
	require.NotNil(t, entry.ChangeReason)
	assert.Equal(t, "Action reordered", *entry.ChangeReason)
}
