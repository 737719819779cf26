package services

import (
	"fmt"
	"testing"
	"time"

	model "github.com/rlavoie/complaintdesk/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema and a
// couple of seeded assignees ("Alice Tremblay" active, "Bob Gagnon" inactive).
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.Company{},
		&model.Part{},
		&model.ResponsiblePerson{},
		&model.Complaint{},
		&model.FollowUpAction{},
		&model.ActionHistory{},
		&model.ActionDependency{},
		&model.ComplaintAttachment{},
	)
	require.NoError(t, err)

	require.NoError(t, db.Create(&model.ResponsiblePerson{Name: "Alice Tremblay", Email: "alice@example.com", IsActive: true}).Error)
	require.NoError(t, db.Create(&model.ResponsiblePerson{Name: "Bob Gagnon", IsActive: false}).Error)

	return db
}

// seedComplaint creates a company, part and complaint to hang actions off.
func seedComplaint(t *testing.T, db *gorm.DB) *model.Complaint {
	t.Helper()
	return seedComplaintOn(t, db, time.Now(), model.IssueOther)
}

func seedComplaintOn(t *testing.T, db *gorm.DB, received time.Time, issueType string) *model.Complaint {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&model.Company{}).Count(&n).Error)

	company := model.Company{Name: fmt.Sprintf("Acme %d", n+1)}
	require.NoError(t, db.Create(&company).Error)
	part := model.Part{PartNumber: fmt.Sprintf("PN-%d", n+1)}
	require.NoError(t, db.Create(&part).Error)

	complaint := model.Complaint{
		CompanyID:    company.ID,
		PartID:       part.ID,
		IssueType:    issueType,
		Details:      "the received shipment did not match the order",
		DateReceived: received,
		Status:       model.ComplaintOpen,
	}
	require.NoError(t, db.Create(&complaint).Error)
	return &complaint
}

func seedAction(t *testing.T, db *gorm.DB, svc *ActionService, complaintID uint, text string) *model.FollowUpAction {
	t.Helper()

	action, err := svc.CreateAction(complaintID, ActionCreateInput{
		ActionText:        text,
		ResponsiblePerson: "Alice Tremblay",
	}, "Tester")
	require.NoError(t, err)
	return action
}
