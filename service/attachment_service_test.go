package services

import (
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	model "github.com/rlavoie/complaintdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(name, contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": {contentType}},
	}
}

func TestUploadAttachment_RejectsDisallowedFiles(t *testing.T) {
	svc, company, part := newComplaintService(t)

	complaint, err := svc.CreateComplaint(ComplaintCreateInput{
		CompanyID: company.ID,
		PartID:    part.ID,
		IssueType: model.IssueOther,
		Details:   "a sufficiently detailed description",
	})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header *multipart.FileHeader
	}{
		{"executable extension", fileHeader("setup.exe", "application/octet-stream", 1024)},
		{"no extension", fileHeader("README", "text/plain", 1024)},
		{"allowed extension, bad content type", fileHeader("notes.txt", "application/x-msdownload", 1024)},
		{"over the size cap", fileHeader("photo.jpg", "image/jpeg", maxAttachmentSize+1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UploadAttachment(complaint.ID, nil, tc.header)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateAttachmentHeader_AllowedTypes(t *testing.T) {
	allowed := []struct {
		filename    string
		contentType string
	}{
		{"scan.pdf", "application/pdf"},
		{"PHOTO.JPG", "image/jpeg"},
		{"diagram.png", "image/png"},
		{"report.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"notes.txt", "text/plain"},
	}
	for _, tc := range allowed {
		ext, err := validateAttachmentHeader(fileHeader(tc.filename, tc.contentType, 1024))
		require.NoError(t, err, tc.filename)
		assert.Equal(t, strings.ToLower(ext), ext)
	}
}

func TestAttachmentStorageKey_UniqueAndSanitized(t *testing.T) {
	first := attachmentStorageKey(7, ".pdf")
	second := attachmentStorageKey(7, ".pdf")

	assert.NotEqual(t, first, second)
	for _, key := range []string{first, second} {
		assert.True(t, strings.HasPrefix(key, fmt.Sprintf("complaints/%d/", 7)), key)
		assert.True(t, strings.HasSuffix(key, ".pdf"), key)
		assert.NotContains(t, key, " ")
	}
}
