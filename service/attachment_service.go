package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	model "github.com/rlavoie/complaintdesk/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

var allowedAttachmentExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true, ".txt": true,
}

var allowedAttachmentMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

// validateAttachmentHeader enforces the size cap and the extension/MIME
// allowlist, returning the lower-cased extension for key generation.
func validateAttachmentHeader(header *multipart.FileHeader) (string, error) {
	if header.Size > maxAttachmentSize {
		return "", fmt.Errorf("%w: file exceeds the 10MB attachment limit", ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAttachmentExtensions[ext] {
		return "", fmt.Errorf("%w: file extension %q is not allowed", ErrValidation, ext)
	}
	mimeType := header.Header.Get("Content-Type")
	if !allowedAttachmentMimeTypes[mimeType] {
		return "", fmt.Errorf("%w: file type %q is not allowed", ErrValidation, mimeType)
	}
	return ext, nil
}

// attachmentStorageKey builds a collision-free object key. The client
// filename never reaches the key; only its vetted extension does.
func attachmentStorageKey(complaintID uint, ext string) string {
	return fmt.Sprintf("complaints/%d/%s%s", complaintID, uuid.New().String(), ext)
}

// UploadAttachment stores the file in S3 and records it against the complaint.
func (s *ComplaintService) UploadAttachment(complaintID uint, file multipart.File, header *multipart.FileHeader) (*model.ComplaintAttachment, error) {
	log.Printf("[UploadAttachment] complaint %d: Name=%s, Size=%d", complaintID, header.Filename, header.Size)

	complaint, err := s.GetComplaint(complaintID)
	if err != nil {
		return nil, err
	}
	ext, err := validateAttachmentHeader(header)
	if err != nil {
		return nil, err
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[UploadAttachment] reading file: %v", err)
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		log.Println("SUPABASE_BUCKET environment variable is not set")
		return nil, fmt.Errorf("bucket name not configured")
	}

	storageKey := attachmentStorageKey(complaintID, ext)
	uploadInput := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(storageKey),
		Body:        bytes.NewReader(fileBytes),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(header.Header.Get("Content-Type")),
	}
	if _, err := s.s3Client.PutObject(uploadInput); err != nil {
		log.Printf("[UploadAttachment] S3 upload error: %v", err)
		return nil, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	fileURL := fmt.Sprintf("%s/object/public/%s/%s", os.Getenv("SUPABASE_S3_URL"), bucket, storageKey)
	log.Printf("[UploadAttachment] file stored at: %s", fileURL)

	attachment := model.ComplaintAttachment{
		ComplaintID:      complaintID,
		Filename:         filepath.Base(storageKey),
		OriginalFilename: header.Filename,
		StorageKey:       storageKey,
		FileURL:          fileURL,
		FileSize:         header.Size,
		MimeType:         header.Header.Get("Content-Type"),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attachment).Error; err != nil {
			return fmt.Errorf("failed to save attachment: %w", err)
		}
		if !complaint.HasAttachments {
			if err := tx.Model(&model.Complaint{}).Where("id = ?", complaintID).
				Update("has_attachments", true).Error; err != nil {
				return fmt.Errorf("failed to flag complaint attachments: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[UploadAttachment] complaint %d: %v", complaintID, err)
		return nil, err
	}
	return &attachment, nil
}

// ListAttachments returns the files recorded against a complaint, oldest first.
func (s *ComplaintService) ListAttachments(complaintID uint) ([]model.ComplaintAttachment, error) {
	if _, err := s.GetComplaint(complaintID); err != nil {
		return nil, err
	}

	var attachments []model.ComplaintAttachment
	if err := s.db.Where("complaint_id = ?", complaintID).Order("created_at").Find(&attachments).Error; err != nil {
		log.Printf("[ListAttachments] complaint %d: %v", complaintID, err)
		return nil, fmt.Errorf("failed to retrieve attachments: %w", err)
	}
	return attachments, nil
}

// DeleteAttachment removes a file from S3 and the database. When the last
// attachment goes, the complaint's has_attachments flag is cleared.
func (s *ComplaintService) DeleteAttachment(complaintID, attachmentID uint) error {
	var attachment model.ComplaintAttachment
	err := s.db.Where("id = ? AND complaint_id = ?", attachmentID, complaintID).First(&attachment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: attachment not found", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch attachment: %w", err)
	}

	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket != "" {
		_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(attachment.StorageKey),
		})
		if err != nil {
			// Keep going; the database row is the source of truth.
			log.Printf("[DeleteAttachment] S3 delete error for %s: %v", attachment.StorageKey, err)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&attachment).Error; err != nil {
			return fmt.Errorf("failed to delete attachment: %w", err)
		}
		var remaining int64
		if err := tx.Model(&model.ComplaintAttachment{}).
			Where("complaint_id = ?", complaintID).Count(&remaining).Error; err != nil {
			return fmt.Errorf("failed to count attachments: %w", err)
		}
		if remaining == 0 {
			if err := tx.Model(&model.Complaint{}).Where("id = ?", complaintID).
				Update("has_attachments", false).Error; err != nil {
				return fmt.Errorf("failed to clear complaint attachments flag: %w", err)
			}
		}
		return nil
	})
}
