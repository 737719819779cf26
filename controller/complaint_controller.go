package controller

import (
	"log"
	"net/http"

	service "github.com/rlavoie/complaintdesk/service"

	"github.com/gin-gonic/gin"
)

// ComplaintController manages HTTP requests for complaints, attachments and
// the reference data they hang off (companies, parts).
type ComplaintController struct {
	service *service.ComplaintService
}

// NewComplaintController initializes the controller with the service
func NewComplaintController(service *service.ComplaintService) *ComplaintController {
	return &ComplaintController{service}
}

// CreateComplaint records a new complaint
func (c *ComplaintController) CreateComplaint(ctx *gin.Context) {
	var in service.ComplaintCreateInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	complaint, err := c.service.CreateComplaint(in)
	if err != nil {
		log.Printf("[CreateComplaint] %v", err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, complaint)
}

// ListComplaints returns non-deleted complaints, newest first
func (c *ComplaintController) ListComplaints(ctx *gin.Context) {
	filter := service.ComplaintFilter{
		Status:    ctx.Query("status"),
		IssueType: ctx.Query("issue_type"),
		CompanyID: uint(intQuery(ctx, "company_id", 0)),
		Search:    ctx.Query("search"),
		Skip:      intQuery(ctx, "skip", 0),
		Limit:     intQuery(ctx, "limit", 0),
	}

	complaints, err := c.service.ListComplaints(filter)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"complaints": complaints,
		"total":      len(complaints),
	})
}

// GetComplaint returns one complaint with its associations
func (c *ComplaintController) GetComplaint(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}

	complaint, err := c.service.GetComplaint(complaintID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, complaint)
}

// UpdateComplaint applies a partial update
func (c *ComplaintController) UpdateComplaint(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}

	var in service.ComplaintUpdateInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	complaint, err := c.service.UpdateComplaint(complaintID, in)
	if err != nil {
		log.Printf("[UpdateComplaint] complaint %d: %v", complaintID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, complaint)
}

// DeleteComplaint soft-deletes a complaint
func (c *ComplaintController) DeleteComplaint(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}

	if err := c.service.DeleteComplaint(complaintID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Complaint deleted successfully"})
}

// UploadAttachment handles the file upload request for a complaint
func (c *ComplaintController) UploadAttachment(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get file from request"})
		return
	}
	defer file.Close()

	attachment, err := c.service.UploadAttachment(complaintID, file, header)
	if err != nil {
		log.Printf("[UploadAttachment] complaint %d: %v", complaintID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":    "Attachment uploaded successfully",
		"attachment": attachment,
	})
}

// ListAttachments returns a complaint's uploaded files
func (c *ComplaintController) ListAttachments(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}

	attachments, err := c.service.ListAttachments(complaintID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"attachments": attachments,
		"total":       len(attachments),
	})
}

// DeleteAttachment removes an uploaded file
func (c *ComplaintController) DeleteAttachment(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}
	attachmentID, ok := uintParam(ctx, "attachmentId")
	if !ok {
		return
	}

	if err := c.service.DeleteAttachment(complaintID, attachmentID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Attachment deleted successfully"})
}

// SearchComplaints runs a free-text search over the complaint index
func (c *ComplaintController) SearchComplaints(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	results, err := c.service.SearchComplaints(query)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Search completed successfully",
		"results": results,
	})
}

// CreateCompany registers a customer
func (c *ComplaintController) CreateCompany(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	company, err := c.service.CreateCompany(req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, company)
}

// ListCompanies returns registered customers
func (c *ComplaintController) ListCompanies(ctx *gin.Context) {
	companies, err := c.service.ListCompanies(ctx.Query("search"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"companies": companies,
		"total":     len(companies),
	})
}

// CreatePart registers a part number
func (c *ComplaintController) CreatePart(ctx *gin.Context) {
	var req struct {
		PartNumber  string `json:"part_number" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	part, err := c.service.CreatePart(req.PartNumber, req.Description)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, part)
}

// ListParts returns registered parts
func (c *ComplaintController) ListParts(ctx *gin.Context) {
	parts, err := c.service.ListParts(ctx.Query("search"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"parts": parts,
		"total": len(parts),
	})
}
