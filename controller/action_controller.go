package controller

import (
	"log"
	"net/http"

	service "github.com/rlavoie/complaintdesk/service"

	"github.com/gin-gonic/gin"
)

// ActionController manages HTTP requests for follow-up actions
type ActionController struct {
	service *service.ActionService
}

// NewActionController initializes the controller with the service
func NewActionController(service *service.ActionService) *ActionController {
	return &ActionController{service}
}

// CreateAction adds a follow-up action to a complaint
func (c *ActionController) CreateAction(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}

	var in service.ActionCreateInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	action, err := c.service.CreateAction(complaintID, in, actor(ctx))
	if err != nil {
		log.Printf("[CreateAction] complaint %d: %v", complaintID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, action)
}

// ListActions returns a complaint's actions ordered by action number
func (c *ActionController) ListActions(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}

	filter := service.ActionFilter{
		Status:            ctx.Query("status"),
		ResponsiblePerson: ctx.Query("responsible_person"),
		OverdueOnly:       ctx.Query("overdue") == "true",
	}

	actions, err := c.service.ListActions(complaintID, filter)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"actions": actions,
		"total":   len(actions),
	})
}

// GetAction returns one action
func (c *ActionController) GetAction(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}
	actionID, ok := uintParam(ctx, "actionId")
	if !ok {
		return
	}

	action, err := c.service.GetAction(complaintID, actionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, action)
}

// UpdateAction applies a partial update and records the audit trail
func (c *ActionController) UpdateAction(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}
	actionID, ok := uintParam(ctx, "actionId")
	if !ok {
		return
	}

	var in service.ActionUpdateInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	action, err := c.service.UpdateAction(complaintID, actionID, in, actor(ctx))
	if err != nil {
		log.Printf("[UpdateAction] action %d: %v", actionID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, action)
}

// DeleteAction cancels an action without removing the row
func (c *ActionController) DeleteAction(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}
	actionID, ok := uintParam(ctx, "actionId")
	if !ok {
		return
	}

	if err := c.service.DeleteAction(complaintID, actionID, actor(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Action cancelled successfully"})
}

// StartAction moves an open action to in_progress once its dependencies allow
func (c *ActionController) StartAction(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}
	actionID, ok := uintParam(ctx, "actionId")
	if !ok {
		return
	}

	action, err := c.service.StartAction(complaintID, actionID, actor(ctx))
	if err != nil {
		log.Printf("[StartAction] action %d: %v", actionID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Action started successfully",
		"action":  action,
	})
}

// ReorderAction moves an action to a new position in the complaint's sequence
func (c *ActionController) ReorderAction(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}
	actionID, ok := uintParam(ctx, "actionId")
	if !ok {
		return
	}

	var req struct {
		NewPosition int `json:"new_position" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	oldPosition, err := c.service.ReorderAction(complaintID, actionID, req.NewPosition, actor(ctx))
	if err != nil {
		log.Printf("[ReorderAction] action %d: %v", actionID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message":      "Action reordered successfully",
		"old_position": oldPosition,
		"new_position": req.NewPosition,
	})
}

// BulkUpdateActions applies shared fields to up to 50 actions at once
func (c *ActionController) BulkUpdateActions(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}

	var req struct {
		ActionIDs []uint                    `json:"action_ids" binding:"required"`
		Fields    service.ActionUpdateInput `json:"update_fields"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := c.service.BulkUpdate(complaintID, req.ActionIDs, req.Fields, actor(ctx))
	if err != nil {
		log.Printf("[BulkUpdateActions] complaint %d: %v", complaintID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetActionHistory returns the audit trail for one action, newest first
func (c *ActionController) GetActionHistory(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}
	actionID, ok := uintParam(ctx, "actionId")
	if !ok {
		return
	}

	history, err := c.service.History(complaintID, actionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"history": history,
		"total":   len(history),
	})
}

// GetActionMetrics summarizes a complaint's actions for the dashboard
func (c *ActionController) GetActionMetrics(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}

	metrics, err := c.service.Metrics(complaintID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, metrics)
}

// AddDependency records that one action must wait on another
func (c *ActionController) AddDependency(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}
	actionID, ok := uintParam(ctx, "actionId")
	if !ok {
		return
	}

	var req struct {
		DependsOnActionID uint   `json:"depends_on_action_id" binding:"required"`
		DependencyType    string `json:"dependency_type"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	dependency, err := c.service.AddDependency(complaintID, actionID, req.DependsOnActionID, req.DependencyType)
	if err != nil {
		log.Printf("[AddDependency] action %d: %v", actionID, err)
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dependency)
}

// ListDependencies returns an action's outgoing dependency edges
func (c *ActionController) ListDependencies(ctx *gin.Context) {
	complaintID, ok := uintParam(ctx, "complaintId")
	if !ok {
		return
	}
	actionID, ok := uintParam(ctx, "actionId")
	if !ok {
		return
	}

	dependencies, err := c.service.ListDependencies(complaintID, actionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"dependencies": dependencies,
		"total":        len(dependencies),
	})
}

// ListResponsiblePersons returns assignable actors
func (c *ActionController) ListResponsiblePersons(ctx *gin.Context) {
	activeOnly := ctx.DefaultQuery("active_only", "true") == "true"
	persons, err := c.service.ListResponsiblePersons(activeOnly, ctx.Query("search"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"persons": persons,
		"total":   len(persons),
	})
}

// CreateResponsiblePerson registers a new assignable actor
func (c *ActionController) CreateResponsiblePerson(ctx *gin.Context) {
	var in service.ResponsiblePersonInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	person, err := c.service.CreateResponsiblePerson(in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, person)
}

// UpdateResponsiblePerson applies a partial update to an actor
func (c *ActionController) UpdateResponsiblePerson(ctx *gin.Context) {
	personID, ok := uintParam(ctx, "personId")
	if !ok {
		return
	}

	var in service.ResponsiblePersonInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	person, err := c.service.UpdateResponsiblePerson(personID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, person)
}

// DeactivateResponsiblePerson soft-deletes an actor
func (c *ActionController) DeactivateResponsiblePerson(ctx *gin.Context) {
	personID, ok := uintParam(ctx, "personId")
	if !ok {
		return
	}

	if err := c.service.DeactivateResponsiblePerson(personID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Responsible person deactivated successfully"})
}
