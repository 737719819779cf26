package controller

import (
	"log"
	"net/http"

	service "github.com/rlavoie/complaintdesk/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsController serves dashboard aggregates
type AnalyticsController struct {
	service *service.AnalyticsService
}

// NewAnalyticsController initializes the controller with the service
func NewAnalyticsController(service *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{service}
}

// GetRARMetrics reports return/authorization/rejection rates
func (c *AnalyticsController) GetRARMetrics(ctx *gin.Context) {
	metrics, err := c.service.GetRARMetrics()
	if err != nil {
		log.Printf("[GetRARMetrics] %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, metrics)
}

// GetFailureModes ranks windowed issue types by frequency
func (c *AnalyticsController) GetFailureModes(ctx *gin.Context) {
	modes, err := c.service.GetFailureModes(intQuery(ctx, "weeks", 0), intQuery(ctx, "limit", 0))
	if err != nil {
		log.Printf("[GetFailureModes] %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, modes)
}

// GetWeeklyTypeTrends buckets recent complaints by ISO week and issue type
func (c *AnalyticsController) GetWeeklyTypeTrends(ctx *gin.Context) {
	trends, err := c.service.GetWeeklyTypeTrends(intQuery(ctx, "weeks", 0))
	if err != nil {
		log.Printf("[GetWeeklyTypeTrends] %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, trends)
}

// GetStatusCounts counts windowed complaints per lifecycle status
func (c *AnalyticsController) GetStatusCounts(ctx *gin.Context) {
	counts, err := c.service.GetStatusCounts(intQuery(ctx, "weeks", 0))
	if err != nil {
		log.Printf("[GetStatusCounts] %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, counts)
}

// GetMTTR reports mean time to resolution over the window
func (c *AnalyticsController) GetMTTR(ctx *gin.Context) {
	mttr, err := c.service.GetMTTR(intQuery(ctx, "weeks", 0))
	if err != nil {
		log.Printf("[GetMTTR] %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, mttr)
}

// GetTopCompanies ranks companies by complaint count
func (c *AnalyticsController) GetTopCompanies(ctx *gin.Context) {
	entries, err := c.service.GetTopCompanies(intQuery(ctx, "weeks", 0), intQuery(ctx, "limit", 0))
	if err != nil {
		log.Printf("[GetTopCompanies] %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, entries)
}

// GetTopParts ranks parts by complaint count
func (c *AnalyticsController) GetTopParts(ctx *gin.Context) {
	entries, err := c.service.GetTopParts(intQuery(ctx, "weeks", 0), intQuery(ctx, "limit", 0))
	if err != nil {
		log.Printf("[GetTopParts] %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, entries)
}

// GetActionsPerComplaint reports follow-up action density
func (c *AnalyticsController) GetActionsPerComplaint(ctx *gin.Context) {
	result, err := c.service.GetActionsPerComplaint(intQuery(ctx, "weeks", 0))
	if err != nil {
		log.Printf("[GetActionsPerComplaint] %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}
