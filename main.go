package main

import (
	"log"
	"net/http"
	"os"

	controller "github.com/rlavoie/complaintdesk/controller"
	"github.com/rlavoie/complaintdesk/initializers"
	middleware "github.com/rlavoie/complaintdesk/middleware"
	service "github.com/rlavoie/complaintdesk/service"

	"github.com/gin-gonic/gin"
)

func init() {
	if err := initializers.LoadEnv(); err != nil {
		log.Printf("[WARN] No .env file loaded: %s", err)
	}
	if err := initializers.ConnectDB(); err != nil {
		log.Fatalf("[CRITICAL] Failed to initialize database connection: %s", err)
	}
	if err := initializers.Migrate(); err != nil {
		log.Fatalf("[CRITICAL] Failed to run database migrations: %s", err)
	}
}

func main() {
	complaintService, err := service.NewComplaintService(initializers.DB)
	if err != nil {
		log.Fatalf("Failed to initialize complaint service: %s", err)
	}
	actionService := service.NewActionService(initializers.DB)
	analyticsService := service.NewAnalyticsService(initializers.DB)

	complaintController := controller.NewComplaintController(complaintService)
	actionController := controller.NewActionController(actionService)
	analyticsController := controller.NewAnalyticsController(analyticsService)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.GlobalRateLimiter.Limit())

	strict := middleware.StrictRateLimiter.Limit()

	// Healthcheck endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")

	// Reference data
	api.POST("/companies", strict, complaintController.CreateCompany)
	api.GET("/companies", complaintController.ListCompanies)
	api.POST("/parts", strict, complaintController.CreatePart)
	api.GET("/parts", complaintController.ListParts)

	api.GET("/responsibles", actionController.ListResponsiblePersons)
	api.POST("/responsibles", strict, actionController.CreateResponsiblePerson)
	api.PUT("/responsibles/:personId", strict, actionController.UpdateResponsiblePerson)
	api.DELETE("/responsibles/:personId", strict, actionController.DeactivateResponsiblePerson)

	// Complaints
	api.POST("/complaints", strict, complaintController.CreateComplaint)
	api.GET("/complaints", complaintController.ListComplaints)
	api.GET("/complaints/search", complaintController.SearchComplaints)
	api.GET("/complaints/:complaintId", complaintController.GetComplaint)
	api.PUT("/complaints/:complaintId", strict, complaintController.UpdateComplaint)
	api.DELETE("/complaints/:complaintId", strict, complaintController.DeleteComplaint)

	// Attachments
	api.POST("/complaints/:complaintId/attachments", strict, complaintController.UploadAttachment)
	api.GET("/complaints/:complaintId/attachments", complaintController.ListAttachments)
	api.DELETE("/complaints/:complaintId/attachments/:attachmentId", strict, complaintController.DeleteAttachment)

	// Follow-up actions
	api.POST("/complaints/:complaintId/actions", strict, actionController.CreateAction)
	api.GET("/complaints/:complaintId/actions", actionController.ListActions)
	api.GET("/complaints/:complaintId/actions/metrics", actionController.GetActionMetrics)
	api.PUT("/complaints/:complaintId/actions/bulk-update", strict, actionController.BulkUpdateActions)
	api.GET("/complaints/:complaintId/actions/:actionId", actionController.GetAction)
	api.PUT("/complaints/:complaintId/actions/:actionId", strict, actionController.UpdateAction)
	api.DELETE("/complaints/:complaintId/actions/:actionId", strict, actionController.DeleteAction)
	api.POST("/complaints/:complaintId/actions/:actionId/start", strict, actionController.StartAction)
	api.PUT("/complaints/:complaintId/actions/:actionId/reorder", strict, actionController.ReorderAction)
	api.GET("/complaints/:complaintId/actions/:actionId/history", actionController.GetActionHistory)
	api.POST("/complaints/:complaintId/actions/:actionId/dependencies", strict, actionController.AddDependency)
	api.GET("/complaints/:complaintId/actions/:actionId/dependencies", actionController.ListDependencies)

	// Analytics
	analytics := api.Group("/analytics")
	analytics.GET("/rar-metrics", analyticsController.GetRARMetrics)
	analytics.GET("/failure-modes", analyticsController.GetFailureModes)
	analytics.GET("/weekly-type-trends", analyticsController.GetWeeklyTypeTrends)
	analytics.GET("/status-counts", analyticsController.GetStatusCounts)
	analytics.GET("/mttr", analyticsController.GetMTTR)
	analytics.GET("/top/companies", analyticsController.GetTopCompanies)
	analytics.GET("/top/parts", analyticsController.GetTopParts)
	analytics.GET("/actions-per-complaint", analyticsController.GetActionsPerComplaint)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	router.Run(":" + port)
}
