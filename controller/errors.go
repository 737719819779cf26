package controller

import (
	"errors"
	"net/http"
	"strconv"

	service "github.com/rlavoie/complaintdesk/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Unknown errors stay
// opaque 500s so internal detail never leaks into responses.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrLimitExceeded),
		errors.Is(err, service.ErrInvalidReference),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrDependencyUnsatisfied),
		errors.Is(err, service.ErrCircularDependency),
		errors.Is(err, service.ErrInvalidPosition):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// uintParam parses a numeric path parameter, reporting 400 on garbage.
func uintParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}

// actor returns the audit identity for a mutating request.
func actor(ctx *gin.Context) string {
	if who := ctx.Query("changed_by"); who != "" {
		return who
	}
	return "System"
}

// intQuery parses an optional integer query parameter, falling back on junk.
func intQuery(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
