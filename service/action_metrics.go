package services

import (
	"fmt"
	"log"
	"math"

	model "github.com/rlavoie/complaintdesk/models"
)

// ActionMetrics summarizes a complaint's follow-up actions for the dashboard.
type ActionMetrics struct {
	TotalActions      int            `json:"total_actions"`
	OpenActions       int            `json:"open_actions"`
	OverdueActions    int            `json:"overdue_actions"`
	CompletionRate    float64        `json:"completion_rate"`
	ActionsByStatus   map[string]int `json:"actions_by_status"`
	ActionsByPriority map[string]int `json:"actions_by_priority"`
}

// Metrics computes per-complaint action counts. Any non-closed status counts
// as open for visibility; overdue means past due date and not closed.
func (s *ActionService) Metrics(complaintID uint) (*ActionMetrics, error) {
	if _, err := findComplaint(s.db, complaintID); err != nil {
		return nil, err
	}

	var actions []model.FollowUpAction
	if err := s.db.Where("complaint_id = ?", complaintID).Find(&actions).Error; err != nil {
		log.Printf("[Metrics] complaint %d: %v", complaintID, err)
		return nil, fmt.Errorf("failed to retrieve actions: %w", err)
	}

	metrics := &ActionMetrics{
		ActionsByStatus:   make(map[string]int),
		ActionsByPriority: make(map[string]int),
	}

	cutoff := today()
	closed := 0
	for _, a := range actions {
		metrics.TotalActions++
		if a.Status != model.ActionClosed {
			metrics.OpenActions++
		} else {
			closed++
		}
		if a.DueDate != nil && a.DueDate.Before(cutoff) && a.Status != model.ActionClosed {
			metrics.OverdueActions++
		}
		metrics.ActionsByStatus[a.Status]++
		metrics.ActionsByPriority[a.Priority]++
	}

	if metrics.TotalActions > 0 {
		rate := float64(closed) / float64(metrics.TotalActions) * 100
		metrics.CompletionRate = math.Round(rate*100) / 100
	}
	return metrics, nil
}
