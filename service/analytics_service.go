package services

import (
	"fmt"
	"log"
	"math"
	"time"

	model "github.com/rlavoie/complaintdesk/models"
	"gorm.io/gorm"
)

// DefaultAnalyticsWeeks is the reporting window used when callers do not
// supply one. Windows are clamped to [1, 52] whole ISO weeks.
const DefaultAnalyticsWeeks = 12

// AnalyticsService computes read-side dashboard aggregates over complaints
// and their follow-up actions.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// RARMetrics reports return/authorization/rejection rates over all complaints.
type RARMetrics struct {
	ReturnRate        float64 `json:"returnRate"`
	AuthorizationRate float64 `json:"authorizationRate"`
	RejectionRate     float64 `json:"rejectionRate"`
	TotalComplaints   int64   `json:"totalComplaints"`
	Period            string  `json:"period"`
}

// FailureMode is one issue_type with its complaint count.
type FailureMode struct {
	IssueType string `json:"issueType"`
	Count     int    `json:"count"`
}

// WeeklyTypeTrend buckets one ISO week of complaints by issue type.
type WeeklyTypeTrend struct {
	Week          string `json:"week"`
	WrongQuantity int    `json:"wrong_quantity"`
	WrongPart     int    `json:"wrong_part"`
	Damaged       int    `json:"damaged"`
	Other         int    `json:"other"`
	Total         int    `json:"total"`
}

// StatusCounts holds windowed complaint counts per lifecycle status.
type StatusCounts struct {
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
}

// MTTRResult is the mean time to resolution in days over resolved complaints.
type MTTRResult struct {
	MTTRDays float64 `json:"mttr_days"`
	Count    int     `json:"count"`
}

// TopEntry is one company or part with its complaint count.
type TopEntry struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ActionsPerComplaint reports follow-up action density in the window.
type ActionsPerComplaint struct {
	ActionsPerComplaint float64 `json:"actions_per_complaint"`
	ComplaintCount      int64   `json:"complaint_count"`
	ActionCount         int64   `json:"action_count"`
}

// ClampWeeks normalizes a requested window to [1, 52], defaulting when unset.
func ClampWeeks(weeks int) int {
	if weeks == 0 {
		return DefaultAnalyticsWeeks
	}
	if weeks < 1 {
		return 1
	}
	if weeks > 52 {
		return 52
	}
	return weeks
}

// windowStart returns the Monday opening the ISO week `weeks-1` weeks before
// the current one, so the window always covers whole weeks including the
// current (partial) week.
func windowStart(weeks int) time.Time {
	monday := startOfISOWeek(today())
	return monday.AddDate(0, 0, -7*(weeks-1))
}

func startOfISOWeek(day time.Time) time.Time {
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func isoWeekLabel(day time.Time) string {
	year, week := day.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GetRARMetrics computes all-time return/authorization/rejection rates.
// Rates are zero, not an error, when no complaints exist.
func (s *AnalyticsService) GetRARMetrics() (*RARMetrics, error) {
	var total int64
	if err := s.db.Model(&model.Complaint{}).Count(&total).Error; err != nil {
		log.Printf("[GetRARMetrics] %v", err)
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}

	metrics := &RARMetrics{TotalComplaints: total, Period: "all_time"}
	if total == 0 {
		return metrics, nil
	}

	countStatus := func(status string) (int64, error) {
		var n int64
		err := s.db.Model(&model.Complaint{}).Where("status = ?", status).Count(&n).Error
		return n, err
	}

	returned, err := countStatus("returned")
	if err != nil {
		return nil, fmt.Errorf("failed to count returned complaints: %w", err)
	}
	authorized, err := countStatus("authorized")
	if err != nil {
		return nil, fmt.Errorf("failed to count authorized complaints: %w", err)
	}
	rejected, err := countStatus("rejected")
	if err != nil {
		return nil, fmt.Errorf("failed to count rejected complaints: %w", err)
	}

	metrics.ReturnRate = float64(returned) / float64(total) * 100
	metrics.AuthorizationRate = float64(authorized) / float64(total) * 100
	metrics.RejectionRate = float64(rejected) / float64(total) * 100
	return metrics, nil
}

// GetFailureModes ranks issue types by windowed complaint count, descending.
func (s *AnalyticsService) GetFailureModes(weeks, limit int) ([]FailureMode, error) {
	weeks = ClampWeeks(weeks)
	if limit <= 0 {
		limit = 3
	}

	var modes []FailureMode
	err := s.db.Model(&model.Complaint{}).
		Select("issue_type AS issue_type, COUNT(id) AS count").
		Where("is_deleted = ? AND date_received >= ?", false, windowStart(weeks)).
		Group("issue_type").
		Order("count DESC").
		Limit(limit).
		Scan(&modes).Error
	if err != nil {
		log.Printf("[GetFailureModes] %v", err)
		return nil, fmt.Errorf("failed to aggregate failure modes: %w", err)
	}
	return modes, nil
}

// GetWeeklyTypeTrends buckets the last N ISO weeks of complaints by issue
// type, keyed by the business date received, oldest week first. Weeks with
// no complaints still appear with zero counts.
func (s *AnalyticsService) GetWeeklyTypeTrends(weeks int) ([]WeeklyTypeTrend, error) {
	weeks = ClampWeeks(weeks)
	start := windowStart(weeks)

	var complaints []model.Complaint
	err := s.db.Model(&model.Complaint{}).
		Select("issue_type", "date_received").
		Where("is_deleted = ? AND date_received >= ?", false, start).
		Find(&complaints).Error
	if err != nil {
		log.Printf("[GetWeeklyTypeTrends] %v", err)
		return nil, fmt.Errorf("failed to load complaints for trends: %w", err)
	}

	trends := make([]WeeklyTypeTrend, weeks)
	index := make(map[string]*WeeklyTypeTrend, weeks)
	for i := 0; i < weeks; i++ {
		label := isoWeekLabel(start.AddDate(0, 0, 7*i))
		trends[i] = WeeklyTypeTrend{Week: label}
		index[label] = &trends[i]
	}

	for _, c := range complaints {
		bucket, ok := index[isoWeekLabel(c.DateReceived)]
		if !ok {
			continue
		}
		switch c.IssueType {
		case model.IssueWrongQuantity:
			bucket.WrongQuantity++
		case model.IssueWrongPart:
			bucket.WrongPart++
		case model.IssueDamaged:
			bucket.Damaged++
		default:
			bucket.Other++
		}
		bucket.Total++
	}
	return trends, nil
}

// GetStatusCounts counts open/in_progress/resolved complaints in the window.
func (s *AnalyticsService) GetStatusCounts(weeks int) (*StatusCounts, error) {
	weeks = ClampWeeks(weeks)
	start := windowStart(weeks)

	type row struct {
		Status string
		Count  int
	}
	var rows []row
	err := s.db.Model(&model.Complaint{}).
		Select("status AS status, COUNT(id) AS count").
		Where("is_deleted = ? AND date_received >= ?", false, start).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		log.Printf("[GetStatusCounts] %v", err)
		return nil, fmt.Errorf("failed to aggregate status counts: %w", err)
	}

	counts := &StatusCounts{}
	for _, r := range rows {
		switch r.Status {
		case model.ComplaintOpen:
			counts.Open = r.Count
		case model.ComplaintInProgress:
			counts.InProgress = r.Count
		case model.ComplaintResolved:
			counts.Resolved = r.Count
		}
	}
	return counts, nil
}

// GetMTTR computes the mean days from intake to resolution over windowed
// complaints with a resolution date. Empty windows yield {0, 0}.
func (s *AnalyticsService) GetMTTR(weeks int) (*MTTRResult, error) {
	weeks = ClampWeeks(weeks)
	start := windowStart(weeks)

	var complaints []model.Complaint
	err := s.db.Model(&model.Complaint{}).
		Select("date_received", "resolved_at").
		Where("is_deleted = ? AND date_received >= ? AND resolved_at IS NOT NULL", false, start).
		Find(&complaints).Error
	if err != nil {
		log.Printf("[GetMTTR] %v", err)
		return nil, fmt.Errorf("failed to load resolved complaints: %w", err)
	}

	if len(complaints) == 0 {
		return &MTTRResult{}, nil
	}

	var totalDays float64
	for _, c := range complaints {
		resolved := time.Date(c.ResolvedAt.Year(), c.ResolvedAt.Month(), c.ResolvedAt.Day(), 0, 0, 0, 0, time.UTC)
		received := time.Date(c.DateReceived.Year(), c.DateReceived.Month(), c.DateReceived.Day(), 0, 0, 0, 0, time.UTC)
		totalDays += resolved.Sub(received).Hours() / 24
	}
	return &MTTRResult{
		MTTRDays: round2(totalDays / float64(len(complaints))),
		Count:    len(complaints),
	}, nil
}

// GetTopCompanies ranks companies by windowed complaint count. An empty
// window widens to 52 weeks and then to all-time before returning empty.
func (s *AnalyticsService) GetTopCompanies(weeks, limit int) ([]TopEntry, error) {
	return s.topEntries(weeks, limit, "company_id", "companies", "companies.name", "Company %d")
}

// GetTopParts ranks parts by windowed complaint count with the same widening.
func (s *AnalyticsService) GetTopParts(weeks, limit int) ([]TopEntry, error) {
	return s.topEntries(weeks, limit, "part_id", "parts", "parts.part_number", "Part %d")
}

func (s *AnalyticsService) topEntries(weeks, limit int, fkColumn, joinTable, nameColumn, fallback string) ([]TopEntry, error) {
	weeks = ClampWeeks(weeks)
	if limit <= 0 {
		limit = 5
	}

	query := func(start *time.Time) ([]TopEntry, error) {
		type row struct {
			ID    uint
			Name  *string
			Count int
		}
		q := s.db.Model(&model.Complaint{}).
			Select(fmt.Sprintf("complaints.%s AS id, %s AS name, COUNT(complaints.id) AS count", fkColumn, nameColumn)).
			Joins(fmt.Sprintf("LEFT JOIN %s ON %s.id = complaints.%s", joinTable, joinTable, fkColumn)).
			Where("complaints.is_deleted = ?", false)
		if start != nil {
			q = q.Where("complaints.date_received >= ?", *start)
		}
		var rows []row
		err := q.Group(fmt.Sprintf("complaints.%s, %s", fkColumn, nameColumn)).
			Order("count DESC").
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}

		entries := make([]TopEntry, 0, len(rows))
		for _, r := range rows {
			name := fmt.Sprintf(fallback, r.ID)
			if r.Name != nil && *r.Name != "" {
				name = *r.Name
			}
			entries = append(entries, TopEntry{ID: r.ID, Name: name, Count: r.Count})
		}
		return entries, nil
	}

	for _, window := range []int{weeks, 52} {
		start := windowStart(window)
		entries, err := query(&start)
		if err != nil {
			log.Printf("[topEntries] %s window %d: %v", fkColumn, window, err)
			return nil, fmt.Errorf("failed to aggregate top %s: %w", joinTable, err)
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	entries, err := query(nil)
	if err != nil {
		log.Printf("[topEntries] %s all-time: %v", fkColumn, err)
		return nil, fmt.Errorf("failed to aggregate top %s: %w", joinTable, err)
	}
	return entries, nil
}

// GetActionsPerComplaint divides follow-up actions on windowed complaints by
// the windowed complaint count. Zero complaints yields zero.
func (s *AnalyticsService) GetActionsPerComplaint(weeks int) (*ActionsPerComplaint, error) {
	weeks = ClampWeeks(weeks)
	start := windowStart(weeks)

	var complaintCount int64
	err := s.db.Model(&model.Complaint{}).
		Where("is_deleted = ? AND date_received >= ?", false, start).
		Count(&complaintCount).Error
	if err != nil {
		log.Printf("[GetActionsPerComplaint] %v", err)
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}

	result := &ActionsPerComplaint{ComplaintCount: complaintCount}
	if complaintCount == 0 {
		return result, nil
	}

	err = s.db.Model(&model.FollowUpAction{}).
		Joins("JOIN complaints ON complaints.id = follow_up_actions.complaint_id").
		Where("complaints.is_deleted = ? AND complaints.date_received >= ?", false, start).
		Count(&result.ActionCount).Error
	if err != nil {
		log.Printf("[GetActionsPerComplaint] %v", err)
		return nil, fmt.Errorf("failed to count actions: %w", err)
	}

	result.ActionsPerComplaint = round2(float64(result.ActionCount) / float64(complaintCount))
	return result, nil
}
