package models

// Complaint statuses.
const (
	ComplaintOpen       = "open"
	ComplaintInPlanning = "in_planning"
	ComplaintInProgress = "in_progress"
	ComplaintResolved   = "resolved"
)

// Follow-up action statuses. Cancelled is reserved for soft deletion and is
// never accepted from client input.
const (
	ActionOpen       = "open"
	ActionPending    = "pending"
	ActionInProgress = "in_progress"
	ActionBlocked    = "blocked"
	ActionEscalated  = "escalated"
	ActionClosed     = "closed"
	ActionCancelled  = "cancelled"
)

// Action priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Issue types recognized by the analytics trend buckets.
const (
	IssueWrongQuantity = "wrong_quantity"
	IssueWrongPart     = "wrong_part"
	IssueDamaged       = "damaged"
	IssueOther         = "other"
)

// Dependency types.
const (
	DependencySequential = "sequential"
	DependencyBlocking   = "blocking"
	DependencyOptional   = "optional"
)

// NormalizeComplaintStatus maps boundary input to the canonical complaint
// status set. Legacy clients still send "closed" for resolved complaints.
func NormalizeComplaintStatus(status string) (string, bool) {
	switch status {
	case ComplaintOpen, ComplaintInPlanning, ComplaintInProgress, ComplaintResolved:
		return status, true
	case "closed":
		return ComplaintResolved, true
	default:
		return "", false
	}
}

// IsValidActionStatus reports whether status is an assignable action status.
func IsValidActionStatus(status string) bool {
	switch status {
	case ActionOpen, ActionPending, ActionInProgress, ActionBlocked, ActionEscalated, ActionClosed:
		return true
	}
	return false
}

// IsValidActionPriority reports whether priority is a known priority level.
func IsValidActionPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// IsValidIssueType reports whether issueType is one of the intake taxonomy values.
func IsValidIssueType(issueType string) bool {
	switch issueType {
	case IssueWrongQuantity, IssueWrongPart, IssueDamaged, IssueOther:
		return true
	}
	return false
}

// IsValidDependencyType reports whether depType is a known dependency type.
func IsValidDependencyType(depType string) bool {
	switch depType {
	case DependencySequential, DependencyBlocking, DependencyOptional:
		return true
	}
	return false
}
