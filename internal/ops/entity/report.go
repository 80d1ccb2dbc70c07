package entity

import (
	"time"
)

// Report is a field visit report filed against a branch within a project.
type Report struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	Code           string     `json:"code" gorm:"size:32;uniqueIndex;not null"`
	ProjectID      string     `json:"project_id" gorm:"size:32;not null;index"`
	BranchID       string     `json:"branch_id" gorm:"size:32;index"`
	MerchandiserID *string    `json:"merchandiser_id" gorm:"size:32;index"`
	Status         string     `json:"status" gorm:"size:24;not null;default:new;index"`
	PlannedOn      *time.Time `json:"planned_on"`
	ReportTo       *time.Time `json:"report_to" gorm:"index"`

	// Outcome fields, carried through transitions untouched by the machine.
	IsSpecCompliant *bool  `json:"is_spec_compliant"`
	Feedback        string `json:"feedback" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

// Lifecycle statuses
const (
	StatusNew              = "new"
	StatusAssigned         = "assigned"
	StatusDraft            = "draft"
	StatusInProgress       = "in_progress"
	StatusDue              = "due"
	StatusFinished         = "finished"
	StatusOpenedByClient   = "opened_by_client"
	StatusAcceptedByClient = "accepted_by_client"
	StatusValid            = "valid"
)

// Observer-facing status groups
const (
	GroupNew       = "new"
	GroupOngoing   = "ongoing"
	GroupCompleted = "completed"
)

// statusGroups maps every lifecycle status to exactly one observer group.
// Dashboard SQL and the machine's terminal check both derive from this map,
// so the bucketing can never diverge between consumers.
var statusGroups = map[string]string{
	StatusNew:              GroupNew,
	StatusAssigned:         GroupNew,
	StatusDraft:            GroupOngoing,
	StatusInProgress:       GroupOngoing,
	StatusDue:              GroupOngoing,
	StatusFinished:         GroupOngoing,
	StatusOpenedByClient:   GroupOngoing,
	StatusAcceptedByClient: GroupOngoing,
	StatusValid:            GroupCompleted,
}

// statusOrder keeps group listings deterministic.
var statusOrder = []string{
	StatusNew,
	StatusAssigned,
	StatusDraft,
	StatusInProgress,
	StatusDue,
	StatusFinished,
	StatusOpenedByClient,
	StatusAcceptedByClient,
	StatusValid,
}

// IsValidStatus reports whether s is a member of the status enumeration.
func IsValidStatus(s string) bool {
	_, ok := statusGroups[s]
	return ok
}

// StatusGroup classifies a status into new/ongoing/completed. Unknown
// statuses classify as ongoing so a count query never drops rows, but
// IsValidStatus should be checked wherever a status enters the system.
func StatusGroup(status string) string {
	if g, ok := statusGroups[status]; ok {
		return g
	}
	return GroupOngoing
}

// StatusesInGroup returns the statuses belonging to a group, in a stable
// order. Used to build IN-lists for aggregation queries.
func StatusesInGroup(group string) []string {
	var out []string
	for _, s := range statusOrder {
		if statusGroups[s] == group {
			out = append(out, s)
		}
	}
	return out
}

// AllStatuses returns the full enumeration in a stable order.
func AllStatuses() []string {
	out := make([]string, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// Actor roles
const (
	RoleMerchandiser = "merchandiser"
	RoleClient       = "client"
	RoleAkzente      = "akzente"
	RoleScheduler    = "scheduler"
)

// Lifecycle actions
const (
	ActionAssign       = "assign"
	ActionSubmit       = "submit"
	ActionFinish       = "finish"
	ActionOpen         = "open"
	ActionAccept       = "accept"
	ActionApprove      = "approve"
	ActionSchedulerDue = "scheduler-due"
)
