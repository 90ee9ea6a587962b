package models

// Priority of a planner task.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists every priority, highest first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities for display: High sorts before Medium before Low.
// Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 0
	}
}

// TaskStatus is the lifecycle state of a planner task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
	StatusDeferred   TaskStatus = "Deferred"
)

var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusDeferred}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the task no longer counts toward overdue or upcoming work.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// PlannerTask is a study-plan item with a due date.
type PlannerTask struct {
	ID          int64      `json:"id" db:"ID"`
	Subject     string     `json:"subject" db:"Subject" validate:"notblank" label:"subject"`
	Topic       string     `json:"topic" db:"Topic" validate:"notblank" label:"topic"`
	DueDate     string     `json:"due_date" db:"DueDate" validate:"required,datetime=2006-01-02" label:"due date"`
	Priority    Priority   `json:"priority" db:"Priority" validate:"enum" label:"priority"`
	Status      TaskStatus `json:"status" db:"Status" validate:"enum" label:"status"`
	Notes       string     `json:"notes,omitempty" db:"Notes"`
	CreatedDate string     `json:"created_date" db:"CreatedDate"`
}

// TaskFilter narrows PlannerRepository.LoadAll. Zero fields match everything.
type TaskFilter struct {
	Subject string
	Status  TaskStatus
}

func (f TaskFilter) Key() string {
	return "subject=" + f.Subject + ";status=" + string(f.Status)
}
