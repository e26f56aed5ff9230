package model

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// DueDateLayout is the wire format for due dates (date only, no time part).
const DueDateLayout = "2006-01-02"

type Task struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	Assignee      string       `json:"assignee"`
	Tags          string       `json:"tags"`
	EstimateHours *int         `json:"estimate_hours"`
	Archived      bool         `json:"archived"`
	DueDate       *time.Time   `json:"due_date"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type TaskListData struct {
	Items []Task `json:"items"`
}

const (
	DefaultTaskSort = "created_at"
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// taskSortColumns is the allow-list of sortable columns. Anything else falls
// back to DefaultTaskSort so user input never reaches the query verbatim.
var taskSortColumns = map[string]struct{}{
	"created_at": {},
	"due_date":   {},
	"priority":   {},
	"status":     {},
	"title":      {},
	"assignee":   {},
}

// TaskQuery describes one filtered, sorted, paginated listing request.
// Optional filters are nil/empty when absent; present filters are AND-combined.
type TaskQuery struct {
	Status    string
	Priority  string
	Archived  *bool
	Search    string
	DueFrom   *time.Time
	DueTo     *time.Time
	SortBy    string
	Direction string
	Page      int
	Size      int
}

// Normalize clamps pagination and sanitizes sort input in place.
func (q *TaskQuery) Normalize() {
	if q.Size < 1 {
		q.Size = 1
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	if q.Page < 0 {
		q.Page = 0
	}

	sortBy := strings.TrimSpace(q.SortBy)
	if _, ok := taskSortColumns[sortBy]; !ok {
		sortBy = DefaultTaskSort
	}
	q.SortBy = sortBy

	if strings.EqualFold(strings.TrimSpace(q.Direction), "asc") {
		q.Direction = "ASC"
	} else {
		q.Direction = "DESC"
	}

	q.Search = strings.TrimSpace(q.Search)
}
