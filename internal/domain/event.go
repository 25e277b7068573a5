package domain

// EventKind is the closed set of domain events notifications fan out for.
// Anything outside this set resolves to no recipients.
type EventKind string

const (
	EventTaskCreated    EventKind = "task.created"
	EventTaskUpdated    EventKind = "task.updated"
	EventTaskAssigned   EventKind = "task.assigned"
	EventCommentCreated EventKind = "comment.created"
	EventStatusChanged  EventKind = "status.changed"
)

// TaskSnapshot captures task state at dispatch time. Zero IDs mean unset
// (no assignee, no reviewer).
type TaskSnapshot struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	AssigneeID  int64  `json:"assignee_employee_id"`
	ReviewerID  int64  `json:"reviewer_employee_id"`
	ProjectID   int64  `json:"project_id"`
}

type Comment struct {
	ID       int64  `json:"id"`
	AuthorID int64  `json:"author_employee_id"`
	Body     string `json:"body"`
}

// NotifyContext describes one domain event for a single dispatch call.
// The actor is never a recipient of their own action.
type NotifyContext struct {
	Event           EventKind         `json:"event"`
	ActorEmployeeID int64             `json:"actor_employee_id"`
	Task            TaskSnapshot      `json:"task"`
	Comment         *Comment          `json:"comment,omitempty"`
	ChangedFields   map[string]string `json:"changed_fields,omitempty"`
}

const EmployeeTypeAgent = "agent"

// Employee is the slice of the org record the dispatcher needs.
type Employee struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	NotifyEnabled bool   `json:"notify_enabled"`
	SessionKey    string `json:"session_key"`
}

type ProjectMember struct {
	EmployeeID int64  `json:"employee_id"`
	Role       string `json:"role"`
}
