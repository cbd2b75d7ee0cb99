package models

import (
	"strings"
	"time"
)

// Role identifies the kind of actor a session was issued to.
type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleOrganization Role = "ORG"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

// ProjectStatuses lists the selectable project states in display order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectActive, ProjectOnHold, ProjectCompleted}
}

// TaskStatus is the workflow state of a task. The server stores these as
// free-form strings; this client only ever sends one of the three values.
type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"
)

// TaskStatuses lists the selectable task states in display order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskPending, TaskInProgress, TaskDone}
}

// ValidTaskStatus reports whether s is one of the closed set of task states.
func ValidTaskStatus(s string) bool {
	switch TaskStatus(s) {
	case TaskPending, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Organization is a tenant as listed for the super administrator.
type Organization struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ContactEmail string `json:"contact_email"`
	CreatedAt    string `json:"created_at"`
}

// Project is a project together with its embedded tasks, as returned by
// the listProjects read.
type Project struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Status         ProjectStatus `json:"status"`
	TaskCount      int           `json:"taskCount"`
	CompletedTasks int           `json:"completedTasks"`
	Tasks          []Task        `json:"tasks"`
}

// Task is a single task with its embedded comments.
type Task struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	AssigneeEmail string    `json:"assignee_email"`
	DueDate       string    `json:"due_date"`
	CreatedAt     string    `json:"created_at"`
	Comments      []Comment `json:"comments"`
}

// Comment is an append-only note on a task.
type Comment struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	AuthorEmail string `json:"author_email"`
	Timestamp   string `json:"timestamp"`
}

// DateOnly truncates a server timestamp to its date prefix for use in an
// editable date field. The server may return due dates with a time
// component; only the date part is edited and re-sent.
func DateOnly(timestamp string) string {
	if idx := strings.IndexByte(timestamp, 'T'); idx >= 0 {
		return timestamp[:idx]
	}
	return timestamp
}

// DisplayTime formats a server timestamp for display. The raw value is
// shown unchanged when it does not parse; it is never re-sent in the
// display format.
func DisplayTime(timestamp string) string {
	if timestamp == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}
