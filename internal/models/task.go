package models

import "encoding/json"

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// StatusFromCompleted maps the client's completed flag to a status.
func StatusFromCompleted(completed bool) TaskStatus {
	if completed {
		return TaskStatusCompleted
	}
	return TaskStatusPending
}

// Task is a dated piece of coursework owned by one student.
type Task struct {
	Base
	StudentID uint       `gorm:"not null;index" json:"-"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Subject   string     `gorm:"size:100;not null;index" json:"subject"`
	DueDate   Date       `gorm:"not null" json:"due_date"`
	Priority  Priority   `gorm:"size:10;not null;default:medium" json:"priority"`
	Status    TaskStatus `gorm:"size:10;not null;default:Pending" json:"status"`
}

// Completed reports whether the task is done.
func (t *Task) Completed() bool {
	return t.Status == TaskStatusCompleted
}

// MarshalJSON adds the derived completed flag the clients render from.
func (t Task) MarshalJSON() ([]byte, error) {
	type task Task
	return json.Marshal(struct {
		task
		Completed bool `json:"completed"`
	}{task: task(t), Completed: t.Completed()})
}
