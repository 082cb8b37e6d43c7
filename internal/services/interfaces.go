package services

import (
	"time"

	"studymate/internal/models"
	"studymate/internal/pagination"
)

// ProfileUpdate carries the fields of a full profile update. Bio and
// ProfilePicture are replaced as given; empty values clear them.
type ProfileUpdate struct {
	FullName       string
	Username       string
	Email          string
	Bio            string
	ProfilePicture *string
}

// StudentServicer defines the contract for account and profile logic.
type StudentServicer interface {
	Register(fullName, username, email, password string) (*models.Student, error)
	Authenticate(username, password string) (*models.Student, error)
	GetProfile(studentID uint) (*models.Student, error)
	UpdateProfile(studentID uint, update ProfileUpdate) (*models.Student, error)
	UpdateTheme(studentID uint, theme models.Theme) error
}

// TaskFilter holds optional filter parameters for listing tasks.
type TaskFilter struct {
	Subject string
}

// TaskInput holds the fields of a new task. An empty Priority means medium.
type TaskInput struct {
	Title    string
	Subject  string
	DueDate  models.Date
	Priority models.Priority
}

// TaskUpdate is either a StatusUpdate or a FullUpdate.
type TaskUpdate interface {
	isTaskUpdate()
}

// StatusUpdate marks a task completed or pending and touches nothing else.
type StatusUpdate struct {
	Completed bool
}

// FullUpdate replaces a task's title, subject and due date. Priority is kept
// when nil. Status comes from Status, else Completed, else stays as stored.
type FullUpdate struct {
	Title     string
	Subject   string
	DueDate   models.Date
	Priority  *models.Priority
	Status    *models.TaskStatus
	Completed *bool
}

func (StatusUpdate) isTaskUpdate() {}
func (FullUpdate) isTaskUpdate()   {}

// TaskStats summarises a student's tasks for the dashboard.
type TaskStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
	Overdue   int64 `json:"overdue"`
}

// SubjectSummary is the completion progress of one subject.
type SubjectSummary struct {
	Subject   string `json:"subject"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Percent   int    `json:"percent"`
}

// Deadline is a pending task with the days remaining until it is due.
type Deadline struct {
	Task     models.Task `json:"task"`
	DaysLeft int         `json:"days_left"`
}

// TaskServicer defines the contract for task-related business logic.
type TaskServicer interface {
	ListTasks(studentID uint, filter TaskFilter) ([]models.Task, error)
	CreateTask(studentID uint, input TaskInput) (*models.Task, error)
	UpdateTask(studentID, taskID uint, update TaskUpdate) (*models.Task, error)
	DeleteTask(studentID, taskID uint) error
	GetTaskStats(studentID uint, today models.Date) (*TaskStats, error)
	GetSubjectSummary(studentID uint) ([]SubjectSummary, error)
	GetUpcomingDeadlines(studentID uint, today models.Date, limit int) ([]Deadline, error)
}

// ExpenseList is the budget page payload: the allowance and every expense.
type ExpenseList struct {
	Allowance float64          `json:"allowance"`
	Expenses  []models.Expense `json:"expenses"`
}

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// BudgetSummary compares a month's spending with the allowance.
type BudgetSummary struct {
	Month      string          `json:"month"`
	Allowance  float64         `json:"allowance"`
	Spent      float64         `json:"spent"`
	Remaining  float64         `json:"remaining"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// ExpenseServicer defines the contract for expense and allowance logic.
type ExpenseServicer interface {
	ListExpenses(studentID uint) (*ExpenseList, error)
	AddExpense(studentID uint, amount float64, category, description string, date models.Date) (*models.Expense, error)
	DeleteExpense(studentID, expenseID uint) error
	SetAllowance(studentID uint, amount float64) (float64, error)
	GetBudgetSummary(studentID uint, month time.Time) (*BudgetSummary, error)
}

// AuditServicer defines the contract for audit logging and the activity feed.
type AuditServicer interface {
	Log(studentID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
	ListActivity(studentID uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
