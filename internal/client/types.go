package client

import "studymate/internal/models"

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput replaces the profile. Bio and ProfilePicture are cleared when empty.
type ProfileInput struct {
	FullName       string  `json:"full_name"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Bio            string  `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}

// TaskInput creates a task. DueDate is YYYY-MM-DD; an empty Priority means medium.
type TaskInput struct {
	Title    string `json:"title"`
	Subject  string `json:"subject"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority,omitempty"`
}

// TaskEdit is a full task update. Empty Priority and Status keep the stored values.
type TaskEdit struct {
	Title    string `json:"title"`
	Subject  string `json:"subject"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ExpenseInput records an expense. Date is YYYY-MM-DD.
type ExpenseInput struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// TaskStats are the dashboard counters.
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

// Deadline is a pending task and the days left until it is due.
type Deadline struct {
	Task     models.Task `json:"task"`
	DaysLeft int         `json:"days_left"`
}

// ExpenseList is the allowance together with every expense, newest first.
type ExpenseList struct {
	Allowance float64          `json:"allowance"`
	Expenses  []models.Expense `json:"expenses"`
}

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// BudgetSummary compares one month's spending with the allowance.
type BudgetSummary struct {
	Month      string          `json:"month"`
	Allowance  float64         `json:"allowance"`
	Spent      float64         `json:"spent"`
	Remaining  float64         `json:"remaining"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// ActivityPage is one page of the audit trail.
type ActivityPage struct {
	Data       []models.AuditLog `json:"data"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalItems int64             `json:"total_items"`
	TotalPages int               `json:"total_pages"`
}
