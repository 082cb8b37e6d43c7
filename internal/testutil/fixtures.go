package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"studymate/internal/models"
)

// TestPassword is the plaintext password of every fixture student.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestStudent creates a student with a hashed password and unique
// username and email.
func CreateTestStudent(t *testing.T, db *gorm.DB) *models.Student {
	t.Helper()
	return CreateTestStudentWithUsername(t, db, fmt.Sprintf("student%d", nextID()))
}

// CreateTestStudentWithUsername creates a student with the given username.
func CreateTestStudentWithUsername(t *testing.T, db *gorm.DB, username string) *models.Student {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	student := &models.Student{
		Username:        username,
		Email:           username + "@test.com",
		PasswordHash:    string(hash),
		FullName:        "Test " + username,
		ThemePreference: models.ThemeLight,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("failed to create test student: %v", err)
	}
	return student
}

// CreateTestTask creates a pending medium-priority task due in a week.
func CreateTestTask(t *testing.T, db *gorm.DB, studentID uint) *models.Task {
	t.Helper()
	due := models.NewDate(time.Now().AddDate(0, 0, 7))
	return CreateTestTaskWith(t, db, studentID, fmt.Sprintf("Task %d", nextID()), "Math", due, models.TaskStatusPending)
}

// CreateTestTaskWith creates a task with explicit fields.
func CreateTestTaskWith(t *testing.T, db *gorm.DB, studentID uint, title, subject string, due models.Date, status models.TaskStatus) *models.Task {
	t.Helper()

	task := &models.Task{
		StudentID: studentID,
		Title:     title,
		Subject:   subject,
		DueDate:   due,
		Priority:  models.PriorityMedium,
		Status:    status,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateTestExpense creates an expense dated today.
func CreateTestExpense(t *testing.T, db *gorm.DB, studentID uint, amount float64) *models.Expense {
	t.Helper()
	return CreateTestExpenseWith(t, db, studentID, amount, "Food", models.NewDate(time.Now()))
}

// CreateTestExpenseWith creates an expense with explicit category and date.
func CreateTestExpenseWith(t *testing.T, db *gorm.DB, studentID uint, amount float64, category string, date models.Date) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		StudentID:   studentID,
		Amount:      amount,
		Category:    category,
		Description: fmt.Sprintf("Expense %d", nextID()),
		ExpenseDate: date,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// SetTestAllowance stores a monthly allowance on the student.
func SetTestAllowance(t *testing.T, db *gorm.DB, studentID uint, amount float64) {
	t.Helper()
	if err := db.Model(&models.Student{}).Where("id = ?", studentID).
		Update("monthly_allowance", amount).Error; err != nil {
		t.Fatalf("failed to set test allowance: %v", err)
	}
}
