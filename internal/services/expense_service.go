package services

import (
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "studymate/internal/errors"
	"studymate/internal/models"
)

// expenseService handles expenses and the monthly allowance.
type expenseService struct {
	db       *gorm.DB
	students StudentServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, students StudentServicer) ExpenseServicer {
	return &expenseService{db: db, students: students}
}

// maxAmount is the first value a NUMERIC(12,2) column cannot hold.
const maxAmount = 1e10

// roundCents rounds a money amount to two decimals.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ListExpenses returns the allowance and all expenses, most recent first.
func (s *expenseService) ListExpenses(studentID uint) (*ExpenseList, error) {
	student, err := s.students.GetProfile(studentID)
	if err != nil {
		return nil, err
	}

	expenses := []models.Expense{}
	if err := s.db.Where("student_id = ?", studentID).
		Order("expense_date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &ExpenseList{Allowance: student.MonthlyAllowance, Expenses: expenses}, nil
}

// AddExpense records a positive amount spent on the given date.
func (s *expenseService) AddExpense(studentID uint, amount float64, category, description string, date models.Date) (*models.Expense, error) {
	amount = roundCents(amount)
	category = strings.TrimSpace(category)
	description = strings.TrimSpace(description)

	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if amount >= maxAmount {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is too large")
	}
	if category == "" || description == "" || date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount, category, description and date are required")
	}

	expense := &models.Expense{
		StudentID:   studentID,
		Amount:      amount,
		Category:    category,
		Description: description,
		ExpenseDate: date,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// DeleteExpense removes an expense the student owns.
func (s *expenseService) DeleteExpense(studentID, expenseID uint) error {
	result := s.db.Where("id = ? AND student_id = ?", expenseID, studentID).Delete(&models.Expense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// SetAllowance replaces the monthly allowance. Zero is accepted and the sign
// is not checked.
func (s *expenseService) SetAllowance(studentID uint, amount float64) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "allowance must be a number")
	}
	if math.Abs(amount) >= maxAmount {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "allowance is too large")
	}
	amount = roundCents(amount)

	student, err := s.students.GetProfile(studentID)
	if err != nil {
		return 0, err
	}
	if err := s.db.Model(student).Update("monthly_allowance", amount).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return amount, nil
}

// GetBudgetSummary totals the expenses dated in month against the allowance.
func (s *expenseService) GetBudgetSummary(studentID uint, month time.Time) (*BudgetSummary, error) {
	student, err := s.students.GetProfile(studentID)
	if err != nil {
		return nil, err
	}

	start := models.NewDate(time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC))
	end := models.NewDate(start.AddDate(0, 1, 0))

	byCategory := []CategoryTotal{}
	err = s.db.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total").
		Where("student_id = ? AND expense_date >= ? AND expense_date < ?", studentID, start, end).
		Group("category").
		Order("total DESC, category ASC").
		Scan(&byCategory).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var spent float64
	for i := range byCategory {
		byCategory[i].Total = roundCents(byCategory[i].Total)
		spent += byCategory[i].Total
	}
	spent = roundCents(spent)

	return &BudgetSummary{
		Month:      start.Format("2006-01"),
		Allowance:  student.MonthlyAllowance,
		Spent:      spent,
		Remaining:  roundCents(student.MonthlyAllowance - spent),
		ByCategory: byCategory,
	}, nil
}
