package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "studymate/internal/errors"
	"studymate/internal/models"
	"studymate/internal/services"
)

// BudgetHandler serves expenses and the monthly allowance under /budget.
type BudgetHandler struct {
	expenses services.ExpenseServicer
	audit    services.AuditServicer
	now      func() time.Time
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(expenses services.ExpenseServicer, audit services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{expenses: expenses, audit: audit, now: time.Now}
}

// AddExpenseRequest represents the request payload for recording an expense
type AddExpenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category" binding:"required,max=100"`
	Description string  `json:"description" binding:"required,max=255"`
	Date        string  `json:"date" binding:"required,calendar_date"`
}

// SummaryQuery selects the month of a budget summary.
type SummaryQuery struct {
	Month string `form:"month" binding:"omitempty,month"`
}

// SetAllowanceRequest carries the new monthly allowance.
type SetAllowanceRequest struct {
	Allowance *float64 `json:"allowance" binding:"required"`
}

// ExpenseResponse wraps an expense with an acknowledgement.
type ExpenseResponse struct {
	ID      uint            `json:"id"`
	Message string          `json:"message"`
	Expense *models.Expense `json:"expense"`
}

// AllowanceResponse acknowledges an allowance change.
type AllowanceResponse struct {
	Message   string  `json:"message"`
	Allowance float64 `json:"allowance"`
}

// Get lists expenses, or with action=summary totals one month.
// @Summary     List expenses or summarise a month
// @Tags        budget
// @Produce     json
// @Security    BearerAuth
// @Param       action query string false "summary"
// @Param       month  query string false "YYYY-MM, defaults to the current month"
// @Success     200 {object} services.ExpenseList "Allowance and expenses"
// @Success     200 {object} services.BudgetSummary "Monthly summary (action=summary)"
// @Failure     400 {object} ErrorResponse "Invalid month or unknown action"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budget [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	switch c.Query("action") {
	case "":
		list, err := h.expenses.ListExpenses(studentID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	case "summary":
		var q SummaryQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be YYYY-MM"))
			return
		}
		month := h.now()
		if q.Month != "" {
			// Already checked by the month validator.
			month, _ = time.Parse("2006-01", q.Month)
		}
		summary, err := h.expenses.GetBudgetSummary(studentID, month)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	default:
		respondWithError(c, apperrors.ErrUnknownAction)
	}
}

// AddExpense records an expense
// @Summary     Add an expense
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddExpenseRequest true "Expense"
// @Success     201 {object} ExpenseResponse "Expense added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budget [post]
func (h *BudgetHandler) AddExpense(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	expense, err := h.expenses.AddExpense(studentID, req.Amount, req.Category, req.Description, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(studentID, services.ActionCreate, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount, "category": expense.Category})
	c.JSON(http.StatusCreated, ExpenseResponse{ID: expense.ID, Message: "Expense added", Expense: expense})
}

// DeleteExpense removes an expense
// @Summary     Delete an expense
// @Tags        budget
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     204 "Expense deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /budget/{id} [delete]
func (h *BudgetHandler) DeleteExpense(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenses.DeleteExpense(studentID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(studentID, services.ActionDelete, "expense", expenseID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}

// Put sets the monthly allowance (action=allowance).
// @Summary     Set the monthly allowance
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       action  query string              true "allowance"
// @Param       request body  SetAllowanceRequest true "Allowance"
// @Success     200 {object} AllowanceResponse "Allowance updated"
// @Failure     400 {object} ErrorResponse "Invalid input or unknown action"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budget [put]
func (h *BudgetHandler) Put(c *gin.Context) {
	if c.Query("action") != "allowance" {
		respondWithError(c, apperrors.ErrUnknownAction)
		return
	}

	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetAllowanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	allowance, err := h.expenses.SetAllowance(studentID, *req.Allowance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(studentID, services.ActionUpdate, "allowance", studentID, c.ClientIP(),
		map[string]interface{}{"allowance": allowance})
	c.JSON(http.StatusOK, AllowanceResponse{Message: "Monthly allowance updated", Allowance: allowance})
}
