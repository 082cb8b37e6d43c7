package client

import (
	"context"
	"fmt"
	"net/http"

	"studymate/internal/models"
)

// TaskView renders the authoritative task list.
type TaskView interface {
	ShowTasks(tasks []models.Task)
}

// BudgetView renders the authoritative expense list.
type BudgetView interface {
	ShowBudget(list *ExpenseList)
}

// Syncer performs mutations and re-renders from the server after each one,
// so views never show locally patched state.
type Syncer struct {
	client  *Client
	tasks   TaskView
	budget  BudgetView
	subject string
}

// NewSyncer creates a Syncer. Either view may be nil.
func NewSyncer(client *Client, tasks TaskView, budget BudgetView) *Syncer {
	return &Syncer{client: client, tasks: tasks, budget: budget}
}

// FilterSubject limits task refreshes to one subject; "" shows all.
func (s *Syncer) FilterSubject(subject string) {
	s.subject = subject
}

// RefreshTasks fetches the task list and hands it to the task view.
func (s *Syncer) RefreshTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.client.ListTasks(ctx, s.subject)
	if err != nil {
		return nil, err
	}
	if s.tasks != nil {
		s.tasks.ShowTasks(tasks)
	}
	return tasks, nil
}

// RefreshBudget fetches the expense list and hands it to the budget view.
func (s *Syncer) RefreshBudget(ctx context.Context) (*ExpenseList, error) {
	list, err := s.client.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	if s.budget != nil {
		s.budget.ShowBudget(list)
	}
	return list, nil
}

// CreateTask adds a task, then refreshes the task view.
func (s *Syncer) CreateTask(ctx context.Context, in TaskInput) (uint, error) {
	id, err := s.client.CreateTask(ctx, in)
	if err != nil {
		return 0, err
	}
	_, err = s.RefreshTasks(ctx)
	return id, err
}

// EditTask updates a task, then refreshes the task view.
func (s *Syncer) EditTask(ctx context.Context, id uint, in TaskEdit) error {
	if _, err := s.client.EditTask(ctx, id, in); err != nil {
		return err
	}
	_, err := s.RefreshTasks(ctx)
	return err
}

// ToggleTask flips a task between Pending and Completed. The current state
// is read from the server, not from the last render.
func (s *Syncer) ToggleTask(ctx context.Context, id uint) (bool, error) {
	tasks, err := s.client.ListTasks(ctx, "")
	if err != nil {
		return false, err
	}

	var current *models.Task
	for i := range tasks {
		if tasks[i].ID == id {
			current = &tasks[i]
			break
		}
	}
	if current == nil {
		return false, &APIError{Status: http.StatusNotFound, Code: "TASK_NOT_FOUND", Message: fmt.Sprintf("task %d not found", id)}
	}

	completed := !current.Completed()
	if _, err := s.client.SetCompleted(ctx, id, completed); err != nil {
		return false, err
	}
	_, err = s.RefreshTasks(ctx)
	return completed, err
}

// DeleteTask removes a task, then refreshes the task view.
func (s *Syncer) DeleteTask(ctx context.Context, id uint) error {
	if err := s.client.DeleteTask(ctx, id); err != nil {
		return err
	}
	_, err := s.RefreshTasks(ctx)
	return err
}

// AddExpense records an expense, then refreshes the budget view.
func (s *Syncer) AddExpense(ctx context.Context, in ExpenseInput) (uint, error) {
	id, err := s.client.AddExpense(ctx, in)
	if err != nil {
		return 0, err
	}
	_, err = s.RefreshBudget(ctx)
	return id, err
}

// DeleteExpense removes an expense, then refreshes the budget view.
func (s *Syncer) DeleteExpense(ctx context.Context, id uint) error {
	if err := s.client.DeleteExpense(ctx, id); err != nil {
		return err
	}
	_, err := s.RefreshBudget(ctx)
	return err
}

// SetAllowance changes the allowance, then refreshes the budget view.
func (s *Syncer) SetAllowance(ctx context.Context, amount float64) error {
	if _, err := s.client.SetAllowance(ctx, amount); err != nil {
		return err
	}
	_, err := s.RefreshBudget(ctx)
	return err
}
