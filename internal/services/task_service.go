package services

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "studymate/internal/errors"
	"studymate/internal/models"
)

// Pending tasks sort before completed ones, then by due date.
const taskOrder = "CASE WHEN status = 'Completed' THEN 1 ELSE 0 END, due_date ASC, id ASC"

// Column widths of tasks.title and tasks.subject.
const (
	maxTitleLen   = 255
	maxSubjectLen = 100
)

func checkTaskText(title, subject string) error {
	if title == "" || subject == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "title, subject and due_date are required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "title must be at most 255 characters")
	}
	if utf8.RuneCountInString(subject) > maxSubjectLen {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "subject must be at most 100 characters")
	}
	return nil
}

// taskService handles task-related business logic.
type taskService struct {
	db *gorm.DB
}

// NewTaskService creates a new TaskServicer.
func NewTaskService(db *gorm.DB) TaskServicer {
	return &taskService{db: db}
}

// ListTasks returns the student's tasks, optionally limited to one subject.
func (s *taskService) ListTasks(studentID uint, filter TaskFilter) ([]models.Task, error) {
	query := s.db.Where("student_id = ?", studentID)
	if subject := strings.TrimSpace(filter.Subject); subject != "" {
		query = query.Where("subject = ?", subject)
	}

	tasks := []models.Task{}
	if err := query.Order(taskOrder).Find(&tasks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tasks, nil
}

// CreateTask adds a pending task.
func (s *taskService) CreateTask(studentID uint, input TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	subject := strings.TrimSpace(input.Subject)
	if err := checkTaskText(title, subject); err != nil {
		return nil, err
	}
	if input.DueDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title, subject and due_date are required")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "priority must be low, medium or high")
	}

	task := &models.Task{
		StudentID: studentID,
		Title:     title,
		Subject:   subject,
		DueDate:   input.DueDate,
		Priority:  priority,
		Status:    models.TaskStatusPending,
	}
	if err := s.db.Create(task).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return task, nil
}

// UpdateTask applies a status-only or full update to a task the student
// owns. Validation and the ownership lookup both happen before any write.
func (s *taskService) UpdateTask(studentID, taskID uint, update TaskUpdate) (*models.Task, error) {
	var changes map[string]interface{}

	switch u := update.(type) {
	case StatusUpdate:
		changes = map[string]interface{}{"status": models.StatusFromCompleted(u.Completed)}
	case FullUpdate:
		var err error
		if changes, err = fullUpdateChanges(u); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unrecognised task update")
	}

	task, err := s.getOwnedTask(studentID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(task).Updates(changes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.getOwnedTask(studentID, taskID)
}

func fullUpdateChanges(u FullUpdate) (map[string]interface{}, error) {
	title := strings.TrimSpace(u.Title)
	subject := strings.TrimSpace(u.Subject)
	if err := checkTaskText(title, subject); err != nil {
		return nil, err
	}
	if u.DueDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title, subject and due_date are required")
	}

	changes := map[string]interface{}{
		"title":    title,
		"subject":  subject,
		"due_date": u.DueDate,
	}

	if u.Priority != nil {
		if !u.Priority.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "priority must be low, medium or high")
		}
		changes["priority"] = *u.Priority
	}

	switch {
	case u.Status != nil:
		if !u.Status.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be Pending or Completed")
		}
		changes["status"] = *u.Status
	case u.Completed != nil:
		changes["status"] = models.StatusFromCompleted(*u.Completed)
	}

	return changes, nil
}

// DeleteTask removes a task the student owns.
func (s *taskService) DeleteTask(studentID, taskID uint) error {
	result := s.db.Where("id = ? AND student_id = ?", taskID, studentID).Delete(&models.Task{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// GetTaskStats counts the student's tasks. Overdue tasks are pending tasks
// due before today.
func (s *taskService) GetTaskStats(studentID uint, today models.Date) (*TaskStats, error) {
	var stats TaskStats
	err := s.db.Model(&models.Task{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN status = ? AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue`,
			models.TaskStatusCompleted, models.TaskStatusPending, today).
		Where("student_id = ?", studentID).
		Scan(&stats).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats.Pending = stats.Total - stats.Completed
	return &stats, nil
}

// GetSubjectSummary reports per-subject completion, sorted by subject.
func (s *taskService) GetSubjectSummary(studentID uint) ([]SubjectSummary, error) {
	summaries := []SubjectSummary{}
	err := s.db.Model(&models.Task{}).
		Select(`subject, COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed`,
			models.TaskStatusCompleted).
		Where("student_id = ?", studentID).
		Group("subject").
		Order("subject ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range summaries {
		if summaries[i].Total > 0 {
			summaries[i].Percent = int(math.Round(float64(summaries[i].Completed) * 100 / float64(summaries[i].Total)))
		}
	}
	return summaries, nil
}

// GetUpcomingDeadlines lists pending tasks by due date, overdue ones first.
// A non-positive limit returns all of them.
func (s *taskService) GetUpcomingDeadlines(studentID uint, today models.Date, limit int) ([]Deadline, error) {
	query := s.db.Where("student_id = ? AND status = ?", studentID, models.TaskStatusPending).
		Order("due_date ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	deadlines := make([]Deadline, 0, len(tasks))
	for _, t := range tasks {
		deadlines = append(deadlines, Deadline{Task: t, DaysLeft: t.DueDate.DaysUntil(today)})
	}
	return deadlines, nil
}

// getOwnedTask loads a task scoped to its owner; anything else is not found.
func (s *taskService) getOwnedTask(studentID, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Where("id = ? AND student_id = ?", taskID, studentID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &task, nil
}
