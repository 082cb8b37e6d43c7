package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "studymate/internal/errors"
	"studymate/internal/models"
	"studymate/internal/services"
)

const defaultDeadlineLimit = 5

// TaskHandler handles task-related requests
type TaskHandler struct {
	tasks services.TaskServicer
	audit services.AuditServicer
	now   func() time.Time
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks services.TaskServicer, audit services.AuditServicer) *TaskHandler {
	return &TaskHandler{tasks: tasks, audit: audit, now: time.Now}
}

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title    string `json:"title" binding:"required,max=255"`
	Subject  string `json:"subject" binding:"required,max=100"`
	DueDate  string `json:"due_date" binding:"required,calendar_date"`
	Priority string `json:"priority" binding:"omitempty,priority"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Sending only completed
// changes the status; sending title, subject and due_date edits the task.
type UpdateTaskRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=255"`
	Subject   *string `json:"subject" binding:"omitempty,max=100"`
	DueDate   *string `json:"due_date"`
	Priority  *string `json:"priority" binding:"omitempty,priority"`
	Status    *string `json:"status" binding:"omitempty,task_status"`
	Completed *bool   `json:"completed"`
}

// TaskResponse wraps a task with an acknowledgement.
type TaskResponse struct {
	ID      uint         `json:"id"`
	Message string       `json:"message"`
	Task    *models.Task `json:"task"`
}

// toTaskUpdate classifies the body into a status-only or a full update.
func (r UpdateTaskRequest) toTaskUpdate() (services.TaskUpdate, error) {
	if r.Title == nil && r.Subject == nil && r.DueDate == nil {
		if r.Completed == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				"request must contain completed, or title, subject and due_date")
		}
		return services.StatusUpdate{Completed: *r.Completed}, nil
	}

	if r.Title == nil || r.Subject == nil || r.DueDate == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title, subject and due_date are required")
	}
	due, err := models.ParseDate(*r.DueDate)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	update := services.FullUpdate{
		Title:     *r.Title,
		Subject:   *r.Subject,
		DueDate:   due,
		Completed: r.Completed,
	}
	if r.Priority != nil {
		p := models.Priority(*r.Priority)
		update.Priority = &p
	}
	if r.Status != nil {
		s := models.TaskStatus(*r.Status)
		update.Status = &s
	}
	return update, nil
}

// ListTasks returns the caller's tasks
// @Summary     List tasks
// @Description Pending tasks first, then by due date
// @Tags        tasks
// @Produce     json
// @Security    BearerAuth
// @Param       subject query string false "Only tasks of this subject"
// @Success     200 {array}  models.Task "Tasks"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tasks, err := h.tasks.ListTasks(studentID, services.TaskFilter{Subject: c.Query("subject")})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// CreateTask handles the creation of a new task
// @Summary     Create a task
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTaskRequest true "Task details"
// @Success     201 {object} TaskResponse "Task created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	due, err := models.ParseDate(req.DueDate)
	if err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	task, err := h.tasks.CreateTask(studentID, services.TaskInput{
		Title:    req.Title,
		Subject:  req.Subject,
		DueDate:  due,
		Priority: models.Priority(req.Priority),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(studentID, services.ActionCreate, "task", task.ID, c.ClientIP(),
		map[string]interface{}{"title": task.Title, "subject": task.Subject, "due_date": task.DueDate.String()})
	c.JSON(http.StatusCreated, TaskResponse{ID: task.ID, Message: "Task created", Task: task})
}

// UpdateTask handles status toggles and full edits
// @Summary     Update a task
// @Description Body with only completed toggles status; title, subject and due_date replace the task fields
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Task ID"
// @Param       request body UpdateTaskRequest true "Update"
// @Success     200 {object} TaskResponse "Task updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Task not found"
// @Router      /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	taskID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	update, err := req.toTaskUpdate()
	if err != nil {
		respondWithError(c, err)
		return
	}

	task, err := h.tasks.UpdateTask(studentID, taskID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(studentID, services.ActionUpdate, "task", task.ID, c.ClientIP(),
		map[string]interface{}{"status": task.Status})
	c.JSON(http.StatusOK, TaskResponse{ID: task.ID, Message: "Task updated", Task: task})
}

// DeleteTask handles the deletion of a task
// @Summary     Delete a task
// @Tags        tasks
// @Security    BearerAuth
// @Param       id path int true "Task ID"
// @Success     204 "Task deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Task not found"
// @Router      /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	taskID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.tasks.DeleteTask(studentID, taskID); err != nil {
		respondWithError(c, err)
		return
	}

	h.audit.Log(studentID, services.ActionDelete, "task", taskID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}

// GetStats returns dashboard counters
// @Summary     Task statistics
// @Tags        tasks
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.TaskStats "Counters"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /tasks/stats [get]
func (h *TaskHandler) GetStats(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.tasks.GetTaskStats(studentID, models.NewDate(h.now()))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetSubjects returns per-subject progress
// @Summary     Subject progress
// @Tags        tasks
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.SubjectSummary "Subjects"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /tasks/subjects [get]
func (h *TaskHandler) GetSubjects(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.tasks.GetSubjectSummary(studentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetDeadlines returns the nearest pending deadlines
// @Summary     Upcoming deadlines
// @Tags        tasks
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Maximum number of deadlines (default 5, 0 for all)"
// @Success     200 {array}  services.Deadline "Deadlines"
// @Failure     400 {object} ErrorResponse "Invalid limit"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /tasks/deadlines [get]
func (h *TaskHandler) GetDeadlines(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	limit := defaultDeadlineLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid limit"))
			return
		}
	}

	deadlines, err := h.tasks.GetUpcomingDeadlines(studentID, models.NewDate(h.now()), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, deadlines)
}
