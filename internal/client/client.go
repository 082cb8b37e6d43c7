// Package client is the StudyMate API client used by the command-line front
// end. It owns no global state: the session token lives in an explicit
// Session and every protected call reads it from there.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"studymate/internal/models"
)

// ErrSessionExpired is returned when a protected call has no token or the
// server rejects it. The session has already been invalidated.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx response other than a session rejection.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client communicates with the StudyMate API.
type Client struct {
	baseURL    string
	session    *Session
	httpClient *http.Client
}

// NewClient creates a client for the API mounted at baseURL, e.g.
// "http://localhost:8080/api/v1".
func NewClient(baseURL string, session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    session,
		httpClient: httpClient,
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session {
	return c.session
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*models.Student, error) {
	var out struct {
		Student *models.Student `json:"student"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth", url.Values{"action": {"register"}}, in, &out, false); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	return out.Student, nil
}

// Login authenticates and stores the issued token in the session.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Student, error) {
	body := map[string]string{"username": username, "password": password}
	var out struct {
		Token   string          `json:"token"`
		Student *models.Student `json:"student"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth", url.Values{"action": {"login"}}, body, &out, false); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	if out.Token == "" {
		return nil, fmt.Errorf("logging in: response carried no token")
	}
	if err := c.session.Set(out.Token); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return out.Student, nil
}

// Logout discards the session token.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Profile fetches the caller's profile.
func (c *Client) Profile(ctx context.Context) (*models.Student, error) {
	var out models.Student
	if err := c.do(ctx, http.MethodGet, "/auth", url.Values{"action": {"profile"}}, nil, &out, true); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return &out, nil
}

// UpdateProfile replaces the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileInput) (*models.Student, error) {
	var out models.Student
	if err := c.do(ctx, http.MethodPut, "/auth", url.Values{"action": {"profile"}}, in, &out, true); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return &out, nil
}

// SetTheme changes the theme preference only.
func (c *Client) SetTheme(ctx context.Context, theme string) error {
	body := map[string]string{"theme_preference": theme}
	if err := c.do(ctx, http.MethodPut, "/auth", url.Values{"action": {"profile"}}, body, nil, true); err != nil {
		return fmt.Errorf("setting theme: %w", err)
	}
	return nil
}

// ListTasks returns the caller's tasks, optionally limited to one subject.
func (c *Client) ListTasks(ctx context.Context, subject string) ([]models.Task, error) {
	var q url.Values
	if subject != "" {
		q = url.Values{"subject": {subject}}
	}
	var out []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &out, true); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return out, nil
}

// CreateTask adds a task and returns its id.
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (uint, error) {
	var out struct {
		ID uint `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, in, &out, true); err != nil {
		return 0, fmt.Errorf("creating task: %w", err)
	}
	return out.ID, nil
}

// EditTask replaces a task's title, subject and due date.
func (c *Client) EditTask(ctx context.Context, id uint, in TaskEdit) (*models.Task, error) {
	return c.updateTask(ctx, id, in)
}

// SetCompleted marks a task completed or pending.
func (c *Client) SetCompleted(ctx context.Context, id uint, completed bool) (*models.Task, error) {
	return c.updateTask(ctx, id, map[string]bool{"completed": completed})
}

func (c *Client) updateTask(ctx context.Context, id uint, body interface{}) (*models.Task, error) {
	var out struct {
		Task *models.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, "/tasks/"+idPath(id), nil, body, &out, true); err != nil {
		return nil, fmt.Errorf("updating task %d: %w", id, err)
	}
	return out.Task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+idPath(id), nil, nil, nil, true); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return nil
}

// TaskStats fetches the dashboard counters.
func (c *Client) TaskStats(ctx context.Context) (*TaskStats, error) {
	var out TaskStats
	if err := c.do(ctx, http.MethodGet, "/tasks/stats", nil, nil, &out, true); err != nil {
		return nil, fmt.Errorf("fetching task stats: %w", err)
	}
	return &out, nil
}

// Subjects fetches per-subject progress.
func (c *Client) Subjects(ctx context.Context) ([]SubjectSummary, error) {
	var out []SubjectSummary
	if err := c.do(ctx, http.MethodGet, "/tasks/subjects", nil, nil, &out, true); err != nil {
		return nil, fmt.Errorf("fetching subjects: %w", err)
	}
	return out, nil
}

// Deadlines fetches up to limit pending deadlines; 0 means all of them.
func (c *Client) Deadlines(ctx context.Context, limit int) ([]Deadline, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out []Deadline
	if err := c.do(ctx, http.MethodGet, "/tasks/deadlines", q, nil, &out, true); err != nil {
		return nil, fmt.Errorf("fetching deadlines: %w", err)
	}
	return out, nil
}

// ListExpenses fetches the allowance and every expense.
func (c *Client) ListExpenses(ctx context.Context) (*ExpenseList, error) {
	var out ExpenseList
	if err := c.do(ctx, http.MethodGet, "/budget", nil, nil, &out, true); err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	return &out, nil
}

// BudgetSummary totals one month (YYYY-MM); "" means the current month.
func (c *Client) BudgetSummary(ctx context.Context, month string) (*BudgetSummary, error) {
	q := url.Values{"action": {"summary"}}
	if month != "" {
		q.Set("month", month)
	}
	var out BudgetSummary
	if err := c.do(ctx, http.MethodGet, "/budget", q, nil, &out, true); err != nil {
		return nil, fmt.Errorf("fetching budget summary: %w", err)
	}
	return &out, nil
}

// AddExpense records an expense and returns its id.
func (c *Client) AddExpense(ctx context.Context, in ExpenseInput) (uint, error) {
	var out struct {
		ID uint `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/budget", nil, in, &out, true); err != nil {
		return 0, fmt.Errorf("adding expense: %w", err)
	}
	return out.ID, nil
}

// DeleteExpense removes an expense.
func (c *Client) DeleteExpense(ctx context.Context, id uint) error {
	if err := c.do(ctx, http.MethodDelete, "/budget/"+idPath(id), nil, nil, nil, true); err != nil {
		return fmt.Errorf("deleting expense %d: %w", id, err)
	}
	return nil
}

// SetAllowance sets the monthly allowance and returns the stored value.
func (c *Client) SetAllowance(ctx context.Context, amount float64) (float64, error) {
	body := map[string]float64{"allowance": amount}
	var out struct {
		Allowance float64 `json:"allowance"`
	}
	if err := c.do(ctx, http.MethodPut, "/budget", url.Values{"action": {"allowance"}}, body, &out, true); err != nil {
		return 0, fmt.Errorf("setting allowance: %w", err)
	}
	return out.Allowance, nil
}

// Activity fetches one page of the caller's audit trail.
func (c *Client) Activity(ctx context.Context, page, pageSize int) (*ActivityPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	var out ActivityPage
	if err := c.do(ctx, http.MethodGet, "/activity", q, nil, &out, true); err != nil {
		return nil, fmt.Errorf("fetching activity: %w", err)
	}
	return &out, nil
}

// do sends one request. Protected calls carry the bearer token; a missing
// token or a 401 invalidates the session and yields ErrSessionExpired.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, protected bool) error {
	var token string
	if protected {
		var err error
		token, err = c.session.Token()
		if err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
		if token == "" {
			_ = c.session.Invalidate()
			return ErrSessionExpired
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if protected {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if protected && resp.StatusCode == http.StatusUnauthorized {
		_ = c.session.Invalidate()
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

func idPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
