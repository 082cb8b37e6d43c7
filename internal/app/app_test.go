package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/logger"
	"studymate/internal/ratelimit"
	"studymate/internal/testutil"
	"studymate/internal/token"
	"studymate/internal/validator"
)

const testSecret = "integration-secret"

// testApp holds the full application stack for end-to-end tests.
type testApp struct {
	Router *gin.Engine
	Tokens *token.Service
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func setupApp(t *testing.T, limiter *ratelimit.Limiter) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	tokens := token.NewService(testSecret, time.Hour)
	deps := Deps{DB: db, Tokens: tokens, CORSOrigin: "*"}
	if limiter != nil {
		deps.LoginLimiter = limiter
	}
	return &testApp{Router: NewRouter(deps), Tokens: tokens}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// signUp registers username and logs in, returning the session token and the
// new student's id. The token must resolve to that id.
func (app *testApp) signUp(t *testing.T, username, password string) (string, uint) {
	t.Helper()
	body := fmt.Sprintf(`{"full_name":"Student %s","username":%q,"email":"%s@x.com","password":%q}`,
		username, username, username, password)
	rec := app.request(http.MethodPost, "/api/v1/auth?action=register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[struct {
		Student struct {
			ID uint `json:"id"`
		} `json:"student"`
	}](t, rec)
	require.NotZero(t, registered.Student.ID)

	tok := app.login(t, username, password)
	id, ok := app.Tokens.Validate(tok)
	require.True(t, ok, "login token does not validate")
	require.Equal(t, registered.Student.ID, id, "login token belongs to another student")
	return tok, id
}

func (app *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := app.request(http.MethodPost, "/api/v1/auth?action=login", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[map[string]interface{}](t, rec)
	tok, _ := result["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestTaskLifecycle(t *testing.T) {
	app := setupApp(t, nil)
	tok, _ := app.signUp(t, "alice", "pw123")

	rec := app.request(http.MethodPost, "/api/v1/tasks",
		`{"title":"Read ch.1","subject":"Math","due_date":"2025-06-01"}`, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]interface{}](t, rec)
	id := strconv.Itoa(int(created["id"].(float64)))

	rec = app.request(http.MethodGet, "/api/v1/tasks", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]map[string]interface{}](t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Pending", tasks[0]["status"])
	assert.Equal(t, "medium", tasks[0]["priority"])
	assert.Equal(t, false, tasks[0]["completed"])

	rec = app.request(http.MethodPut, "/api/v1/tasks/"+id, `{"completed":true}`, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.request(http.MethodGet, "/api/v1/tasks", "", tok)
	tasks = decode[[]map[string]interface{}](t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Completed", tasks[0]["status"])
	assert.Equal(t, "Read ch.1", tasks[0]["title"], "toggle must not touch other fields")

	rec = app.request(http.MethodPut, "/api/v1/tasks/"+id, `{"completed":false}`, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.request(http.MethodGet, "/api/v1/tasks", "", tok)
	tasks = decode[[]map[string]interface{}](t, rec)
	assert.Equal(t, "Pending", tasks[0]["status"])

	rec = app.request(http.MethodDelete, "/api/v1/tasks/"+id, "", tok)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.request(http.MethodGet, "/api/v1/tasks", "", tok)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestTaskOrdering(t *testing.T) {
	app := setupApp(t, nil)
	tok, _ := app.signUp(t, "orderly", "pw123")

	for _, body := range []string{
		`{"title":"late","subject":"Math","due_date":"2025-09-01"}`,
		`{"title":"done","subject":"Math","due_date":"2025-01-01"}`,
		`{"title":"soon","subject":"Art","due_date":"2025-03-01"}`,
	} {
		rec := app.request(http.MethodPost, "/api/v1/tasks", body, tok)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := app.request(http.MethodGet, "/api/v1/tasks", "", tok)
	tasks := decode[[]map[string]interface{}](t, rec)
	for _, task := range tasks {
		if task["title"] == "done" {
			id := strconv.Itoa(int(task["id"].(float64)))
			rec = app.request(http.MethodPut, "/api/v1/tasks/"+id, `{"completed":true}`, tok)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	}

	rec = app.request(http.MethodGet, "/api/v1/tasks", "", tok)
	tasks = decode[[]map[string]interface{}](t, rec)
	var titles []string
	for _, task := range tasks {
		titles = append(titles, task["title"].(string))
	}
	assert.Equal(t, []string{"soon", "late", "done"}, titles)

	rec = app.request(http.MethodGet, "/api/v1/tasks?subject=Art", "", tok)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 1)
}

func TestExpenseOwnership(t *testing.T) {
	app := setupApp(t, nil)
	tokA, idA := app.signUp(t, "owner", "pw123")
	tokB, idB := app.signUp(t, "intruder", "pw123")
	require.NotEqual(t, idA, idB)

	rec := app.request(http.MethodPost, "/api/v1/budget",
		`{"amount":50,"category":"Food","description":"Groceries","date":"2025-06-02"}`, tokA)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := strconv.Itoa(int(decode[map[string]interface{}](t, rec)["id"].(float64)))

	rec = app.request(http.MethodDelete, "/api/v1/budget/"+id, "", tokB)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.request(http.MethodGet, "/api/v1/budget", "", tokA)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Expenses []map[string]interface{} `json:"expenses"`
	}](t, rec)
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, 50.0, list.Expenses[0]["amount"])

	rec = app.request(http.MethodGet, "/api/v1/budget", "", tokB)
	list = decode[struct {
		Expenses []map[string]interface{} `json:"expenses"`
	}](t, rec)
	assert.Empty(t, list.Expenses)
}

func TestBudgetSummaryAndAllowance(t *testing.T) {
	app := setupApp(t, nil)
	tok, _ := app.signUp(t, "saver", "pw123")

	rec := app.request(http.MethodPut, "/api/v1/budget?action=allowance", `{"allowance":300}`, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, body := range []string{
		`{"amount":12.346,"category":"Food","description":"Lunch","date":"2025-06-01"}`,
		`{"amount":40,"category":"Books","description":"Atlas","date":"2025-06-15"}`,
		`{"amount":99,"category":"Food","description":"May","date":"2025-05-31"}`,
	} {
		rec = app.request(http.MethodPost, "/api/v1/budget", body, tok)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = app.request(http.MethodGet, "/api/v1/budget?action=summary&month=2025-06", "", tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[map[string]interface{}](t, rec)
	assert.Equal(t, 300.0, summary["allowance"])
	assert.InDelta(t, 52.35, summary["spent"].(float64), 0.001)
	assert.InDelta(t, 247.65, summary["remaining"].(float64), 0.001)

	for _, body := range []string{
		`{"amount":0,"category":"Food","description":"Nothing","date":"2025-06-01"}`,
		`{"amount":1e15,"category":"Rent","description":"Castle","date":"2025-06-01"}`,
		`{"amount":5,"category":"Food","description":"Snack","date":"2025-06-01Tgarbage"}`,
	} {
		rec = app.request(http.MethodPost, "/api/v1/budget", body, tok)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec = app.request(http.MethodPut, "/api/v1/budget?action=allowance", `{"allowance":-1e10}`, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileAndActivity(t *testing.T) {
	app := setupApp(t, nil)
	tok, _ := app.signUp(t, "profiled", "pw123")

	rec := app.request(http.MethodPut, "/api/v1/auth?action=profile", `{"theme_preference":"dark"}`, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.request(http.MethodGet, "/api/v1/auth?action=profile", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "dark", profile["theme_preference"])
	assert.NotContains(t, profile, "password_hash")

	rec = app.request(http.MethodGet, "/api/v1/activity", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[map[string]interface{}](t, rec)
	assert.Equal(t, 2.0, page["total_items"], "registration and theme change are audited")
}

func TestAuthRejections(t *testing.T) {
	app := setupApp(t, nil)
	_, studentID := app.signUp(t, "guarded", "pw123")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &token.Claims{
		StudentID: studentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "studymate-api",
			Subject:   strconv.FormatUint(uint64(studentID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	valid, _, err := app.Tokens.Issue(studentID)
	require.NoError(t, err)
	tampered := valid[:len(valid)-2] + "xx"

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", valid},
		{"empty token", "Bearer "},
		{"expired", "Bearer " + expiredToken},
		{"tampered", "Bearer " + tampered},
		{"garbage", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	rec := app.request(http.MethodPost, "/api/v1/auth?action=login", `{"username":"guarded","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.request(http.MethodPost, "/api/v1/auth?action=register",
		`{"full_name":"Dup","username":"guarded","email":"other@x.com","password":"pw123"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	app := setupApp(t, ratelimit.New(rdb, "studymate", 0.001, 2))

	body := `{"username":"nobody","password":"pw123"}`
	for i := 0; i < 2; i++ {
		rec := app.request(http.MethodPost, "/api/v1/auth?action=login", body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	rec := app.request(http.MethodPost, "/api/v1/auth?action=login", body, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = app.request(http.MethodPost, "/api/v1/auth?action=register",
		`{"full_name":"Late","username":"latecomer","email":"late@x.com","password":"pw123"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code, "registration is not throttled")
}

func TestHealthAndMetrics(t *testing.T) {
	app := setupApp(t, nil)

	rec := app.request(http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.request(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "studymate_http_requests_total")
}
