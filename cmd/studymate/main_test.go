package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/app"
	"studymate/internal/client"
	"studymate/internal/logger"
	"studymate/internal/testutil"
	"studymate/internal/token"
	"studymate/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func newTestCLI(t *testing.T) (*cli, *bytes.Buffer, *int) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	srv := httptest.NewServer(app.NewRouter(app.Deps{
		DB:     db,
		Tokens: token.NewService("cli-secret", time.Hour),
	}))
	t.Cleanup(srv.Close)

	lost := 0
	session := client.NewSession(&client.MemoryStore{}, func() { lost++ })
	out := &bytes.Buffer{}
	c := newCLI(client.NewClient(srv.URL+"/api/v1", session, srv.Client()), out,
		func(string) (string, error) { return "pw123", nil })
	c.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	return c, out, &lost
}

func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	buf := c.out.(*bytes.Buffer)
	buf.Reset()
	require.NoError(t, c.run(context.Background(), args), "studymate %s", strings.Join(args, " "))
	return buf.String()
}

func TestCLI_TaskFlow(t *testing.T) {
	c, _, _ := newTestCLI(t)

	c.mustRun(t, "register", "-name", "Alice A", "-username", "alice", "-email", "a@x.com")
	assert.Contains(t, c.mustRun(t, "login", "alice"), "Welcome back, Alice A")

	out := c.mustRun(t, "add", "-subject", "Math", "-due", "2025-06-01", "Read", "ch.1")
	assert.Contains(t, out, "Read ch.1")
	assert.Contains(t, out, "[ ]")

	out = c.mustRun(t, "toggle", "1")
	assert.Contains(t, out, "[x]")

	out = c.mustRun(t, "edit", "-title", "Read ch.2", "1")
	assert.Contains(t, out, "Read ch.2")
	assert.Contains(t, out, "[x]", "editing keeps the status")

	out = c.mustRun(t, "tasks", "-stats")
	assert.Contains(t, out, "1 tasks: 1 completed, 0 pending")

	out = c.mustRun(t, "rm", "1")
	assert.Contains(t, out, "No tasks.")
}

func TestCLI_BudgetFlow(t *testing.T) {
	c, _, _ := newTestCLI(t)
	c.mustRun(t, "register", "-name", "Bob B", "-username", "bob", "-email", "b@x.com")
	c.mustRun(t, "login", "bob")

	out := c.mustRun(t, "allowance", "200")
	assert.Contains(t, out, "Monthly allowance: 200.00")

	out = c.mustRun(t, "spend", "-amount", "12.5", "-category", "Food", "Lunch")
	assert.Contains(t, out, "2025-06-10")
	assert.Contains(t, out, "12.50")

	out = c.mustRun(t, "budget", "-month", "2025-06")
	assert.Contains(t, out, "2025-06: spent 12.50 of 200.00, 187.50 left")

	out = c.mustRun(t, "unspend", "1")
	assert.Contains(t, out, "No expenses.")
}

func TestCLI_RequiresLogin(t *testing.T) {
	c, _, lost := newTestCLI(t)

	err := c.run(context.Background(), []string{"tasks"})
	assert.ErrorIs(t, err, client.ErrSessionExpired)
	assert.Zero(t, *lost, "nothing was lost when no session existed")

	c.mustRun(t, "register", "-name", "Carol C", "-username", "carol", "-email", "c@x.com")
	c.mustRun(t, "login", "carol")
	c.mustRun(t, "logout")

	err = c.run(context.Background(), []string{"budget"})
	assert.ErrorIs(t, err, client.ErrSessionExpired)
}

func TestCLI_UsageErrors(t *testing.T) {
	c, _, _ := newTestCLI(t)

	for _, args := range [][]string{
		{"bogus"},
		{"login"},
		{"toggle", "abc"},
		{"allowance", "lots"},
		{"add", "no subject"},
	} {
		assert.Error(t, c.run(context.Background(), args), "args %v", args)
	}
}
