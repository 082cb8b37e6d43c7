package services

import (
	"strings"
	"testing"
	"time"

	apperrors "studymate/internal/errors"
	"studymate/internal/models"
	"studymate/internal/testutil"
)

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestCreateTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	student := testutil.CreateTestStudent(t, db)

	t.Run("defaults", func(t *testing.T) {
		task, err := svc.CreateTask(student.ID, TaskInput{Title: "Read ch.1", Subject: "  Math ", DueDate: mustDate(t, "2025-06-01")})
		testutil.AssertNoError(t, err)

		if task.ID == 0 {
			t.Fatal("expected non-zero ID")
		}
		if task.Subject != "Math" {
			t.Errorf("subject not trimmed: %q", task.Subject)
		}
		if task.Priority != models.PriorityMedium {
			t.Errorf("expected medium priority, got %s", task.Priority)
		}
		if task.Status != models.TaskStatusPending {
			t.Errorf("expected Pending, got %s", task.Status)
		}
	})

	t.Run("missing_fields", func(t *testing.T) {
		_, err := svc.CreateTask(student.ID, TaskInput{Subject: "Math", DueDate: mustDate(t, "2025-06-01")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateTask(student.ID, TaskInput{Title: "x", Subject: "Math"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("bad_priority", func(t *testing.T) {
		_, err := svc.CreateTask(student.ID, TaskInput{Title: "x", Subject: "Math", DueDate: mustDate(t, "2025-06-01"), Priority: "urgent"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestTaskText_ColumnWidths(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	student := testutil.CreateTestStudent(t, db)
	due := mustDate(t, "2025-06-01")
	existing := testutil.CreateTestTaskWith(t, db, student.ID, "old", "Math", due, models.TaskStatusPending)

	tests := []struct {
		name    string
		title   string
		subject string
		wantErr bool
	}{
		{name: "at_width", title: strings.Repeat("a", 255), subject: strings.Repeat("s", 100)},
		{name: "multibyte_at_width", title: strings.Repeat("é", 255), subject: strings.Repeat("ü", 100)},
		{name: "title_too_long", title: strings.Repeat("a", 256), subject: "Math", wantErr: true},
		{name: "subject_too_long", title: "x", subject: strings.Repeat("s", 101), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(student.ID, TaskInput{Title: tt.title, Subject: tt.subject, DueDate: due})
			if tt.wantErr {
				testutil.AssertIs(t, err, apperrors.ErrInvalidInput)
			} else {
				testutil.AssertNoError(t, err)
			}

			got, err := svc.UpdateTask(student.ID, existing.ID, FullUpdate{Title: tt.title, Subject: tt.subject, DueDate: due})
			if tt.wantErr {
				testutil.AssertIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			testutil.AssertNoError(t, err)
			if got.Title != tt.title {
				t.Errorf("title not stored intact: %d runes", len([]rune(got.Title)))
			}
		})
	}
}

func TestListTasks_Ordering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	student := testutil.CreateTestStudent(t, db)
	other := testutil.CreateTestStudent(t, db)

	doneEarly := testutil.CreateTestTaskWith(t, db, student.ID, "done early", "Math", mustDate(t, "2025-01-01"), models.TaskStatusCompleted)
	late := testutil.CreateTestTaskWith(t, db, student.ID, "late", "Math", mustDate(t, "2025-03-01"), models.TaskStatusPending)
	early := testutil.CreateTestTaskWith(t, db, student.ID, "early", "Physics", mustDate(t, "2025-02-01"), models.TaskStatusPending)
	sameDay := testutil.CreateTestTaskWith(t, db, student.ID, "same day", "Physics", mustDate(t, "2025-02-01"), models.TaskStatusPending)
	testutil.CreateTestTaskWith(t, db, other.ID, "foreign", "Math", mustDate(t, "2024-01-01"), models.TaskStatusPending)

	tasks, err := svc.ListTasks(student.ID, TaskFilter{})
	testutil.AssertNoError(t, err)

	want := []uint{early.ID, sameDay.ID, late.ID, doneEarly.ID}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Errorf("position %d: expected task %d, got %d (%s)", i, id, tasks[i].ID, tasks[i].Title)
		}
	}

	physics, err := svc.ListTasks(student.ID, TaskFilter{Subject: "Physics"})
	testutil.AssertNoError(t, err)
	if len(physics) != 2 {
		t.Errorf("expected 2 physics tasks, got %d", len(physics))
	}

	empty, err := svc.ListTasks(99999, TaskFilter{})
	testutil.AssertNoError(t, err)
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %v", empty)
	}
}

func TestUpdateTask_StatusUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	student := testutil.CreateTestStudent(t, db)
	task := testutil.CreateTestTask(t, db, student.ID)

	t.Run("toggle_twice_is_identity", func(t *testing.T) {
		done, err := svc.UpdateTask(student.ID, task.ID, StatusUpdate{Completed: true})
		testutil.AssertNoError(t, err)
		if done.Status != models.TaskStatusCompleted {
			t.Fatalf("expected Completed, got %s", done.Status)
		}

		back, err := svc.UpdateTask(student.ID, task.ID, StatusUpdate{Completed: false})
		testutil.AssertNoError(t, err)
		if back.Status != task.Status || back.Title != task.Title || back.Subject != task.Subject ||
			back.Priority != task.Priority || back.DueDate.String() != task.DueDate.String() {
			t.Errorf("toggle round trip changed the task: before %+v after %+v", task, back)
		}
	})

	t.Run("repeat_is_noop", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			got, err := svc.UpdateTask(student.ID, task.ID, StatusUpdate{Completed: true})
			testutil.AssertNoError(t, err)
			if got.Status != models.TaskStatusCompleted {
				t.Fatalf("attempt %d: expected Completed, got %s", i+1, got.Status)
			}
		}
	})
}

func TestUpdateTask_FullUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	student := testutil.CreateTestStudent(t, db)

	t.Run("preserves_status_and_priority", func(t *testing.T) {
		task := testutil.CreateTestTaskWith(t, db, student.ID, "old", "Math", mustDate(t, "2025-06-01"), models.TaskStatusCompleted)
		got, err := svc.UpdateTask(student.ID, task.ID, FullUpdate{Title: "new", Subject: "Physics", DueDate: mustDate(t, "2025-07-01")})
		testutil.AssertNoError(t, err)

		if got.Title != "new" || got.Subject != "Physics" || got.DueDate.String() != "2025-07-01" {
			t.Errorf("fields not replaced: %+v", got)
		}
		if got.Status != models.TaskStatusCompleted {
			t.Errorf("status silently reset to %s", got.Status)
		}
		if got.Priority != models.PriorityMedium {
			t.Errorf("priority changed to %s", got.Priority)
		}
	})

	t.Run("explicit_status_wins_over_completed", func(t *testing.T) {
		task := testutil.CreateTestTask(t, db, student.ID)
		status := models.TaskStatusPending
		completed := true
		high := models.PriorityHigh
		got, err := svc.UpdateTask(student.ID, task.ID, FullUpdate{
			Title: "t", Subject: "s", DueDate: task.DueDate,
			Priority: &high, Status: &status, Completed: &completed,
		})
		testutil.AssertNoError(t, err)
		if got.Status != models.TaskStatusPending {
			t.Errorf("expected Pending, got %s", got.Status)
		}
		if got.Priority != models.PriorityHigh {
			t.Errorf("expected high, got %s", got.Priority)
		}
	})

	t.Run("completed_used_without_status", func(t *testing.T) {
		task := testutil.CreateTestTask(t, db, student.ID)
		completed := true
		got, err := svc.UpdateTask(student.ID, task.ID, FullUpdate{Title: "t", Subject: "s", DueDate: task.DueDate, Completed: &completed})
		testutil.AssertNoError(t, err)
		if got.Status != models.TaskStatusCompleted {
			t.Errorf("expected Completed, got %s", got.Status)
		}
	})

	t.Run("empty_title_rejected_without_change", func(t *testing.T) {
		task := testutil.CreateTestTask(t, db, student.ID)
		_, err := svc.UpdateTask(student.ID, task.ID, FullUpdate{Title: " ", Subject: "s", DueDate: task.DueDate})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		var stored models.Task
		db.First(&stored, task.ID)
		if stored.Title != task.Title {
			t.Errorf("rejected update changed title to %q", stored.Title)
		}
	})
}

func TestTask_CrossAccountAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	owner := testutil.CreateTestStudent(t, db)
	intruder := testutil.CreateTestStudent(t, db)
	task := testutil.CreateTestTask(t, db, owner.ID)

	_, err := svc.UpdateTask(intruder.ID, task.ID, StatusUpdate{Completed: true})
	testutil.AssertAppError(t, err, "TASK_NOT_FOUND")

	_, err = svc.UpdateTask(intruder.ID, task.ID, FullUpdate{Title: "pwned", Subject: "x", DueDate: task.DueDate})
	testutil.AssertAppError(t, err, "TASK_NOT_FOUND")

	testutil.AssertAppError(t, svc.DeleteTask(intruder.ID, task.ID), "TASK_NOT_FOUND")

	var stored models.Task
	if err := db.First(&stored, task.ID).Error; err != nil {
		t.Fatalf("task should still exist: %v", err)
	}
	if stored.Title != task.Title || stored.Status != task.Status {
		t.Errorf("foreign request changed the task: %+v", stored)
	}
}

func TestDeleteTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	student := testutil.CreateTestStudent(t, db)
	task := testutil.CreateTestTask(t, db, student.ID)

	testutil.AssertNoError(t, svc.DeleteTask(student.ID, task.ID))
	testutil.AssertAppError(t, svc.DeleteTask(student.ID, task.ID), "TASK_NOT_FOUND")
}

func TestGetTaskStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	student := testutil.CreateTestStudent(t, db)
	today := mustDate(t, "2025-06-10")

	testutil.CreateTestTaskWith(t, db, student.ID, "overdue", "Math", mustDate(t, "2025-06-01"), models.TaskStatusPending)
	testutil.CreateTestTaskWith(t, db, student.ID, "due today", "Math", today, models.TaskStatusPending)
	testutil.CreateTestTaskWith(t, db, student.ID, "done late", "Math", mustDate(t, "2025-05-01"), models.TaskStatusCompleted)

	stats, err := svc.GetTaskStats(student.ID, today)
	testutil.AssertNoError(t, err)

	want := TaskStats{Total: 3, Completed: 1, Pending: 2, Overdue: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}

	empty, err := svc.GetTaskStats(99999, today)
	testutil.AssertNoError(t, err)
	if *empty != (TaskStats{}) {
		t.Errorf("expected zero stats, got %+v", *empty)
	}
}

func TestGetSubjectSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	student := testutil.CreateTestStudent(t, db)
	due := mustDate(t, "2025-06-01")

	testutil.CreateTestTaskWith(t, db, student.ID, "a", "Physics", due, models.TaskStatusCompleted)
	testutil.CreateTestTaskWith(t, db, student.ID, "b", "Math", due, models.TaskStatusCompleted)
	testutil.CreateTestTaskWith(t, db, student.ID, "c", "Math", due, models.TaskStatusPending)
	testutil.CreateTestTaskWith(t, db, student.ID, "d", "Math", due, models.TaskStatusPending)

	summary, err := svc.GetSubjectSummary(student.ID)
	testutil.AssertNoError(t, err)

	want := []SubjectSummary{
		{Subject: "Math", Total: 3, Completed: 1, Percent: 33},
		{Subject: "Physics", Total: 1, Completed: 1, Percent: 100},
	}
	if len(summary) != len(want) {
		t.Fatalf("expected %d subjects, got %+v", len(want), summary)
	}
	for i := range want {
		if summary[i] != want[i] {
			t.Errorf("subject %d = %+v, want %+v", i, summary[i], want[i])
		}
	}
}

func TestGetUpcomingDeadlines(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	student := testutil.CreateTestStudent(t, db)
	today := models.NewDate(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))

	testutil.CreateTestTaskWith(t, db, student.ID, "later", "Math", mustDate(t, "2025-06-20"), models.TaskStatusPending)
	testutil.CreateTestTaskWith(t, db, student.ID, "overdue", "Math", mustDate(t, "2025-06-08"), models.TaskStatusPending)
	testutil.CreateTestTaskWith(t, db, student.ID, "soon", "Math", mustDate(t, "2025-06-12"), models.TaskStatusPending)
	testutil.CreateTestTaskWith(t, db, student.ID, "done", "Math", mustDate(t, "2025-06-11"), models.TaskStatusCompleted)

	deadlines, err := svc.GetUpcomingDeadlines(student.ID, today, 2)
	testutil.AssertNoError(t, err)

	if len(deadlines) != 2 {
		t.Fatalf("expected 2 deadlines, got %d", len(deadlines))
	}
	if deadlines[0].Task.Title != "overdue" || deadlines[0].DaysLeft != -2 {
		t.Errorf("first deadline = %s (%d days)", deadlines[0].Task.Title, deadlines[0].DaysLeft)
	}
	if deadlines[1].Task.Title != "soon" || deadlines[1].DaysLeft != 2 {
		t.Errorf("second deadline = %s (%d days)", deadlines[1].Task.Title, deadlines[1].DaysLeft)
	}

	all, err := svc.GetUpcomingDeadlines(student.ID, today, 0)
	testutil.AssertNoError(t, err)
	if len(all) != 3 {
		t.Errorf("expected 3 pending deadlines, got %d", len(all))
	}
}
