package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"studymate/internal/client"
	"studymate/internal/models"
)

// tableView renders synced lists as aligned columns.
type tableView struct {
	out io.Writer
}

func (v *tableView) ShowTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(v.out, "No tasks.")
		return
	}
	w := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tDUE\tPRIORITY\tSUBJECT\tTITLE")
	for i := range tasks {
		t := &tasks[i]
		done := " "
		if t.Completed() {
			done = "x"
		}
		fmt.Fprintf(w, "%d\t[%s]\t%s\t%s\t%s\t%s\n", t.ID, done, t.DueDate, t.Priority, t.Subject, t.Title)
	}
	_ = w.Flush()
}

func (v *tableView) ShowBudget(list *client.ExpenseList) {
	fmt.Fprintf(v.out, "Monthly allowance: %.2f\n", list.Allowance)
	if len(list.Expenses) == 0 {
		fmt.Fprintln(v.out, "No expenses.")
		return
	}
	w := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, e := range list.Expenses {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\n", e.ID, e.ExpenseDate, e.Amount, e.Category, e.Description)
	}
	_ = w.Flush()
}

func printProfile(out io.Writer, s *models.Student) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", s.FullName)
	fmt.Fprintf(w, "Username:\t%s\n", s.Username)
	fmt.Fprintf(w, "Email:\t%s\n", s.Email)
	if s.Bio != "" {
		fmt.Fprintf(w, "Bio:\t%s\n", s.Bio)
	}
	if s.ProfilePicture != nil {
		fmt.Fprintf(w, "Picture:\t%s\n", *s.ProfilePicture)
	}
	fmt.Fprintf(w, "Theme:\t%s\n", s.ThemePreference)
	fmt.Fprintf(w, "Allowance:\t%.2f\n", s.MonthlyAllowance)
	_ = w.Flush()
}

func printDashboard(out io.Writer, stats *client.TaskStats, subjects []client.SubjectSummary, deadlines []client.Deadline) {
	fmt.Fprintf(out, "%d tasks: %d completed, %d pending, %d overdue\n",
		stats.Total, stats.Completed, stats.Pending, stats.Overdue)

	if len(subjects) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SUBJECT\tDONE\tPROGRESS")
		for _, s := range subjects {
			fmt.Fprintf(w, "%s\t%d/%d\t%d%%\n", s.Subject, s.Completed, s.Total, s.Percent)
		}
		_ = w.Flush()
	}

	if len(deadlines) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DUE\tIN\tTITLE")
		for _, d := range deadlines {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Task.DueDate, daysLabel(d.DaysLeft), d.Task.Title)
		}
		_ = w.Flush()
	}
}

func daysLabel(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("%dd late", -days)
	case days == 0:
		return "today"
	case days == 1:
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func printSummary(out io.Writer, s *client.BudgetSummary) {
	fmt.Fprintf(out, "%s: spent %.2f of %.2f, %.2f left\n", s.Month, s.Spent, s.Allowance, s.Remaining)
	if len(s.ByCategory) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range s.ByCategory {
		fmt.Fprintf(w, "  %s\t%.2f\n", c.Category, c.Total)
	}
	_ = w.Flush()
}

func printActivity(out io.Writer, page *client.ActivityPage) {
	if len(page.Data) == 0 {
		fmt.Fprintln(out, "No activity.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTION\tRESOURCE")
	for _, e := range page.Data {
		fmt.Fprintf(w, "%s\t%s\t%s %d\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Action, e.ResourceType, e.ResourceID)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "page %d of %d\n", page.Page, page.TotalPages)
}
