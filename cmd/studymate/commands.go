package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"studymate/internal/client"
	"studymate/internal/models"
)

type cli struct {
	api          *client.Client
	syncer       *client.Syncer
	out          io.Writer
	readPassword func(prompt string) (string, error)
	now          func() time.Time
}

func newCLI(api *client.Client, out io.Writer, readPassword func(string) (string, error)) *cli {
	view := &tableView{out: out}
	return &cli{
		api:          api,
		syncer:       client.NewSyncer(api, view, view),
		out:          out,
		readPassword: readPassword,
		now:          time.Now,
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return c.register(ctx, rest)
	case "login":
		return c.login(ctx, rest)
	case "logout":
		if err := c.api.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Logged out.")
		return nil
	case "profile":
		return c.profile(ctx, rest)
	case "theme":
		return c.theme(ctx, rest)
	case "activity":
		return c.activity(ctx, rest)
	case "tasks":
		return c.tasks(ctx, rest)
	case "add":
		return c.addTask(ctx, rest)
	case "edit":
		return c.editTask(ctx, rest)
	case "toggle":
		return c.toggleTask(ctx, rest)
	case "rm":
		return c.removeTask(ctx, rest)
	case "budget":
		return c.budget(ctx, rest)
	case "spend":
		return c.spend(ctx, rest)
	case "unspend":
		return c.unspend(ctx, rest)
	case "allowance":
		return c.allowance(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseID(args []string) (uint, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one id")
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return uint(id), nil
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "full name")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *username == "" || *email == "" {
		return fmt.Errorf("usage: studymate register -name <full name> -username <username> -email <email>")
	}

	password, err := c.readPassword("Password: ")
	if err != nil {
		return err
	}
	student, err := c.api.Register(ctx, client.RegisterInput{
		FullName: *name, Username: *username, Email: *email, Password: password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Registered %s. Run `studymate login %s` to sign in.\n", student.Username, student.Username)
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: studymate login <username>")
	}
	password, err := c.readPassword("Password: ")
	if err != nil {
		return err
	}
	student, err := c.api.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Welcome back, %s.\n", student.FullName)
	return nil
}

func (c *cli) profile(ctx context.Context, args []string) error {
	fs := newFlagSet("profile")
	name := fs.String("name", "", "full name")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	bio := fs.String("bio", "", "short bio")
	picture := fs.String("picture", "", "profile picture URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	current, err := c.api.Profile(ctx)
	if err != nil {
		return err
	}
	if fs.NFlag() == 0 {
		printProfile(c.out, current)
		return nil
	}

	// A profile update replaces every field; unset flags keep what is stored.
	in := client.ProfileInput{
		FullName:       current.FullName,
		Username:       current.Username,
		Email:          current.Email,
		Bio:            current.Bio,
		ProfilePicture: current.ProfilePicture,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			in.FullName = *name
		case "username":
			in.Username = *username
		case "email":
			in.Email = *email
		case "bio":
			in.Bio = *bio
		case "picture":
			if *picture == "" {
				in.ProfilePicture = nil
			} else {
				in.ProfilePicture = picture
			}
		}
	})

	updated, err := c.api.UpdateProfile(ctx, in)
	if err != nil {
		return err
	}
	printProfile(c.out, updated)
	return nil
}

func (c *cli) theme(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: studymate theme <light|dark>")
	}
	if err := c.api.SetTheme(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Theme set to %s.\n", args[0])
	return nil
}

func (c *cli) activity(ctx context.Context, args []string) error {
	fs := newFlagSet("activity")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 20, "entries per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	result, err := c.api.Activity(ctx, *page, *size)
	if err != nil {
		return err
	}
	printActivity(c.out, result)
	return nil
}

func (c *cli) tasks(ctx context.Context, args []string) error {
	fs := newFlagSet("tasks")
	subject := fs.String("subject", "", "only show this subject")
	stats := fs.Bool("stats", false, "show the dashboard instead of the list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *stats {
		counters, err := c.api.TaskStats(ctx)
		if err != nil {
			return err
		}
		subjects, err := c.api.Subjects(ctx)
		if err != nil {
			return err
		}
		deadlines, err := c.api.Deadlines(ctx, 5)
		if err != nil {
			return err
		}
		printDashboard(c.out, counters, subjects, deadlines)
		return nil
	}

	c.syncer.FilterSubject(*subject)
	_, err := c.syncer.RefreshTasks(ctx)
	return err
}

func (c *cli) addTask(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	subject := fs.String("subject", "", "subject")
	due := fs.String("due", "", "due date, YYYY-MM-DD")
	priority := fs.String("priority", "", "low, medium or high")
	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.Join(fs.Args(), " ")
	if title == "" || *subject == "" || *due == "" {
		return fmt.Errorf("usage: studymate add -subject <subject> -due <YYYY-MM-DD> [-priority p] <title>")
	}

	_, err := c.syncer.CreateTask(ctx, client.TaskInput{
		Title: title, Subject: *subject, DueDate: *due, Priority: *priority,
	})
	return err
}

func (c *cli) editTask(ctx context.Context, args []string) error {
	fs := newFlagSet("edit")
	title := fs.String("title", "", "new title")
	subject := fs.String("subject", "", "new subject")
	due := fs.String("due", "", "new due date, YYYY-MM-DD")
	priority := fs.String("priority", "", "low, medium or high")
	status := fs.String("status", "", "Pending or Completed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(fs.Args())
	if err != nil {
		return fmt.Errorf("usage: studymate edit [-title t] [-subject s] [-due d] [-priority p] [-status s] <id>")
	}

	tasks, err := c.api.ListTasks(ctx, "")
	if err != nil {
		return err
	}
	var current *models.Task
	for i := range tasks {
		if tasks[i].ID == id {
			current = &tasks[i]
		}
	}
	if current == nil {
		return fmt.Errorf("task %d not found", id)
	}

	edit := client.TaskEdit{
		Title:    current.Title,
		Subject:  current.Subject,
		DueDate:  current.DueDate.String(),
		Priority: *priority,
		Status:   *status,
	}
	if *title != "" {
		edit.Title = *title
	}
	if *subject != "" {
		edit.Subject = *subject
	}
	if *due != "" {
		edit.DueDate = *due
	}
	return c.syncer.EditTask(ctx, id, edit)
}

func (c *cli) toggleTask(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	_, err = c.syncer.ToggleTask(ctx, id)
	return err
}

func (c *cli) removeTask(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	return c.syncer.DeleteTask(ctx, id)
}

func (c *cli) budget(ctx context.Context, args []string) error {
	fs := newFlagSet("budget")
	summary := fs.Bool("summary", false, "summarise one month")
	month := fs.String("month", "", "month for the summary, YYYY-MM")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *summary || *month != "" {
		result, err := c.api.BudgetSummary(ctx, *month)
		if err != nil {
			return err
		}
		printSummary(c.out, result)
		return nil
	}

	_, err := c.syncer.RefreshBudget(ctx)
	return err
}

func (c *cli) spend(ctx context.Context, args []string) error {
	fs := newFlagSet("spend")
	amount := fs.Float64("amount", 0, "amount spent")
	category := fs.String("category", "", "category")
	date := fs.String("date", "", "date, YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	description := strings.Join(fs.Args(), " ")
	if description == "" || *category == "" {
		return fmt.Errorf("usage: studymate spend -amount <n> -category <c> [-date YYYY-MM-DD] <description>")
	}
	if *date == "" {
		*date = models.NewDate(c.now()).String()
	}

	_, err := c.syncer.AddExpense(ctx, client.ExpenseInput{
		Amount: *amount, Category: *category, Description: description, Date: *date,
	})
	return err
}

func (c *cli) unspend(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	return c.syncer.DeleteExpense(ctx, id)
}

func (c *cli) allowance(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: studymate allowance <amount>")
	}
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[0])
	}
	return c.syncer.SetAllowance(ctx, amount)
}
